package forumdata

import (
	"context"

	"github.com/nterray/discourse/src/db"
	"github.com/nterray/discourse/src/models"
	"github.com/nterray/discourse/src/oops"
	"github.com/nterray/discourse/src/perf"
	"github.com/nterray/discourse/src/topicview"
)

const maxSuggestedTopics = 5

type SuggestionEngine struct {
	Conn db.ConnOrTx
}

var _ topicview.SuggestionEngine = &SuggestionEngine{}

// SuggestedFor returns recently-active topics from the same category,
// excluding the current topic. Private messages never show up in
// suggestions, regardless of viewer.
func (s *SuggestionEngine) SuggestedFor(ctx context.Context, topic *models.Topic, viewer *models.User) ([]models.TopicSummary, error) {
	p := perf.ExtractPerf(ctx)
	p.StartBlock("SQL", "Fetch suggested topics")
	defer p.EndBlock()

	summaries, err := db.Query[models.TopicSummary](ctx, s.Conn,
		`
		SELECT topic.id, topic.title, topic.slug, topic.posts_count
		FROM topics AS topic
		WHERE
			topic.category_id = $1
			AND topic.id != $2
			AND topic.archetype = $3
			AND NOT topic.deleted
		ORDER BY topic.last_posted_at DESC
		LIMIT $4
		`,
		topic.CategoryID,
		topic.ID,
		models.TopicArchetypeRegular,
		maxSuggestedTopics,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch suggested topics")
	}

	result := make([]models.TopicSummary, len(summaries))
	for i, summary := range summaries {
		result[i] = *summary
	}
	return result, nil
}
