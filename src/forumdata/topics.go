/*
Package forumdata implements the topicview collaborator interfaces on top of
Postgres. Each store takes a db.ConnOrTx so callers can run them inside a
transaction when they need to.
*/
package forumdata

import (
	"context"
	"time"

	"github.com/nterray/discourse/src/db"
	"github.com/nterray/discourse/src/guardian"
	"github.com/nterray/discourse/src/models"
	"github.com/nterray/discourse/src/oops"
	"github.com/nterray/discourse/src/perf"
	"github.com/nterray/discourse/src/topicview"
)

// Assembles the full set of Postgres-backed collaborators, minus read
// tracking, which lives in Redis (see the readtracking package).
func NewStores(conn db.ConnOrTx, reads topicview.ReadTracker) topicview.Stores {
	return topicview.Stores{
		Topics:      &TopicStore{conn},
		Posts:       &PostStore{conn},
		Reactions:   &ReactionStore{conn},
		Reads:       reads,
		Suggestions: &SuggestionEngine{conn},
		Guardian:    guardian.Guardian{},
	}
}

type TopicStore struct {
	Conn db.ConnOrTx
}

var _ topicview.TopicStore = &TopicStore{}

/*
Fetches a topic with its category eagerly attached, so view rendering never
issues a second category query. Returns db.NotFound if no topic exists with
the given id.
*/
func (s *TopicStore) FindTopic(ctx context.Context, topicID int) (*models.Topic, error) {
	p := perf.ExtractPerf(ctx)
	p.StartBlock("SQL", "Fetch topic")
	defer p.EndBlock()

	type topicRow struct {
		ID                int       `db:"id"`
		CategoryID        int       `db:"category_id"`
		Title             string    `db:"title"`
		Slug              string    `db:"slug"`
		Archetype         int       `db:"archetype"`
		PostsCount        int       `db:"posts_count"`
		HighestPostNumber int       `db:"highest_post_number"`
		CreatedAt         time.Time `db:"created_at"`
		LastPostedAt      time.Time `db:"last_posted_at"`
		Deleted           bool      `db:"deleted"`

		CategoryName     string `db:"category_name"`
		CategorySlug     string `db:"category_slug"`
		CategoryReadOnly bool   `db:"category_read_only"`
	}

	row, err := db.QueryOne[topicRow](ctx, s.Conn,
		`
		SELECT
			topic.id, topic.category_id, topic.title, topic.slug,
			topic.archetype, topic.posts_count, topic.highest_post_number,
			topic.created_at, topic.last_posted_at, topic.deleted,
			category.name AS category_name,
			category.slug AS category_slug,
			category.read_only AS category_read_only
		FROM
			topics AS topic
			JOIN categories AS category ON category.id = topic.category_id
		WHERE
			topic.id = $1
		`,
		topicID,
	)
	if err != nil {
		if err == db.NotFound {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch topic %d", topicID)
	}

	return &models.Topic{
		ID:                row.ID,
		CategoryID:        row.CategoryID,
		Title:             row.Title,
		Slug:              row.Slug,
		Archetype:         models.TopicArchetype(row.Archetype),
		PostsCount:        row.PostsCount,
		HighestPostNumber: row.HighestPostNumber,
		CreatedAt:         row.CreatedAt,
		LastPostedAt:      row.LastPostedAt,
		Deleted:           row.Deleted,
		Category: &models.Category{
			ID:       row.CategoryID,
			Name:     row.CategoryName,
			Slug:     row.CategorySlug,
			ReadOnly: row.CategoryReadOnly,
		},
	}, nil
}
