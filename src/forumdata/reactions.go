package forumdata

import (
	"context"

	"github.com/nterray/discourse/src/db"
	"github.com/nterray/discourse/src/models"
	"github.com/nterray/discourse/src/oops"
	"github.com/nterray/discourse/src/perf"
	"github.com/nterray/discourse/src/topicview"
)

type ReactionStore struct {
	Conn db.ConnOrTx
}

var _ topicview.ReactionStore = &ReactionStore{}

// The subset of the given post ids that received a like from at least one
// moderator account.
func (s *ReactionStore) PostIDsLikedByModerators(ctx context.Context, postIDs []int) (map[int]bool, error) {
	p := perf.ExtractPerf(ctx)
	p.StartBlock("SQL", "Fetch moderator likes")
	defer p.EndBlock()

	if len(postIDs) == 0 {
		return map[int]bool{}, nil
	}

	ids, err := db.QueryScalar[int](ctx, s.Conn,
		`
		SELECT DISTINCT action.post_id
		FROM
			post_actions AS action
			JOIN users AS liker ON liker.id = action.user_id
		WHERE
			action.post_id = ANY ($1)
			AND action.action_type = $2
			AND (liker.is_moderator OR liker.is_admin)
		`,
		postIDs,
		models.PostActionLike,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch moderator likes")
	}

	result := make(map[int]bool, len(ids))
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (s *ReactionStore) LikeCounts(ctx context.Context, postIDs []int) (map[int]int, error) {
	p := perf.ExtractPerf(ctx)
	p.StartBlock("SQL", "Fetch like counts")
	defer p.EndBlock()

	if len(postIDs) == 0 {
		return map[int]int{}, nil
	}

	type likeCountRow struct {
		PostID int `db:"post_id"`
		Count  int `db:"count"`
	}

	rows, err := db.Query[likeCountRow](ctx, s.Conn,
		`
		SELECT action.post_id, COUNT(*) AS count
		FROM post_actions AS action
		WHERE
			action.post_id = ANY ($1)
			AND action.action_type = $2
		GROUP BY action.post_id
		`,
		postIDs,
		models.PostActionLike,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch like counts")
	}

	result := make(map[int]int, len(rows))
	for _, row := range rows {
		result[row.PostID] = row.Count
	}
	return result, nil
}
