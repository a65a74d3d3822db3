package forumdata

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nterray/discourse/src/db"
	"github.com/nterray/discourse/src/models"
	"github.com/nterray/discourse/src/oops"
	"github.com/nterray/discourse/src/perf"
	"github.com/nterray/discourse/src/topicview"
)

type PostStore struct {
	Conn db.ConnOrTx
}

var _ topicview.PostStore = &PostStore{}

/*
Fetches the stream projection of a topic's posts: ids, ordering keys and
the curation signals, ordered by sort_order ascending. The username filter
always admits the opening post, so a filtered view keeps its context.
*/
func (s *PostStore) StreamPosts(ctx context.Context, q topicview.StreamQuery) ([]topicview.StreamPost, error) {
	p := perf.ExtractPerf(ctx)
	p.StartBlock("SQL", "Fetch post stream")
	defer p.EndBlock()

	var qb db.QueryBuilder
	qb.Add(
		`
		SELECT
			post.id, post.post_number, post.sort_order, post.post_type,
			post.deleted, post.score, post.percent_rank, post.author_id,
			COALESCE(author.trust_level, 0) AS author_trust_level
		FROM
			posts AS post
			LEFT JOIN users AS author ON author.id = post.author_id
		WHERE
			post.topic_id = $?
		`,
		q.TopicID,
	)
	if !q.IncludeDeleted {
		qb.Add(`AND NOT post.deleted`)
	}
	if q.ExcludeModeratorActions {
		qb.Add(`AND post.post_type <> $?`, models.PostTypeModeratorAction)
	}
	if q.BestOfOnly {
		qb.Add(
			`
			AND post.id IN (
				SELECT post_id
				FROM topic_best_of
				WHERE topic_id = $?
			)
			`,
			q.TopicID,
		)
	}
	if len(q.UsernameFilter) > 0 {
		usernames := make([]string, len(q.UsernameFilter))
		for i, username := range q.UsernameFilter {
			usernames[i] = strings.ToLower(username)
		}
		qb.Add(
			`
			AND (
				post.post_number = 1
				OR LOWER(author.username) = ANY ($?)
			)
			`,
			usernames,
		)
	}
	qb.Add(`ORDER BY post.sort_order ASC`)

	rows, err := db.Query[topicview.StreamPost](ctx, s.Conn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch post stream for topic %d", q.TopicID)
	}

	result := make([]topicview.StreamPost, len(rows))
	for i, row := range rows {
		result[i] = *row
	}
	return result, nil
}

/*
Materializes full post records with their authors. No ordering is promised;
the topic view re-orders by sort_order itself.
*/
func (s *PostStore) PostsByIDs(ctx context.Context, postIDs []int) ([]topicview.PostAndAuthor, error) {
	p := perf.ExtractPerf(ctx)
	p.StartBlock("SQL", "Fetch posts by id")
	defer p.EndBlock()

	if len(postIDs) == 0 {
		return nil, nil
	}

	type postRow struct {
		ID          int       `db:"id"`
		TopicID     int       `db:"topic_id"`
		AuthorID    *int      `db:"author_id"`
		PostNumber  int       `db:"post_number"`
		SortOrder   int       `db:"sort_order"`
		PostType    int       `db:"post_type"`
		Deleted     bool      `db:"deleted"`
		Raw         string    `db:"raw"`
		Cooked      string    `db:"cooked"`
		Score       float64   `db:"score"`
		PercentRank float64   `db:"percent_rank"`
		CreatedAt   time.Time `db:"created_at"`

		AuthorUsername    *string    `db:"author_username"`
		AuthorName        *string    `db:"author_name"`
		AuthorIsAdmin     *bool      `db:"author_is_admin"`
		AuthorIsModerator *bool      `db:"author_is_moderator"`
		AuthorTrustLevel  *int       `db:"author_trust_level"`
		AuthorAvatarID    *uuid.UUID `db:"author_avatar_asset_id"`
	}

	rows, err := db.Query[postRow](ctx, s.Conn,
		`
		SELECT
			post.id, post.topic_id, post.author_id, post.post_number,
			post.sort_order, post.post_type, post.deleted, post.raw,
			post.cooked, post.score, post.percent_rank, post.created_at,
			author.username AS author_username,
			author.name AS author_name,
			author.is_admin AS author_is_admin,
			author.is_moderator AS author_is_moderator,
			author.trust_level AS author_trust_level,
			author.avatar_asset_id AS author_avatar_asset_id
		FROM
			posts AS post
			LEFT JOIN users AS author ON author.id = post.author_id
		WHERE
			post.id = ANY ($1)
		`,
		postIDs,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch posts by id")
	}

	result := make([]topicview.PostAndAuthor, len(rows))
	for i, row := range rows {
		entry := topicview.PostAndAuthor{
			Post: models.Post{
				ID:          row.ID,
				TopicID:     row.TopicID,
				AuthorID:    row.AuthorID,
				PostNumber:  row.PostNumber,
				SortOrder:   row.SortOrder,
				PostType:    models.PostType(row.PostType),
				Deleted:     row.Deleted,
				Raw:         row.Raw,
				Cooked:      row.Cooked,
				Score:       row.Score,
				PercentRank: row.PercentRank,
				CreatedAt:   row.CreatedAt,
			},
		}
		if row.AuthorID != nil && row.AuthorUsername != nil {
			entry.Author = &models.User{
				ID:            *row.AuthorID,
				Username:      *row.AuthorUsername,
				Name:          orEmpty(row.AuthorName),
				IsAdmin:       *row.AuthorIsAdmin,
				IsModerator:   *row.AuthorIsModerator,
				TrustLevel:    *row.AuthorTrustLevel,
				AvatarAssetID: row.AuthorAvatarID,
			}
		}
		result[i] = entry
	}
	return result, nil
}

/*
The topic's most prolific authors, soft-deleted posts excluded, post count
descending with the lower user id winning ties so the order stays stable.
*/
func (s *PostStore) ParticipantCounts(ctx context.Context, topicID int, limit int) ([]topicview.Participant, error) {
	p := perf.ExtractPerf(ctx)
	p.StartBlock("SQL", "Fetch topic participants")
	defer p.EndBlock()

	type participantRow struct {
		ID            int        `db:"id"`
		Username      string     `db:"username"`
		Name          string     `db:"name"`
		IsAdmin       bool       `db:"is_admin"`
		IsModerator   bool       `db:"is_moderator"`
		TrustLevel    int        `db:"trust_level"`
		AvatarAssetID *uuid.UUID `db:"avatar_asset_id"`
		PostCount     int        `db:"post_count"`
	}

	rows, err := db.Query[participantRow](ctx, s.Conn,
		`
		SELECT
			author.id, author.username, author.name, author.is_admin,
			author.is_moderator, author.trust_level, author.avatar_asset_id,
			COUNT(*) AS post_count
		FROM
			posts AS post
			JOIN users AS author ON author.id = post.author_id
		WHERE
			post.topic_id = $1
			AND NOT post.deleted
		GROUP BY author.id
		ORDER BY post_count DESC, author.id ASC
		LIMIT $2
		`,
		topicID,
		limit,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch participants for topic %d", topicID)
	}

	result := make([]topicview.Participant, len(rows))
	for i, row := range rows {
		result[i] = topicview.Participant{
			User: models.User{
				ID:            row.ID,
				Username:      row.Username,
				Name:          row.Name,
				IsAdmin:       row.IsAdmin,
				IsModerator:   row.IsModerator,
				TrustLevel:    row.TrustLevel,
				AvatarAssetID: row.AvatarAssetID,
			},
			PostCount: row.PostCount,
		}
	}
	return result, nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
