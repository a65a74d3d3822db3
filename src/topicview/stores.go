package topicview

import (
	"context"

	"github.com/nterray/discourse/src/models"
)

/*
A single post as seen by the stream accessor: just enough to order, window
and curate without materializing full post records. AuthorTrustLevel rides
along so the best-of curator never needs a second author lookup.
*/
type StreamPost struct {
	ID          int             `db:"id"`
	PostNumber  int             `db:"post_number"`
	SortOrder   int             `db:"sort_order"`
	PostType    models.PostType `db:"post_type"`
	Deleted     bool            `db:"deleted"`
	Score       float64         `db:"score"`
	PercentRank float64         `db:"percent_rank"`

	AuthorID         *int `db:"author_id"`
	AuthorTrustLevel int  `db:"author_trust_level"`
}

type StreamQuery struct {
	TopicID int

	// Soft-deleted posts are only ever included for staff viewers.
	IncludeDeleted bool

	// Restricts to the storage-side best-of view. The view itself is
	// maintained by the scoring pipeline, not computed here.
	BestOfOnly bool

	ExcludeModeratorActions bool

	// If non-empty, include only the topic's first post or posts authored
	// by one of these usernames (case-insensitive).
	UsernameFilter []string
}

type PostAndAuthor struct {
	Post   models.Post
	Author *models.User // nil when the author was erased
}

type Participant struct {
	User      models.User
	PostCount int
}

type TopicStore interface {
	// FindTopic returns the topic with its category association already
	// loaded, or db.NotFound.
	FindTopic(ctx context.Context, topicID int) (*models.Topic, error)
}

type PostStore interface {
	// StreamPosts returns the topic's posts matching the query, ordered by
	// sort_order ascending.
	StreamPosts(ctx context.Context, q StreamQuery) ([]StreamPost, error)

	// PostsByIDs materializes full post records with their authors, in no
	// particular order; callers re-order.
	PostsByIDs(ctx context.Context, postIDs []int) ([]PostAndAuthor, error)

	// ParticipantCounts returns the topic's most prolific authors, ordered
	// by post count descending, at most limit of them.
	ParticipantCounts(ctx context.Context, topicID int, limit int) ([]Participant, error)
}

type ReactionStore interface {
	PostIDsLikedByModerators(ctx context.Context, postIDs []int) (map[int]bool, error)
	LikeCounts(ctx context.Context, postIDs []int) (map[int]int, error)
}

type ReadTracker interface {
	// ReadPostNumbers reports which of the candidate post numbers the user
	// has already read. Callers only ever ask about the post numbers they
	// actually materialized, never the whole topic.
	ReadPostNumbers(ctx context.Context, topicID int, userID int, candidates []int) (map[int]bool, error)
}

type SuggestionEngine interface {
	SuggestedFor(ctx context.Context, topic *models.Topic, viewer *models.User) ([]models.TopicSummary, error)
}

type Guardian interface {
	CanViewTopic(topic *models.Topic, viewer *models.User) bool
	IsStaff(viewer *models.User) bool
	IsAnonymous(viewer *models.User) bool
}

// All the collaborators a topic view needs. Every field must be non-nil.
type Stores struct {
	Topics      TopicStore
	Posts       PostStore
	Reactions   ReactionStore
	Reads       ReadTracker
	Suggestions SuggestionEngine
	Guardian    Guardian
}
