package models

import "time"

type PostType int

const (
	PostTypeRegular PostType = iota + 1
	PostTypeModeratorAction
)

type Post struct {
	ID int `db:"id"`

	TopicID  int  `db:"topic_id"`
	AuthorID *int `db:"author_id"` // nil for posts whose author was erased

	// PostNumber is assigned at creation and never reissued; SortOrder is
	// the authoritative display order and may diverge from PostNumber when
	// posts get reordered.
	PostNumber int `db:"post_number"`
	SortOrder  int `db:"sort_order"`

	PostType PostType `db:"post_type"`
	Deleted  bool     `db:"deleted"`

	Raw    string `db:"raw"`
	Cooked string `db:"cooked"`

	Score       float64 `db:"score"`
	PercentRank float64 `db:"percent_rank"`

	CreatedAt time.Time `db:"created_at"`
}

type PostActionType int

const (
	PostActionLike PostActionType = iota + 1
	PostActionBookmark
)

type PostAction struct {
	ID         int            `db:"id"`
	PostID     int            `db:"post_id"`
	UserID     int            `db:"user_id"`
	ActionType PostActionType `db:"action_type"`
	CreatedAt  time.Time      `db:"created_at"`
}
