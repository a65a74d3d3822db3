package models

import (
	"strconv"
	"time"
)

type TopicArchetype int

const (
	TopicArchetypeRegular TopicArchetype = iota + 1
	TopicArchetypePrivateMessage
)

type Topic struct {
	ID int `db:"id"`

	CategoryID int    `db:"category_id"`
	Title      string `db:"title"`
	Slug       string `db:"slug"`

	Archetype TopicArchetype `db:"archetype"`

	// Deleted posts still count towards HighestPostNumber; post numbers are
	// never reissued.
	PostsCount        int `db:"posts_count"`
	HighestPostNumber int `db:"highest_post_number"`

	CreatedAt    time.Time `db:"created_at"`
	LastPostedAt time.Time `db:"last_posted_at"`
	Deleted      bool      `db:"deleted"`

	// Non-db fields, to be filled in by fetch helpers
	Category *Category
}

func (t *Topic) IsPrivateMessage() bool {
	return t.Archetype == TopicArchetypePrivateMessage
}

// The path of the topic relative to the site root, without any page suffix.
func (t *Topic) RelativeURL() string {
	return "/t/" + t.Slug + "/" + strconv.Itoa(t.ID)
}

type Category struct {
	ID       int    `db:"id"`
	Name     string `db:"name"`
	Slug     string `db:"slug"`
	ReadOnly bool   `db:"read_only"`
}

// A light-weight topic representation used for suggested-topic lists.
type TopicSummary struct {
	ID         int    `db:"id"`
	Title      string `db:"title"`
	Slug       string `db:"slug"`
	PostsCount int    `db:"posts_count"`
}
