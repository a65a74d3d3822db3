package topicview

import (
	"context"

	"github.com/nterray/discourse/src/models"
	"github.com/nterray/discourse/src/oops"
)

type StreamOptions struct {
	BestOfOnly              bool
	ExcludeModeratorActions bool
	UsernameFilter          []string
}

/*
The subset of a topic's posts visible to the current viewer, ordered by
sort_order ascending. Derived once per request and never persisted.
*/
type FilteredStream struct {
	Posts []StreamPost

	orderedIDs []int
	indexByID  map[int]int
}

func LoadStream(
	ctx context.Context,
	posts PostStore,
	g Guardian,
	topic *models.Topic,
	viewer *models.User,
	opts StreamOptions,
) (*FilteredStream, error) {
	entries, err := posts.StreamPosts(ctx, StreamQuery{
		TopicID:                 topic.ID,
		IncludeDeleted:          g.IsStaff(viewer),
		BestOfOnly:              opts.BestOfOnly,
		ExcludeModeratorActions: opts.ExcludeModeratorActions,
		UsernameFilter:          opts.UsernameFilter,
	})
	if err != nil {
		return nil, oops.New(err, "failed to load post stream for topic %d", topic.ID)
	}

	return &FilteredStream{Posts: entries}, nil
}

func (s *FilteredStream) Len() int {
	return len(s.Posts)
}

// The ids of the stream's posts in display order. Computed at most once.
func (s *FilteredStream) OrderedIDs() []int {
	if s.orderedIDs == nil {
		ids := make([]int, len(s.Posts))
		for i, post := range s.Posts {
			ids[i] = post.ID
		}
		s.orderedIDs = ids
	}
	return s.orderedIDs
}

// The stream index of the post with the given id.
func (s *FilteredStream) IndexOfID(id int) (int, bool) {
	if s.indexByID == nil {
		s.indexByID = make(map[int]int, len(s.Posts))
		for i, post := range s.Posts {
			s.indexByID[post.ID] = i
		}
	}
	idx, ok := s.indexByID[id]
	return idx, ok
}

/*
Finds the stream post whose post number is numerically closest to the
target. Equidistant candidates resolve to the lower post number, so the
result is deterministic regardless of how the storage layer ordered ties.
*/
func (s *FilteredStream) ClosestToPostNumber(target int) (StreamPost, bool) {
	var best StreamPost
	bestDistance := -1
	for _, post := range s.Posts {
		distance := post.PostNumber - target
		if distance < 0 {
			distance = -distance
		}
		betterTie := distance == bestDistance && post.PostNumber < best.PostNumber
		if bestDistance < 0 || distance < bestDistance || betterTie {
			best = post
			bestDistance = distance
		}
	}
	return best, bestDistance >= 0
}

// The highest post number present in the stream. Zero for an empty stream.
func (s *FilteredStream) HighestPostNumber() int {
	highest := 0
	for _, post := range s.Posts {
		if post.PostNumber > highest {
			highest = post.PostNumber
		}
	}
	return highest
}
