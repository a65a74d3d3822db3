package topicview

import (
	"context"
	"sort"
	"strings"

	"github.com/nterray/discourse/src/db"
	"github.com/nterray/discourse/src/guardian"
	"github.com/nterray/discourse/src/models"
)

/*
In-memory collaborators for view tests. The post store deliberately returns
by-id lookups in reverse order, since the real store makes no ordering
promises there.
*/
type fakeData struct {
	topics map[int]*models.Topic
	posts  []models.Post
	users  map[int]*models.User

	bestOfView     map[int]bool // post ids in the storage-side best-of view
	moderatorLiked map[int]bool
	likeCounts     map[int]int
	readNumbers    map[int]bool // post numbers read by any user
	suggestions    []models.TopicSummary

	streamQueries    int
	byIDQueries      int
	participantCalls int
	suggestionCalls  int
	readCalls        int
}

func (d *fakeData) stores() Stores {
	return Stores{
		Topics:      &fakeTopicStore{d},
		Posts:       &fakePostStore{d},
		Reactions:   &fakeReactionStore{d},
		Reads:       &fakeReadTracker{d},
		Suggestions: &fakeSuggestionEngine{d},
		Guardian:    guardian.Guardian{},
	}
}

type fakeTopicStore struct{ d *fakeData }

func (s *fakeTopicStore) FindTopic(ctx context.Context, topicID int) (*models.Topic, error) {
	topic, ok := s.d.topics[topicID]
	if !ok {
		return nil, db.NotFound
	}
	return topic, nil
}

type fakePostStore struct{ d *fakeData }

func (s *fakePostStore) StreamPosts(ctx context.Context, q StreamQuery) ([]StreamPost, error) {
	s.d.streamQueries++

	usernames := make(map[string]bool)
	for _, username := range q.UsernameFilter {
		usernames[strings.ToLower(username)] = true
	}

	var result []StreamPost
	for _, post := range s.d.posts {
		if post.TopicID != q.TopicID {
			continue
		}
		if post.Deleted && !q.IncludeDeleted {
			continue
		}
		if q.ExcludeModeratorActions && post.PostType == models.PostTypeModeratorAction {
			continue
		}
		if q.BestOfOnly && !s.d.bestOfView[post.ID] {
			continue
		}
		if len(usernames) > 0 && post.PostNumber != 1 {
			author := s.author(post)
			if author == nil || !usernames[strings.ToLower(author.Username)] {
				continue
			}
		}

		entry := StreamPost{
			ID:          post.ID,
			PostNumber:  post.PostNumber,
			SortOrder:   post.SortOrder,
			PostType:    post.PostType,
			Deleted:     post.Deleted,
			Score:       post.Score,
			PercentRank: post.PercentRank,
			AuthorID:    post.AuthorID,
		}
		if author := s.author(post); author != nil {
			entry.AuthorTrustLevel = author.TrustLevel
		}
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SortOrder < result[j].SortOrder
	})
	return result, nil
}

func (s *fakePostStore) PostsByIDs(ctx context.Context, postIDs []int) ([]PostAndAuthor, error) {
	s.d.byIDQueries++

	wanted := make(map[int]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}

	var result []PostAndAuthor
	for i := len(s.d.posts) - 1; i >= 0; i-- {
		post := s.d.posts[i]
		if wanted[post.ID] {
			result = append(result, PostAndAuthor{Post: post, Author: s.author(post)})
		}
	}
	return result, nil
}

func (s *fakePostStore) ParticipantCounts(ctx context.Context, topicID int, limit int) ([]Participant, error) {
	s.d.participantCalls++

	counts := make(map[int]int)
	for _, post := range s.d.posts {
		if post.TopicID == topicID && !post.Deleted && post.AuthorID != nil {
			counts[*post.AuthorID]++
		}
	}

	var result []Participant
	for userID, count := range counts {
		if user, ok := s.d.users[userID]; ok {
			result = append(result, Participant{User: *user, PostCount: count})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PostCount != result[j].PostCount {
			return result[i].PostCount > result[j].PostCount
		}
		return result[i].User.ID < result[j].User.ID
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *fakePostStore) author(post models.Post) *models.User {
	if post.AuthorID == nil {
		return nil
	}
	return s.d.users[*post.AuthorID]
}

type fakeReactionStore struct{ d *fakeData }

func (s *fakeReactionStore) PostIDsLikedByModerators(ctx context.Context, postIDs []int) (map[int]bool, error) {
	result := make(map[int]bool)
	for _, id := range postIDs {
		if s.d.moderatorLiked[id] {
			result[id] = true
		}
	}
	return result, nil
}

func (s *fakeReactionStore) LikeCounts(ctx context.Context, postIDs []int) (map[int]int, error) {
	result := make(map[int]int)
	for _, id := range postIDs {
		result[id] = s.d.likeCounts[id]
	}
	return result, nil
}

type fakeReadTracker struct{ d *fakeData }

func (s *fakeReadTracker) ReadPostNumbers(ctx context.Context, topicID int, userID int, candidates []int) (map[int]bool, error) {
	s.d.readCalls++

	result := make(map[int]bool)
	for _, postNumber := range candidates {
		if s.d.readNumbers[postNumber] {
			result[postNumber] = true
		}
	}
	return result, nil
}

type fakeSuggestionEngine struct{ d *fakeData }

func (s *fakeSuggestionEngine) SuggestedFor(ctx context.Context, topic *models.Topic, viewer *models.User) ([]models.TopicSummary, error) {
	s.d.suggestionCalls++
	return s.d.suggestions, nil
}

/*
A topic with numbered posts 1..n by a rotating set of authors. Post ids are
post number + 100 and sort order matches post number, so tests can tell the
three apart.
*/
func fixtureTopic(numPosts int) *fakeData {
	d := &fakeData{
		topics:         make(map[int]*models.Topic),
		users:          make(map[int]*models.User),
		bestOfView:     make(map[int]bool),
		moderatorLiked: make(map[int]bool),
		likeCounts:     make(map[int]int),
		readNumbers:    make(map[int]bool),
	}

	d.topics[1] = &models.Topic{
		ID:                1,
		Title:             "A very good topic",
		Slug:              "a-very-good-topic",
		Archetype:         models.TopicArchetypeRegular,
		PostsCount:        numPosts,
		HighestPostNumber: numPosts,
	}

	d.users[1] = &models.User{ID: 1, Username: "alice", TrustLevel: 2}
	d.users[2] = &models.User{ID: 2, Username: "bob", TrustLevel: 1}
	d.users[3] = &models.User{ID: 3, Username: "eve", TrustLevel: 0}

	for i := 1; i <= numPosts; i++ {
		authorID := (i-1)%3 + 1
		d.posts = append(d.posts, models.Post{
			ID:         100 + i,
			TopicID:    1,
			AuthorID:   &authorID,
			PostNumber: i,
			SortOrder:  i,
			PostType:   models.PostTypeRegular,
			Raw:        "post number " + string(rune('0'+i%10)),
		})
	}

	return d
}

func postNumbers(posts []PostAndAuthor) []int {
	numbers := make([]int, len(posts))
	for i, post := range posts {
		numbers[i] = post.Post.PostNumber
	}
	return numbers
}
