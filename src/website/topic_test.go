package website

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nterray/discourse/src/config"
	"github.com/nterray/discourse/src/db"
	"github.com/nterray/discourse/src/guardian"
	"github.com/nterray/discourse/src/models"
	"github.com/nterray/discourse/src/topicview"
)

/*
In-memory collaborators for handler tests: one regular 30-post topic and one
private message, with a handful of known users.
*/
type testData struct {
	topics map[int]*models.Topic
	posts  []models.Post
	users  map[int]*models.User

	bestOfView map[int]bool // post ids in the storage-side best-of view
}

func newTestData() *testData {
	d := &testData{
		topics:     make(map[int]*models.Topic),
		users:      make(map[int]*models.User),
		bestOfView: map[int]bool{110: true, 120: true},
	}

	d.topics[1] = &models.Topic{
		ID:                1,
		Title:             "A very good topic",
		Slug:              "a-very-good-topic",
		Archetype:         models.TopicArchetypeRegular,
		PostsCount:        30,
		HighestPostNumber: 30,
	}
	d.topics[2] = &models.Topic{
		ID:                2,
		Title:             "Psst",
		Slug:              "psst",
		Archetype:         models.TopicArchetypePrivateMessage,
		PostsCount:        1,
		HighestPostNumber: 1,
	}

	d.users[1] = &models.User{ID: 1, Username: "alice", TrustLevel: 2}
	d.users[2] = &models.User{ID: 2, Username: "mod", IsModerator: true}

	authorID := 1
	for i := 1; i <= 30; i++ {
		d.posts = append(d.posts, models.Post{
			ID:         100 + i,
			TopicID:    1,
			AuthorID:   &authorID,
			PostNumber: i,
			SortOrder:  i,
			PostType:   models.PostTypeRegular,
			Raw:        "hello there",
			Cooked:     "<p>hello there</p>",
		})
	}
	d.posts = append(d.posts, models.Post{
		ID:         500,
		TopicID:    2,
		AuthorID:   &authorID,
		PostNumber: 1,
		SortOrder:  1,
		PostType:   models.PostTypeRegular,
		Raw:        "secret",
		Cooked:     "<p>secret</p>",
	})

	return d
}

func (d *testData) FindTopic(ctx context.Context, topicID int) (*models.Topic, error) {
	topic, ok := d.topics[topicID]
	if !ok {
		return nil, db.NotFound
	}
	return topic, nil
}

func (d *testData) StreamPosts(ctx context.Context, q topicview.StreamQuery) ([]topicview.StreamPost, error) {
	var result []topicview.StreamPost
	for _, post := range d.posts {
		if post.TopicID != q.TopicID {
			continue
		}
		if post.Deleted && !q.IncludeDeleted {
			continue
		}
		if q.BestOfOnly && !d.bestOfView[post.ID] {
			continue
		}
		entry := topicview.StreamPost{
			ID:         post.ID,
			PostNumber: post.PostNumber,
			SortOrder:  post.SortOrder,
			PostType:   post.PostType,
			Deleted:    post.Deleted,
			AuthorID:   post.AuthorID,
		}
		if post.AuthorID != nil {
			if author, ok := d.users[*post.AuthorID]; ok {
				entry.AuthorTrustLevel = author.TrustLevel
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (d *testData) PostsByIDs(ctx context.Context, postIDs []int) ([]topicview.PostAndAuthor, error) {
	wanted := make(map[int]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	var result []topicview.PostAndAuthor
	for _, post := range d.posts {
		if wanted[post.ID] {
			var author *models.User
			if post.AuthorID != nil {
				author = d.users[*post.AuthorID]
			}
			result = append(result, topicview.PostAndAuthor{Post: post, Author: author})
		}
	}
	return result, nil
}

func (d *testData) ParticipantCounts(ctx context.Context, topicID int, limit int) ([]topicview.Participant, error) {
	return []topicview.Participant{{User: *d.users[1], PostCount: 30}}, nil
}

func (d *testData) PostIDsLikedByModerators(ctx context.Context, postIDs []int) (map[int]bool, error) {
	return map[int]bool{}, nil
}

func (d *testData) LikeCounts(ctx context.Context, postIDs []int) (map[int]int, error) {
	counts := make(map[int]int, len(postIDs))
	for _, id := range postIDs {
		counts[id] = id % 3
	}
	return counts, nil
}

func (d *testData) ReadPostNumbers(ctx context.Context, topicID int, userID int, candidates []int) (map[int]bool, error) {
	read := make(map[int]bool)
	for _, n := range candidates {
		if n <= 5 {
			read[n] = true
		}
	}
	return read, nil
}

func (d *testData) SuggestedFor(ctx context.Context, topic *models.Topic, viewer *models.User) ([]models.TopicSummary, error) {
	return []models.TopicSummary{{ID: 9, Title: "Also good", Slug: "also-good", PostsCount: 3}}, nil
}

func newTestRoutes(d *testData) http.Handler {
	routes := &websiteRoutes{
		stores: topicview.Stores{
			Topics:      d,
			Posts:       d,
			Reactions:   d,
			Reads:       d,
			Suggestions: d,
			Guardian:    guardian.Guardian{},
		},
		viewCfg: topicview.Config{PostsPerPage: 20},
		fetchUser: func(ctx context.Context, userID int) (*models.User, error) {
			user, ok := d.users[userID]
			if !ok {
				return nil, db.NotFound
			}
			return user, nil
		},
	}
	return routes.router()
}

func getTopic(t *testing.T, handler http.Handler, url string, userID int) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if userID != 0 {
		req.Header.Set(currentUserHeader, strconv.Itoa(userID))
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeTopic(t *testing.T, recorder *httptest.ResponseRecorder) topicResponse {
	t.Helper()
	var response topicResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func TestTopicRoute(t *testing.T) {
	handler := newTestRoutes(newTestData())

	t.Run("first page", func(t *testing.T) {
		recorder := getTopic(t, handler, "/t/1", 0)
		require.Equal(t, http.StatusOK, recorder.Code)

		response := decodeTopic(t, recorder)
		assert.Equal(t, 1, response.ID)
		assert.Equal(t, 1, response.CurrentPage)
		require.NotNil(t, response.NextPage)
		assert.Equal(t, 2, *response.NextPage)
		assert.Equal(t, "/t/a-very-good-topic/1", response.CanonicalPath)
		assert.Len(t, response.Posts, 20)
		assert.Equal(t, 1, response.Posts[0].PostNumber)
		assert.Equal(t, "alice", response.Posts[0].Author)
		assert.Equal(t, config.Config.BaseUrl+"/t/a-very-good-topic/1/1", response.Posts[0].URL)
		assert.Equal(t, "hello there", response.Summary)

		require.Len(t, response.Suggested, 1)
		assert.Equal(t, config.Config.BaseUrl+"/t/also-good/9", response.Suggested[0].URL)
	})

	t.Run("slug route works the same", func(t *testing.T) {
		recorder := getTopic(t, handler, "/t/a-very-good-topic/1?page=2", 0)
		require.Equal(t, http.StatusOK, recorder.Code)

		response := decodeTopic(t, recorder)
		assert.Equal(t, 2, response.CurrentPage)
		assert.Nil(t, response.NextPage)
		assert.Len(t, response.Posts, 10)
	})

	t.Run("post_number wins over page", func(t *testing.T) {
		recorder := getTopic(t, handler, "/t/1?page=1&post_number=25", 0)
		require.Equal(t, http.StatusOK, recorder.Code)

		response := decodeTopic(t, recorder)
		assert.Equal(t, 11, response.Posts[0].PostNumber)
		assert.Equal(t, 30, response.Posts[len(response.Posts)-1].PostNumber)
		assert.Equal(t, "/t/a-very-good-topic/1?page=2", response.CanonicalPath)
	})

	t.Run("explicit post ids", func(t *testing.T) {
		recorder := getTopic(t, handler, "/t/1?post_ids=103,101", 0)
		require.Equal(t, http.StatusOK, recorder.Code)

		response := decodeTopic(t, recorder)
		require.Len(t, response.Posts, 2)
		assert.Equal(t, 1, response.Posts[0].PostNumber)
		assert.Equal(t, 3, response.Posts[1].PostNumber)
	})

	t.Run("best-of storage view scope", func(t *testing.T) {
		recorder := getTopic(t, handler, "/t/1?best_of_only=true", 0)
		require.Equal(t, http.StatusOK, recorder.Code)

		response := decodeTopic(t, recorder)
		require.Len(t, response.Posts, 2)
		assert.Equal(t, 10, response.Posts[0].PostNumber)
		assert.Equal(t, 20, response.Posts[1].PostNumber)
	})

	t.Run("best-of filter", func(t *testing.T) {
		recorder := getTopic(t, handler, "/t/1?filter=best_of", 0)
		require.Equal(t, http.StatusOK, recorder.Code)

		response := decodeTopic(t, recorder)
		require.Len(t, response.Posts, defaultBestOfOptions.Max)
		assert.Equal(t, 2, response.Posts[0].PostNumber)
	})

	t.Run("best-of knobs are per request", func(t *testing.T) {
		// Not enough replies for curation to run at all.
		recorder := getTopic(t, handler, "/t/1?filter=best_of&min_replies=50", 0)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, decodeTopic(t, recorder).Posts)

		// Every post scores 0, so a positive floor curates nothing.
		recorder = getTopic(t, handler, "/t/1?filter=best_of&min_score=0.5", 0)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, decodeTopic(t, recorder).Posts)

		// A zero-score bypass cannot rescue low-trust authors.
		recorder = getTopic(t, handler, "/t/1?filter=best_of&min_trust_level=9&bypass_trust_level_score=100", 0)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, decodeTopic(t, recorder).Posts)
	})

	t.Run("read state only for signed-in viewers", func(t *testing.T) {
		anonymous := decodeTopic(t, getTopic(t, handler, "/t/1", 0))
		assert.False(t, anonymous.Posts[0].Read)

		signedIn := decodeTopic(t, getTopic(t, handler, "/t/1", 1))
		assert.True(t, signedIn.Posts[0].Read)
		assert.False(t, signedIn.Posts[10].Read)
	})

	t.Run("unknown topic", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, getTopic(t, handler, "/t/999", 0).Code)
		assert.Equal(t, http.StatusNotFound, getTopic(t, handler, "/t/abc", 0).Code)
	})

	t.Run("private message requires login", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, getTopic(t, handler, "/t/2", 0).Code)
		assert.Equal(t, http.StatusForbidden, getTopic(t, handler, "/t/2", 1).Code)
		assert.Equal(t, http.StatusOK, getTopic(t, handler, "/t/2", 2).Code)
	})

	t.Run("malformed params", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, getTopic(t, handler, "/t/1?page=banana", 0).Code)
		assert.Equal(t, http.StatusBadRequest, getTopic(t, handler, "/t/1?post_ids=1,frog", 0).Code)
		assert.Equal(t, http.StatusBadRequest, getTopic(t, handler, "/t/1?filter=best_of&min_score=soup", 0).Code)
	})

	t.Run("past the end is empty, not an error", func(t *testing.T) {
		recorder := getTopic(t, handler, "/t/1?page=50", 0)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, decodeTopic(t, recorder).Posts)
	})
}
