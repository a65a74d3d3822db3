package topicview

import (
	"context"
	"testing"

	"github.com/nterray/discourse/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curatedStream(posts ...StreamPost) *FilteredStream {
	return &FilteredStream{Posts: posts}
}

func TestCurateBestOf(t *testing.T) {
	ctx := context.Background()
	topic := &models.Topic{ID: 1, PostsCount: 10}
	reactions := &fakeReactionStore{&fakeData{moderatorLiked: map[int]bool{}}}

	t.Run("opening post is never curated", func(t *testing.T) {
		stream := curatedStream(
			StreamPost{ID: 101, PostNumber: 1, SortOrder: 1, PercentRank: 0},
			StreamPost{ID: 102, PostNumber: 2, SortOrder: 2, PercentRank: 0.9},
		)
		ids, err := curateBestOf(ctx, stream, topic, reactions, BestOfOptions{Max: 10})
		require.NoError(t, err)
		assert.Equal(t, []int{102}, ids)
	})

	t.Run("not enough replies yields empty", func(t *testing.T) {
		smallTopic := &models.Topic{ID: 1, PostsCount: 3}
		stream := curatedStream(
			StreamPost{ID: 101, PostNumber: 1, SortOrder: 1},
			StreamPost{ID: 102, PostNumber: 2, SortOrder: 2},
			StreamPost{ID: 103, PostNumber: 3, SortOrder: 3},
		)
		ids, err := curateBestOf(ctx, stream, smallTopic, reactions, BestOfOptions{Max: 10, MinReplies: 5})
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("ranked selection, chronological output", func(t *testing.T) {
		stream := curatedStream(
			StreamPost{ID: 101, PostNumber: 1, SortOrder: 1, PercentRank: 0},
			StreamPost{ID: 102, PostNumber: 2, SortOrder: 2, PercentRank: 0.8},
			StreamPost{ID: 103, PostNumber: 3, SortOrder: 3, PercentRank: 0.1},
			StreamPost{ID: 104, PostNumber: 4, SortOrder: 4, PercentRank: 0.2},
		)
		ids, err := curateBestOf(ctx, stream, topic, reactions, BestOfOptions{Max: 2})
		require.NoError(t, err)
		// Best two by rank are posts 3 and 4; output is by post number.
		assert.Equal(t, []int{103, 104}, ids)
	})

	t.Run("max is applied before the gates", func(t *testing.T) {
		stream := curatedStream(
			StreamPost{ID: 102, PostNumber: 2, SortOrder: 2, PercentRank: 0.1, AuthorTrustLevel: 0},
			StreamPost{ID: 103, PostNumber: 3, SortOrder: 3, PercentRank: 0.2, AuthorTrustLevel: 0},
			StreamPost{ID: 104, PostNumber: 4, SortOrder: 4, PercentRank: 0.3, AuthorTrustLevel: 3},
		)
		ids, err := curateBestOf(ctx, stream, topic, reactions, BestOfOptions{
			Max:           2,
			MinTrustLevel: 1,
		})
		require.NoError(t, err)
		// Post 4 qualifies but sits outside the early max-2 candidate cut.
		assert.Empty(t, ids)
	})

	t.Run("trust gate with score escape hatch", func(t *testing.T) {
		stream := curatedStream(
			StreamPost{ID: 102, PostNumber: 2, SortOrder: 2, AuthorTrustLevel: 0, Score: 15},
			StreamPost{ID: 103, PostNumber: 3, SortOrder: 3, AuthorTrustLevel: 0, Score: 5},
			StreamPost{ID: 104, PostNumber: 4, SortOrder: 4, AuthorTrustLevel: 2, Score: 0},
		)
		ids, err := curateBestOf(ctx, stream, topic, reactions, BestOfOptions{
			Max:                   10,
			MinTrustLevel:         1,
			BypassTrustLevelScore: 10,
		})
		require.NoError(t, err)
		// Low-trust post with score 15 escapes the gate; score 5 does not.
		assert.Equal(t, []int{102, 104}, ids)
	})

	t.Run("trust gate without escape hatch", func(t *testing.T) {
		stream := curatedStream(
			StreamPost{ID: 102, PostNumber: 2, SortOrder: 2, AuthorTrustLevel: 0, Score: 100},
			StreamPost{ID: 103, PostNumber: 3, SortOrder: 3, AuthorTrustLevel: 1},
		)
		ids, err := curateBestOf(ctx, stream, topic, reactions, BestOfOptions{
			Max:           10,
			MinTrustLevel: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, []int{103}, ids)
	})

	t.Run("min score gate", func(t *testing.T) {
		stream := curatedStream(
			StreamPost{ID: 102, PostNumber: 2, SortOrder: 2, Score: 3},
			StreamPost{ID: 103, PostNumber: 3, SortOrder: 3, Score: 8},
		)
		ids, err := curateBestOf(ctx, stream, topic, reactions, BestOfOptions{Max: 10, MinScore: 5})
		require.NoError(t, err)
		assert.Equal(t, []int{103}, ids)
	})

	t.Run("only moderator liked", func(t *testing.T) {
		likedReactions := &fakeReactionStore{&fakeData{moderatorLiked: map[int]bool{103: true}}}
		stream := curatedStream(
			StreamPost{ID: 102, PostNumber: 2, SortOrder: 2},
			StreamPost{ID: 103, PostNumber: 3, SortOrder: 3},
		)
		ids, err := curateBestOf(ctx, stream, topic, likedReactions, BestOfOptions{
			Max:                10,
			OnlyModeratorLiked: true,
		})
		require.NoError(t, err)
		assert.Equal(t, []int{103}, ids)
	})
}
