package topicview

import (
	"context"
	"sort"

	"github.com/nterray/discourse/src/models"
	"github.com/nterray/discourse/src/oops"
)

/*
Scores and filters the stream into a curated "best of" subset. Selection
order is by ranking signal (percent rank ascending, sort order as the tie
break); the final output is re-sorted by post number so display order stays
chronological.

The max limit is applied to the ranked candidate list before the trust and
score gates, matching the upstream scoring priority. See BestOfOptions.
*/
func curateBestOf(
	ctx context.Context,
	stream *FilteredStream,
	topic *models.Topic,
	reactions ReactionStore,
	opts BestOfOptions,
) ([]int, error) {
	if opts.MinReplies > 0 && topic.PostsCount < opts.MinReplies+1 {
		return nil, nil
	}

	// The opening post is never curated in.
	var candidates []StreamPost
	for _, post := range stream.Posts {
		if post.PostNumber > 1 {
			candidates = append(candidates, post)
		}
	}

	if opts.OnlyModeratorLiked {
		ids := make([]int, len(candidates))
		for i, post := range candidates {
			ids[i] = post.ID
		}
		liked, err := reactions.PostIDsLikedByModerators(ctx, ids)
		if err != nil {
			return nil, oops.New(err, "failed to look up moderator likes for topic %d", topic.ID)
		}

		kept := candidates[:0]
		for _, post := range candidates {
			if liked[post.ID] {
				kept = append(kept, post)
			}
		}
		candidates = kept
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].PercentRank != candidates[j].PercentRank {
			return candidates[i].PercentRank < candidates[j].PercentRank
		}
		return candidates[i].SortOrder < candidates[j].SortOrder
	})
	if opts.Max > 0 && len(candidates) > opts.Max {
		candidates = candidates[:opts.Max]
	}

	var result []StreamPost
	for _, post := range candidates {
		if opts.MinTrustLevel > 0 && post.AuthorTrustLevel < opts.MinTrustLevel {
			trustedByScore := opts.BypassTrustLevelScore > 0 && post.Score >= opts.BypassTrustLevelScore
			if !trustedByScore {
				continue
			}
		}
		if opts.MinScore > 0 && post.Score < opts.MinScore {
			continue
		}
		result = append(result, post)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PostNumber < result[j].PostNumber
	})

	ids := make([]int, len(result))
	for i, post := range result {
		ids[i] = post.ID
	}
	return ids, nil
}
