/*
Redis-backed read tracking. Each (user, topic) pair gets a set of the post
numbers the user has seen; checking a window of candidate post numbers is a
single SMISMEMBER round trip.
*/
package readtracking

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/nterray/discourse/src/oops"
	"github.com/nterray/discourse/src/perf"
	"github.com/nterray/discourse/src/topicview"
)

type ReadTracker struct {
	Client *redis.Client
}

var _ topicview.ReadTracker = &ReadTracker{}

func NewReadTracker(redisUrl string) (*ReadTracker, error) {
	opts, err := redis.ParseURL(redisUrl)
	if err != nil {
		return nil, oops.New(err, "failed to parse redis url")
	}
	return &ReadTracker{Client: redis.NewClient(opts)}, nil
}

func readKey(topicID, userID int) string {
	return "read:" + strconv.Itoa(userID) + ":" + strconv.Itoa(topicID)
}

func (t *ReadTracker) ReadPostNumbers(ctx context.Context, topicID int, userID int, candidates []int) (map[int]bool, error) {
	p := perf.ExtractPerf(ctx)
	p.StartBlock("REDIS", "Fetch read state")
	defer p.EndBlock()

	result := make(map[int]bool, len(candidates))
	if len(candidates) == 0 {
		return result, nil
	}

	members := make([]interface{}, len(candidates))
	for i, n := range candidates {
		members[i] = n
	}
	read, err := t.Client.SMIsMember(ctx, readKey(topicID, userID), members...).Result()
	if err != nil {
		return nil, oops.New(err, "failed to fetch read state")
	}
	for i, isRead := range read {
		if isRead {
			result[candidates[i]] = true
		}
	}
	return result, nil
}

// MarkRead records that the user has read the given post numbers.
func (t *ReadTracker) MarkRead(ctx context.Context, topicID int, userID int, postNumbers []int) error {
	if len(postNumbers) == 0 {
		return nil
	}
	members := make([]interface{}, len(postNumbers))
	for i, n := range postNumbers {
		members[i] = n
	}
	err := t.Client.SAdd(ctx, readKey(topicID, userID), members...).Err()
	if err != nil {
		return oops.New(err, "failed to record read state")
	}
	return nil
}
