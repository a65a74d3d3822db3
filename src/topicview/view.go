package topicview

import (
	"context"
	"errors"
	"sort"

	"github.com/nterray/discourse/src/db"
	"github.com/nterray/discourse/src/forumurl"
	"github.com/nterray/discourse/src/links"
	"github.com/nterray/discourse/src/models"
	"github.com/nterray/discourse/src/oops"
	"github.com/nterray/discourse/src/parsing"
	"github.com/nterray/discourse/src/utils"
)

const DefaultPostsPerPage = 20

// Discourse shows at most this many authors in the participant summary.
const participantLimit = 24

type Config struct {
	PostsPerPage int

	// Links under this base do not count as outbound. Usually the site's
	// base URL; empty means every link counts.
	InternalLinkBase string
}

/*
A memoized derived field. Lazily-computed view attributes use this instead
of ad-hoc nil checks so that "unset" and "computed-as-zero" stay distinct;
once computed, a field is never recomputed within the view's lifetime.
*/
type memo[T any] struct {
	value    T
	computed bool
}

func (m *memo[T]) get(compute func() T) T {
	if !m.computed {
		m.value = compute()
		m.computed = true
	}
	return m.value
}

func (m *memo[T]) getErr(compute func() (T, error)) (T, error) {
	if !m.computed {
		value, err := compute()
		if err != nil {
			return m.value, err
		}
		m.value = value
		m.computed = true
	}
	return m.value, nil
}

/*
TopicView owns the resolved post window for one navigation request and
derives its metadata. A view is built once per request and shares no state
with other views; derived fields are computed at most once and are
immutable after first read. Not safe for concurrent use.
*/
type TopicView struct {
	Topic  *models.Topic
	Viewer *models.User

	// The materialized window, ordered by sort_order ascending.
	Posts []PostAndAuthor

	cfg         Config
	stores      Stores
	req         WindowRequest
	stream      *FilteredStream
	currentPage int

	nextPage      memo[*int]
	canonicalPath memo[string]
	readSet       memo[map[int]bool]
	participants  memo[[]Participant]
	suggested     memo[[]models.TopicSummary]
	linkCounts    memo[map[int]int]
	likeCounts    memo[map[int]int]
	firstPost     memo[*PostAndAuthor]
}

/*
Builds the view for one navigation request: checks visibility, loads the
viewer's filtered stream, resolves the window for the request's strategy
and materializes the selected posts.

Returns ErrTopicNotFound, ErrLoginRequired, ErrPermissionDenied or
ErrAnchorNotFound per the view error taxonomy. An empty window is a valid
result, never an error.
*/
func New(
	ctx context.Context,
	stores Stores,
	topicID int,
	viewer *models.User,
	req WindowRequest,
	streamOpts StreamOptions,
	cfg Config,
) (*TopicView, error) {
	cfg.PostsPerPage = utils.OrDefault(cfg.PostsPerPage, DefaultPostsPerPage)

	topic, err := stores.Topics.FindTopic(ctx, topicID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, oops.New(err, "failed to fetch topic %d", topicID)
	}

	if topic.IsPrivateMessage() && stores.Guardian.IsAnonymous(viewer) {
		return nil, ErrLoginRequired
	}
	if !stores.Guardian.CanViewTopic(topic, viewer) {
		return nil, ErrPermissionDenied
	}

	stream, err := LoadStream(ctx, stores.Posts, stores.Guardian, topic, viewer, streamOpts)
	if err != nil {
		return nil, err
	}

	view := &TopicView{
		Topic:       topic,
		Viewer:      viewer,
		cfg:         cfg,
		stores:      stores,
		req:         req,
		stream:      stream,
		currentPage: 1,
	}

	var windowIDs []int
	switch req.strategy {
	case windowPaged:
		view.currentPage = utils.IntMax(req.page, 1)
		min, max := pagedWindow(req.page, cfg.PostsPerPage)
		windowIDs = idsForRange(stream, min, max)
	case windowNearPost:
		min, max, err := nearPostWindow(stream, req.nearPostNumber, cfg.PostsPerPage)
		if err != nil {
			return nil, err
		}
		windowIDs = idsForRange(stream, min, max)
	case windowExplicitIDs:
		windowIDs = idsForExplicitRequest(stream, req.postIDs)
	case windowBestOf:
		windowIDs, err = curateBestOf(ctx, stream, topic, stores.Reactions, req.bestOf)
		if err != nil {
			return nil, err
		}
	}

	view.Posts, err = view.materialize(ctx, windowIDs)
	if err != nil {
		return nil, err
	}

	return view, nil
}

/*
Fetches full records for the selected ids and restores the stream's sort
order, since the store makes no ordering promises for by-id lookups.
*/
func (v *TopicView) materialize(ctx context.Context, ids []int) ([]PostAndAuthor, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	posts, err := v.stores.Posts.PostsByIDs(ctx, ids)
	if err != nil {
		return nil, oops.New(err, "failed to materialize posts for topic %d", v.Topic.ID)
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Post.SortOrder < posts[j].Post.SortOrder
	})
	return posts, nil
}

func (v *TopicView) CurrentPage() int {
	return v.currentPage
}

/*
The next page number, or nil when this window already reaches the end of
the filtered stream.
*/
func (v *TopicView) NextPage() *int {
	return v.nextPage.get(func() *int {
		if len(v.Posts) == 0 {
			return nil
		}
		lastPostNumber := v.Posts[len(v.Posts)-1].Post.PostNumber
		if lastPostNumber < v.stream.HighestPostNumber() {
			next := v.currentPage + 1
			return &next
		}
		return nil
	})
}

/*
The canonical site-relative path for this view. A near-post request
canonicalizes to the page containing its anchor; other requests
canonicalize to the current page. Page 1 is omitted entirely.
*/
func (v *TopicView) CanonicalPath() string {
	return v.canonicalPath.get(func() string {
		page := v.currentPage
		if v.req.strategy == windowNearPost {
			page = (v.req.nearPostNumber-1)/v.cfg.PostsPerPage + 1
		}
		return forumurl.TopicPath(v.Topic.Slug, v.Topic.ID, page)
	})
}

/*
The post numbers in this window that the viewer has already read. Empty
for anonymous viewers. Only the materialized post numbers are ever looked
up, never the whole topic.
*/
func (v *TopicView) ReadSet(ctx context.Context) (map[int]bool, error) {
	return v.readSet.getErr(func() (map[int]bool, error) {
		if v.stores.Guardian.IsAnonymous(v.Viewer) || len(v.Posts) == 0 {
			return map[int]bool{}, nil
		}

		candidates := make([]int, len(v.Posts))
		for i, post := range v.Posts {
			candidates[i] = post.Post.PostNumber
		}
		read, err := v.stores.Reads.ReadPostNumbers(ctx, v.Topic.ID, v.Viewer.ID, candidates)
		if err != nil {
			return nil, oops.New(err, "failed to fetch read state for topic %d", v.Topic.ID)
		}
		return read, nil
	})
}

// The topic's top authors by post count, topic-wide rather than
// window-scoped.
func (v *TopicView) Participants(ctx context.Context) ([]Participant, error) {
	return v.participants.getErr(func() ([]Participant, error) {
		participants, err := v.stores.Posts.ParticipantCounts(ctx, v.Topic.ID, participantLimit)
		if err != nil {
			return nil, oops.New(err, "failed to fetch participants for topic %d", v.Topic.ID)
		}
		return participants, nil
	})
}

// Related topics for the footer. Always nil for private messages; the
// recommender is invoked at most once per view.
func (v *TopicView) SuggestedTopics(ctx context.Context) ([]models.TopicSummary, error) {
	return v.suggested.getErr(func() ([]models.TopicSummary, error) {
		if v.Topic.IsPrivateMessage() {
			return nil, nil
		}
		suggested, err := v.stores.Suggestions.SuggestedFor(ctx, v.Topic, v.Viewer)
		if err != nil {
			return nil, oops.New(err, "failed to fetch suggested topics for topic %d", v.Topic.ID)
		}
		return suggested, nil
	})
}

// Outbound link counts per materialized post id.
func (v *TopicView) LinkCounts() map[int]int {
	return v.linkCounts.get(func() map[int]int {
		counts := make(map[int]int, len(v.Posts))
		for _, post := range v.Posts {
			counts[post.Post.ID] = links.CountOutbound(post.Post.Cooked, v.cfg.InternalLinkBase)
		}
		return counts
	})
}

// Like counts per materialized post id.
func (v *TopicView) LikeCounts(ctx context.Context) (map[int]int, error) {
	return v.likeCounts.getErr(func() (map[int]int, error) {
		if len(v.Posts) == 0 {
			return map[int]int{}, nil
		}
		ids := make([]int, len(v.Posts))
		for i, post := range v.Posts {
			ids[i] = post.Post.ID
		}
		counts, err := v.stores.Reactions.LikeCounts(ctx, ids)
		if err != nil {
			return nil, oops.New(err, "failed to fetch like counts for topic %d", v.Topic.ID)
		}
		return counts, nil
	})
}

// A plain-text summary of the topic, derived from its opening post. Empty
// when the opening post is not in the viewer's stream.
func (v *TopicView) Summary(ctx context.Context) (string, error) {
	first, err := v.findFirstPost(ctx)
	if err != nil || first == nil {
		return "", err
	}
	return parsing.Summarize(first.Post.Raw), nil
}

// The avatar of the opening post's author, for social previews. Empty when
// unavailable.
func (v *TopicView) ImageURL(ctx context.Context) (string, error) {
	first, err := v.findFirstPost(ctx)
	if err != nil || first == nil {
		return "", err
	}
	if first.Author == nil || first.Author.AvatarAssetID == nil {
		return "", nil
	}
	return forumurl.BuildAvatar(*first.Author.AvatarAssetID), nil
}

func (v *TopicView) findFirstPost(ctx context.Context) (*PostAndAuthor, error) {
	return v.firstPost.getErr(func() (*PostAndAuthor, error) {
		for i := range v.Posts {
			if v.Posts[i].Post.PostNumber == 1 {
				return &v.Posts[i], nil
			}
		}

		// The opening post may not be in the window (e.g. page 2); fetch it
		// through the stream so visibility rules still apply.
		for _, streamPost := range v.stream.Posts {
			if streamPost.PostNumber == 1 {
				posts, err := v.stores.Posts.PostsByIDs(ctx, []int{streamPost.ID})
				if err != nil {
					return nil, oops.New(err, "failed to fetch opening post for topic %d", v.Topic.ID)
				}
				if len(posts) == 0 {
					return nil, nil
				}
				return &posts[0], nil
			}
		}
		return nil, nil
	})
}
