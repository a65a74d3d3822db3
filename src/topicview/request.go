package topicview

type windowStrategy int

const (
	windowPaged windowStrategy = iota
	windowNearPost
	windowExplicitIDs
	windowBestOf
)

type BestOfOptions struct {
	// Maximum number of ranked candidates considered. Applied before the
	// trust and score gates, so the result can come up short even when more
	// qualifying posts exist further down the ranking; this matches the
	// upstream scoring priority.
	Max int

	// Curation is skipped entirely unless the topic has at least
	// MinReplies replies (the opening post does not count).
	MinReplies int

	MinTrustLevel int

	// Score at or above which a post bypasses the trust-level gate.
	BypassTrustLevelScore float64

	MinScore float64

	// Restrict candidates to posts liked by at least one moderator.
	OnlyModeratorLiked bool
}

/*
WindowRequest selects exactly one windowing strategy. Construct one with
PagedRequest, NearPostRequest, ExplicitIDsRequest or BestOfRequest; for
loosely-typed input (query params), ResolveRequest encodes the precedence
between competing options.
*/
type WindowRequest struct {
	strategy windowStrategy

	page           int
	nearPostNumber int
	postIDs        []int
	bestOf         BestOfOptions
}

func PagedRequest(page int) WindowRequest {
	return WindowRequest{strategy: windowPaged, page: page}
}

func NearPostRequest(postNumber int) WindowRequest {
	return WindowRequest{strategy: windowNearPost, nearPostNumber: postNumber}
}

func ExplicitIDsRequest(postIDs []int) WindowRequest {
	return WindowRequest{strategy: windowExplicitIDs, postIDs: postIDs}
}

func BestOfRequest(opts BestOfOptions) WindowRequest {
	return WindowRequest{strategy: windowBestOf, bestOf: opts}
}

/*
Loosely-typed request input, typically straight from query params. Fields
are recognized in priority order: NearPostNumber, then PostIDs, then
BestOf, then Page (the default); the first recognized one wins.
*/
type RequestParams struct {
	Page           int
	NearPostNumber int
	PostIDs        []int
	BestOf         *BestOfOptions
}

func ResolveRequest(params RequestParams) WindowRequest {
	switch {
	case params.NearPostNumber > 0:
		return NearPostRequest(params.NearPostNumber)
	case len(params.PostIDs) > 0:
		return ExplicitIDsRequest(params.PostIDs)
	case params.BestOf != nil:
		return BestOfRequest(*params.BestOf)
	default:
		return PagedRequest(params.Page)
	}
}
