package topicview

import "errors"

var (
	// The topic id did not resolve to an existing topic.
	ErrTopicNotFound = errors.New("topic not found")

	// The topic is a private message and the viewer is anonymous. Distinct
	// from ErrPermissionDenied so callers can redirect to authentication
	// instead of rejecting outright.
	ErrLoginRequired = errors.New("login required")

	// The viewer lacks the capability to view the topic.
	ErrPermissionDenied = errors.New("permission denied")

	// A near-post request's target post is absent from the viewer's visible
	// stream. Non-fatal; callers may fall back to a default page. This is
	// distinct from an empty result, which is not an error at all.
	ErrAnchorNotFound = errors.New("anchor post not found")
)
