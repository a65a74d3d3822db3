package topicview

import (
	"github.com/nterray/discourse/src/utils"
)

/*
Window boundary math. These are pure functions over the filtered stream:
each strategy computes a candidate inclusive index range [min, max], and
clampRange reconciles it against the actual stream length. Windowing always
operates on index position within the stream, never on post_number
arithmetic, since the visible set can have gaps after deletions.
*/

// Paged windows start at page 1; anything lower is treated as page 1.
func pagedWindow(page int, pageSize int) (min int, max int) {
	page = utils.IntMax(page, 1)
	min = pageSize * (page - 1)
	max = min + pageSize - 1
	return min, max
}

/*
Computes the window for a near-post request: roughly a quarter page of
context above the anchor, the rest below. When the window would run past
the end of the stream it is pulled back so that a full page is shown near
the end, rather than a short trailing page.

Returns ErrAnchorNotFound if the anchor post is not in the viewer's
visible stream.
*/
func nearPostWindow(stream *FilteredStream, targetPostNumber int, pageSize int) (min int, max int, err error) {
	closest, ok := stream.ClosestToPostNumber(targetPostNumber)
	if !ok {
		return 0, 0, ErrAnchorNotFound
	}
	closestIndex, ok := stream.IndexOfID(closest.ID)
	if !ok {
		return 0, 0, ErrAnchorNotFound
	}

	postsBefore := utils.IntMax(pageSize/4, 1)
	min = utils.IntMax(closestIndex-postsBefore, 0)
	max = min + pageSize - 1

	lastIndex := stream.Len() - 1
	if max >= lastIndex {
		max = lastIndex
		min = lastIndex - pageSize + 1 // may go negative; clampRange handles it
	}

	return min, max, nil
}

/*
Clamps a candidate [min, max] range to the stream's bounds. ok is false
when no posts satisfy the window, e.g. an empty topic or a page past the
end; that is a valid empty result, not an error.
*/
func clampRange(min int, max int, postCount int) (int, int, bool) {
	max = utils.IntMin(max, postCount-1)
	if min > max {
		return 0, 0, false
	}
	min = utils.IntMax(utils.IntMin(min, max), 0)
	return min, max, true
}

/*
Materializes an id window: the slice of OrderedIDs covered by the clamped
range. The returned slice aliases the stream's memoized projection.
*/
func idsForRange(stream *FilteredStream, min int, max int) []int {
	min, max, ok := clampRange(min, max, stream.Len())
	if !ok {
		return nil
	}
	return stream.OrderedIDs()[min : max+1]
}

/*
Selects exactly the requested ids, in the stream's sort order rather than
the caller's input order. Ids not present in the viewer's stream are
silently dropped, which also enforces the staff-only soft-delete rule,
since deleted posts never enter a non-staff stream.
*/
func idsForExplicitRequest(stream *FilteredStream, requested []int) []int {
	wanted := make(map[int]bool, len(requested))
	for _, id := range requested {
		wanted[id] = true
	}

	var ids []int
	for _, id := range stream.OrderedIDs() {
		if wanted[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
