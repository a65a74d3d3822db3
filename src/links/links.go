// Package links extracts outbound links from cooked post content.
package links

import (
	"strings"

	"mvdan.cc/xurls/v2"
)

var linkRegex = xurls.Strict()

// Returns every absolute URL mentioned in the given cooked HTML, in order
// of appearance, duplicates included.
func Extract(cooked string) []string {
	return linkRegex.FindAllString(cooked, -1)
}

// Counts the outbound links in the given cooked HTML. Links under
// internalBase (the site's own base URL) are not outbound and do not count.
// Pass an empty internalBase to count everything.
func CountOutbound(cooked string, internalBase string) int {
	count := 0
	for _, link := range Extract(cooked) {
		if internalBase != "" && strings.HasPrefix(link, internalBase) {
			continue
		}
		count++
	}
	return count
}
