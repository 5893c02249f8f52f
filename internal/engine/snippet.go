package engine

import "strings"

// snippetWindow is how many characters of context a snippet carries around
// the first matching term.
const snippetWindow = 160

// makeSnippet returns a short excerpt of body centered on the first query
// term that occurs in it. When no term matches (or the body is short) the
// head of the body is returned instead.
func makeSnippet(body, query string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	if len(body) <= snippetWindow {
		return body
	}

	lower := strings.ToLower(body)
	pos := -1
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if i := strings.Index(lower, term); i >= 0 && (pos < 0 || i < pos) {
			pos = i
		}
	}
	if pos < 0 {
		return body[:snippetWindow] + "..."
	}

	start := pos - snippetWindow/2
	if start < 0 {
		start = 0
	}
	end := start + snippetWindow
	if end > len(body) {
		end = len(body)
		start = end - snippetWindow
	}

	snippet := body[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(body) {
		snippet = snippet + "..."
	}
	return snippet
}
