package link

import "regexp"

// autoLinkRe matches the targets that get linked without any markup:
// URLs with a scheme, mailto URIs and bare mail addresses. One combined
// pattern keeps the alternatives from overlapping each other.
var autoLinkRe = regexp.MustCompile(
	`[A-Za-z][A-Za-z0-9+.\-]*://[^\s]+` +
		`|mailto:[^\s]+` +
		`|[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// AutoLinkSpans returns the byte spans of bare URLs and mail addresses
// in free text, in order. A match must start at a word boundary and
// trailing punctuation stays outside the span, so "see http://x.org."
// links without the final dot.
func AutoLinkSpans(text string) [][2]int {
	var spans [][2]int
	for _, loc := range autoLinkRe.FindAllStringIndex(text, -1) {
		start := loc[0]
		if start > 0 && !autoLinkBoundary(text[start-1]) {
			continue
		}
		end := trimSpanPunct(text, start, loc[1])
		if end > start {
			spans = append(spans, [2]int{start, end})
		}
	}
	return spans
}

func autoLinkBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '(', '<', '"', '\'', '|':
		return true
	}
	return false
}

func trimSpanPunct(text string, start, end int) int {
	for end > start {
		switch text[end-1] {
		case '.', ',', ';', ':', '!', '?', ')', ']', '}', '"', '\'':
			end--
		default:
			return end
		}
	}
	return end
}
