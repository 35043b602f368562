package wiki

import (
	"regexp"
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/format"
	"github.com/ggfazio/zim-desktop-wiki/core/link"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// inlineToken is one recognized span of inline markup. emit sends the
// events for it; surrounding text stays literal.
type inlineToken struct {
	start, end int
	emit       func(tree.Visitor) error
}

// tokenFinders in match priority order. The scanner takes the token
// that starts earliest; on a tie the finder listed first wins.
// Populated in init: emitSpan closures reach back through emitInline,
// so a composite literal initializer would be an initialization cycle.
var tokenFinders []func(string) *inlineToken

func init() {
	tokenFinders = []func(string) *inlineToken{
		findLink,
		findImage,
		findCode,
		findAutoLink,
		findPair("**", tree.TagStrong),
		findPair("__", tree.TagMark),
		findPair("~~", tree.TagStrike),
		findScript(subRe, tree.TagSubscript),
		findScript(supRe, tree.TagSuperscript),
		findEmphasis,
		findTag,
	}
}

var (
	tagRe = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
	subRe = regexp.MustCompile(`_\{([^}\n]+)\}`)
	supRe = regexp.MustCompile(`\^\{([^}\n]+)\}`)
)

// emitInline parses inline markup in one line of body text. Style spans
// recurse; verbatim spans, link labels and image references do not.
func emitInline(v tree.Visitor, text string) error {
	for text != "" {
		tok := nextToken(text)
		if tok == nil {
			return v.Text(text)
		}
		if tok.start > 0 {
			if err := v.Text(text[:tok.start]); err != nil {
				return err
			}
		}
		if err := tok.emit(v); err != nil {
			return err
		}
		text = text[tok.end:]
	}
	return nil
}

func nextToken(text string) *inlineToken {
	var best *inlineToken
	for _, find := range tokenFinders {
		if tok := find(text); tok != nil && (best == nil || tok.start < best.start) {
			best = tok
		}
	}
	return best
}

func findLink(text string) *inlineToken {
	for start := 0; ; start++ {
		idx := strings.Index(text[start:], "[[")
		if idx < 0 {
			return nil
		}
		start += idx
		if strings.HasPrefix(text[start:], "[[[") {
			continue
		}
		lineEnd := lineEndAfter(text, start)
		rel := strings.Index(text[start+2:lineEnd], "]]")
		if rel < 0 {
			continue
		}
		inner := text[start+2 : start+2+rel]
		if strings.TrimSpace(inner) == "" {
			continue
		}

		href, label, piped := strings.Cut(inner, "|")
		href = strings.TrimSpace(href)
		if !piped || strings.TrimSpace(label) == "" {
			label = href
		}
		return &inlineToken{start: start, end: start + 2 + rel + 2,
			emit: func(v tree.Visitor) error {
				attrs := tree.Attrs{{Key: tree.AttrHref, Value: href}}
				_, err := v.Append(tree.TagLink, attrs, label)
				return err
			}}
	}
}

func findImage(text string) *inlineToken {
	for start := 0; ; start++ {
		idx := strings.Index(text[start:], "{{")
		if idx < 0 {
			return nil
		}
		start += idx
		// {{{ opens an object block, never an image.
		if strings.HasPrefix(text[start:], "{{{") {
			continue
		}
		lineEnd := lineEndAfter(text, start)
		rel := strings.Index(text[start+2:lineEnd], "}}")
		if rel < 0 {
			continue
		}
		inner := text[start+2 : start+2+rel]
		if strings.TrimSpace(inner) == "" {
			continue
		}

		url, alt, _ := strings.Cut(inner, "|")
		attrs := format.ParseImageURL(strings.TrimSpace(url))
		if strings.TrimSpace(alt) != "" {
			attrs.Set(tree.AttrAlt, alt)
		}
		return &inlineToken{start: start, end: start + 2 + rel + 2,
			emit: func(v tree.Visitor) error {
				_, err := v.Append(tree.TagImage, attrs, "")
				return err
			}}
	}
}

func findCode(text string) *inlineToken {
	for start := 0; ; start++ {
		idx := strings.Index(text[start:], "''")
		if idx < 0 {
			return nil
		}
		start += idx
		lineEnd := lineEndAfter(text, start)
		rel := strings.Index(text[start+2:lineEnd], "''")
		if rel <= 0 {
			continue
		}
		content := text[start+2 : start+2+rel]
		return &inlineToken{start: start, end: start + 2 + rel + 2,
			emit: func(v tree.Visitor) error {
				_, err := v.Append(tree.TagVerbatim, nil, content)
				return err
			}}
	}
}

func findAutoLink(text string) *inlineToken {
	spans := link.AutoLinkSpans(text)
	if len(spans) == 0 {
		return nil
	}
	target := text[spans[0][0]:spans[0][1]]
	return &inlineToken{start: spans[0][0], end: spans[0][1],
		emit: func(v tree.Visitor) error {
			attrs := tree.Attrs{{Key: tree.AttrHref, Value: target}}
			_, err := v.Append(tree.TagLink, attrs, target)
			return err
		}}
}

// findPair matches a symmetric two byte style marker on one line.
func findPair(marker string, tag tree.Tag) func(string) *inlineToken {
	return func(text string) *inlineToken {
		for start := 0; ; start++ {
			idx := strings.Index(text[start:], marker)
			if idx < 0 {
				return nil
			}
			start += idx
			lineEnd := lineEndAfter(text, start)
			rel := strings.Index(text[start+2:lineEnd], marker)
			if rel <= 0 {
				continue
			}
			content := text[start+2 : start+2+rel]
			return &inlineToken{start: start, end: start + 2 + rel + 2,
				emit: emitSpan(tag, content)}
		}
	}
}

func findScript(re *regexp.Regexp, tag tree.Tag) func(string) *inlineToken {
	return func(text string) *inlineToken {
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			return nil
		}
		content := text[m[2]:m[3]]
		return &inlineToken{start: m[0], end: m[1],
			emit: func(v tree.Visitor) error {
				_, err := v.Append(tag, nil, content)
				return err
			}}
	}
}

// findEmphasis matches //...//, skipping the slashes of URL schemes on
// both ends so "http://x" never opens or closes a span.
func findEmphasis(text string) *inlineToken {
	for start := 0; ; start++ {
		idx := strings.Index(text[start:], "//")
		if idx < 0 {
			return nil
		}
		start += idx
		if start > 0 && text[start-1] == ':' {
			continue
		}
		lineEnd := lineEndAfter(text, start)
		close := findEmphasisClose(text, start+2, lineEnd)
		if close < 0 {
			continue
		}
		content := text[start+2 : close]
		return &inlineToken{start: start, end: close + 2,
			emit: emitSpan(tree.TagEmphasis, content)}
	}
}

func findEmphasisClose(text string, from, lineEnd int) int {
	for i := from; i+2 <= lineEnd; i++ {
		if text[i] != '/' || text[i+1] != '/' {
			continue
		}
		if text[i-1] == ':' {
			i++
			continue
		}
		if i == from {
			return -1
		}
		return i
	}
	return -1
}

func findTag(text string) *inlineToken {
	for _, loc := range tagRe.FindAllStringIndex(text, -1) {
		start := loc[0]
		if start > 0 && !isSpace(text[start-1]) {
			continue
		}
		word := text[start+1 : loc[1]]
		full := text[start:loc[1]]
		return &inlineToken{start: start, end: loc[1],
			emit: func(v tree.Visitor) error {
				attrs := tree.Attrs{{Key: tree.AttrName, Value: word}}
				_, err := v.Append(tree.TagTag, attrs, full)
				return err
			}}
	}
	return nil
}

func emitSpan(tag tree.Tag, content string) func(tree.Visitor) error {
	return func(v tree.Visitor) error {
		if _, err := v.Start(tag, nil); err != nil {
			return err
		}
		if err := emitInline(v, content); err != nil {
			return err
		}
		return v.End(tag)
	}
}

// lineEndAfter returns the index of the newline terminating the line
// containing pos, or len(text). Inline markup never crosses it.
func lineEndAfter(text string, pos int) int {
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(text)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
