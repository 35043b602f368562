package link

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ggfazio/zim-desktop-wiki/core/errors"
)

// PageRef is a parsed page reference.
type PageRef struct {
	// Absolute marks a reference rooted at the notebook top (":Foo:Bar").
	Absolute bool

	// Sub marks a reference relative to the current page ("+Child").
	Sub bool

	// Parts are the colon separated path segments, outermost first.
	Parts []string

	// Anchor is the fragment following "#", if any.
	Anchor string
}

// pageRefGrammar is the participle grammar for page references.
// Examples: "Foo", "Foo:Bar", ":Foo:Bar", "+Child", "Foo:Bar#anchor"
type pageRefGrammar struct {
	Root   bool     `parser:"( @Colon"`
	Sub    bool     `parser:"  | @Plus )?"`
	First  string   `parser:"@Segment"`
	Rest   []string `parser:"( Colon @Segment )*"`
	Anchor string   `parser:"( Hash @Segment )?"`
}

// pageRefLexer defines the lexer for page references.
// Note: Segment is greedy, so "+" and spaces inside a name stay part of
// it; Plus only matches where a segment starts.
var pageRefLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Plus", Pattern: `\+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Hash", Pattern: `#`},
	{Name: "Segment", Pattern: `[^:#]+`},
})

// pageRefParser is the participle parser for page references.
var pageRefParser = participle.MustBuild[pageRefGrammar](
	participle.Lexer(pageRefLexer),
)

// ParsePageRef parses a page reference string.
// Supported forms:
//   - "Foo" (floating reference, resolved by lookup)
//   - "Foo:Bar" (path through the page hierarchy)
//   - ":Foo:Bar" (absolute, rooted at the notebook top)
//   - "+Child" (relative to the current page)
//   - "Foo#anchor" (with a fragment)
//   - "#anchor" (fragment within the current page)
func ParsePageRef(s string) (*PageRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.NewParse("pageref", "", "empty reference")
	}

	if rest, ok := strings.CutPrefix(s, "#"); ok {
		if rest == "" || strings.ContainsAny(rest, ":#") {
			return nil, errors.NewParse("pageref", "", "invalid anchor reference "+s)
		}
		return &PageRef{Anchor: rest}, nil
	}

	parsed, err := pageRefParser.ParseString("", s)
	if err != nil {
		return nil, &errors.ParseError{Format: "pageref", Message: "invalid reference " + s, Err: err}
	}

	ref := &PageRef{
		Absolute: parsed.Root,
		Sub:      parsed.Sub,
		Anchor:   parsed.Anchor,
	}
	for _, part := range append([]string{parsed.First}, parsed.Rest...) {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, errors.NewParse("pageref", "", "empty segment in reference "+s)
		}
		ref.Parts = append(ref.Parts, part)
	}
	return ref, nil
}

// String returns the canonical form of the reference.
func (r *PageRef) String() string {
	var sb strings.Builder
	if r.Absolute {
		sb.WriteString(":")
	} else if r.Sub {
		sb.WriteString("+")
	}
	sb.WriteString(strings.Join(r.Parts, ":"))
	if r.Anchor != "" {
		sb.WriteString("#")
		sb.WriteString(r.Anchor)
	}
	return sb.String()
}

// Basename returns the last path segment, or "" for an anchor-only
// reference.
func (r *PageRef) Basename() string {
	if len(r.Parts) == 0 {
		return ""
	}
	return r.Parts[len(r.Parts)-1]
}

var (
	anchorSpaceRe = regexp.MustCompile(`\s`)
	anchorDropRe  = regexp.MustCompile(`[^\p{L}\p{N}_-]`)
)

// HeadingAnchor derives an anchor name from heading text.
func HeadingAnchor(text string) string {
	name := strings.ToLower(strings.TrimSpace(text))
	name = anchorSpaceRe.ReplaceAllString(name, "-")
	return anchorDropRe.ReplaceAllString(name, "")
}
