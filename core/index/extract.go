package index

import (
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/link"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// Heading is one heading extracted from a page.
type Heading struct {
	Level  int
	Text   string
	Anchor string
}

// Link is one outgoing link extracted from a page.
type Link struct {
	Href     string
	Category string
}

type pageData struct {
	title    string
	headings []Heading
	links    []Link
	tags     []string
}

// extractor walks a page tree and collects the facts the index stores.
// Heading text is accumulated across inline children, so markup inside
// a heading does not split it.
type extractor struct {
	data      pageData
	inHeading bool
	level     int
	text      strings.Builder
}

func extract(t *tree.Tree) (*pageData, error) {
	var e extractor
	if err := t.Visit(&e); err != nil {
		return nil, err
	}
	return &e.data, nil
}

func (e *extractor) Start(tag tree.Tag, attrs tree.Attrs) (tree.VisitResult, error) {
	switch tag {
	case tree.TagHeading:
		e.inHeading = true
		e.level = attrs.Int(tree.AttrLevel, 1)
		e.text.Reset()
	case tree.TagLink:
		e.addLink(attrs.Get(tree.AttrHref))
	case tree.TagTag:
		e.addTag(attrs, "")
	}
	return tree.VisitContinue, nil
}

func (e *extractor) Text(text string) error {
	if e.inHeading {
		e.text.WriteString(text)
	}
	return nil
}

func (e *extractor) End(tag tree.Tag) error {
	if tag == tree.TagHeading && e.inHeading {
		e.finishHeading(e.text.String())
	}
	return nil
}

func (e *extractor) Append(tag tree.Tag, attrs tree.Attrs, text string) (tree.VisitResult, error) {
	switch tag {
	case tree.TagHeading:
		e.level = attrs.Int(tree.AttrLevel, 1)
		e.finishHeading(text)
		return tree.VisitContinue, nil
	case tree.TagLink:
		e.addLink(attrs.Get(tree.AttrHref))
	case tree.TagTag:
		e.addTag(attrs, text)
	}
	if e.inHeading {
		e.text.WriteString(text)
	}
	return tree.VisitContinue, nil
}

func (e *extractor) finishHeading(text string) {
	e.inHeading = false
	e.data.headings = append(e.data.headings, Heading{
		Level:  e.level,
		Text:   text,
		Anchor: link.HeadingAnchor(text),
	})
	if e.data.title == "" {
		e.data.title = text
	}
}

func (e *extractor) addLink(href string) {
	if href == "" {
		return
	}
	e.data.links = append(e.data.links, Link{Href: href, Category: link.Type(href)})
}

func (e *extractor) addTag(attrs tree.Attrs, text string) {
	name := attrs.Get(tree.AttrName)
	if name == "" {
		name = strings.TrimPrefix(text, "@")
	}
	if name != "" {
		e.data.tags = append(e.data.tags, name)
	}
}
