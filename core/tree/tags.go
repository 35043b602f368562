package tree

// Tag identifies the semantic role of a node. The set of tags is closed;
// dumpers must handle every tag that can reach them.
type Tag string

const (
	// TagRoot is the document root element.
	TagRoot Tag = "zim-tree"

	// Block level elements.
	TagHeading       Tag = "h"
	TagParagraph     Tag = "p"
	TagVerbatimBlock Tag = "pre"
	TagBlock         Tag = "div"
	TagObject        Tag = "object"
	TagImage         Tag = "img"
	TagListItem      Tag = "li"

	// List containers.
	TagBulletList   Tag = "ul"
	TagNumberedList Tag = "ol"

	// Inline elements.
	TagEmphasis    Tag = "emphasis"
	TagStrong      Tag = "strong"
	TagMark        Tag = "mark"
	TagStrike      Tag = "strike"
	TagVerbatim    Tag = "code"
	TagSubscript   Tag = "sub"
	TagSuperscript Tag = "sup"
	TagLink        Tag = "link"
	TagTag         Tag = "tag"
	TagAnchor      Tag = "anchor"

	// TagIgnore marks editor-internal regions. The normalizer drops the
	// element and keeps its content.
	TagIgnore Tag = "_ignore_"
)

// Bullet values carried in the "bullet" attribute of list items.
const (
	BulletNormal = "*"
	UncheckedBox = "unchecked-box"
	CheckedBox   = "checked-box"
	XCheckedBox  = "xchecked-box"
)

// Well known attribute keys.
const (
	AttrLevel   = "level"   // heading depth, 1..6
	AttrHref    = "href"    // link target
	AttrBullet  = "bullet"  // list item bullet style
	AttrType    = "type"    // embedded object type
	AttrSrc     = "src"     // image source
	AttrAlt     = "alt"     // image alternative text
	AttrName    = "name"    // anchor name
	AttrStart   = "start"   // numbered list start value
	AttrIndent  = "indent"  // indent depth of a block
	AttrPartial = "partial" // root flag: tree is a page fragment
	AttrRaw     = "raw"     // root flag: editor state, not normalized

	// AttrSrcFile is a runtime annotation with the resolved image path.
	// Hidden keys are not serialized.
	AttrSrcFile = "_src_file"
)

var validTags = map[Tag]bool{
	TagRoot:          true,
	TagHeading:       true,
	TagParagraph:     true,
	TagVerbatimBlock: true,
	TagBlock:         true,
	TagObject:        true,
	TagImage:         true,
	TagListItem:      true,
	TagBulletList:    true,
	TagNumberedList:  true,
	TagEmphasis:      true,
	TagStrong:        true,
	TagMark:          true,
	TagStrike:        true,
	TagVerbatim:      true,
	TagSubscript:     true,
	TagSuperscript:   true,
	TagLink:          true,
	TagTag:           true,
	TagAnchor:        true,
}

var blockLevelTags = map[Tag]bool{
	TagParagraph:     true,
	TagHeading:       true,
	TagVerbatimBlock: true,
	TagBlock:         true,
	TagObject:        true,
	TagImage:         true,
	TagListItem:      true,
}

var inlineTags = map[Tag]bool{
	TagEmphasis:    true,
	TagStrong:      true,
	TagMark:        true,
	TagStrike:      true,
	TagVerbatim:    true,
	TagSubscript:   true,
	TagSuperscript: true,
	TagLink:        true,
	TagTag:         true,
	TagAnchor:      true,
}

// noNewlineTags are elements whose text may not span a line break. The
// normalizer splits these into per-line sibling copies.
var noNewlineTags = map[Tag]bool{
	TagHeading:  true,
	TagEmphasis: true,
	TagStrong:   true,
	TagMark:     true,
	TagStrike:   true,
	TagVerbatim: true,
}

// IsValid reports whether t is part of the closed tag set.
func (t Tag) IsValid() bool {
	return validTags[t]
}

// IsBlockLevel reports whether t occupies its own line(s) and takes part
// in newline based separation.
func (t Tag) IsBlockLevel() bool {
	return blockLevelTags[t]
}

// IsInline reports whether t is embedded within block level text.
func (t Tag) IsInline() bool {
	return inlineTags[t]
}

// IsVoid reports whether t is leaf-like and survives emptiness checks.
// Void elements carry their payload in attributes rather than content.
func (t Tag) IsVoid() bool {
	return t == TagImage || t == TagObject
}
