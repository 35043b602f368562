// Package wiki reads and writes the native zim wiki notation.
//
// The notation is line oriented. Headings sit between runs of "=",
// list items start with a bullet after optional tab indent, verbatim
// blocks are fenced by ''' lines and object blocks by {{{type: and
// }}} lines. Inline markup nests, except inside verbatim spans, link
// labels and image references, which stay literal.
package wiki

import (
	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/format"
)

func init() {
	format.Register(&format.Format{
		Name:        "wiki",
		DisplayName: "Wiki",
		Flags:       format.Export | format.Import | format.Native | format.Text,
		NewParser:   func() format.Parser { return NewParser() },
		NewDumper:   func(opts dump.Options) format.Dumper { return NewDumper(opts) },
	})
}
