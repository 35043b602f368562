// Package markdown reads CommonMark text and writes pandoc flavored
// markdown. The parser runs goldmark and replays its syntax tree as
// page events; the dumper follows the pandoc notation for the
// constructs markdown itself has no syntax for.
package markdown

import (
	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/format"
)

func init() {
	format.Register(&format.Format{
		Name:        "markdown",
		DisplayName: "Markdown (pandoc)",
		Flags:       format.Export | format.Import | format.Text,
		NewParser:   func() format.Parser { return NewParser() },
		NewDumper:   func(opts dump.Options) format.Dumper { return NewDumper(opts) },
	})
}
