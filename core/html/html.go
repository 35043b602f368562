// Package html renders page trees to HTML fragments and imports
// foreign HTML sources.
//
// The dumper emits body content only; templates put the document
// frame around it. Link targets, image sources and checkbox icons go
// through the configured Linker. The parser accepts arbitrary tag
// soup: golang.org/x/net/html repairs the markup and the node tree is
// walked into a Normalizer, which repairs the event stream.
package html

import (
	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/format"
)

func init() {
	format.Register(&format.Format{
		Name:        "html",
		DisplayName: "HTML",
		Flags:       format.Export | format.Import,
		NewParser:   func() format.Parser { return NewParser() },
		NewDumper:   func(opts dump.Options) format.Dumper { return NewDumper(opts) },
	})
}
