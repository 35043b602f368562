// Package latex writes LaTeX source. Headings map to the sectioning
// commands of the document class named in the template options. There
// is no way back from LaTeX, so the format registers as export only.
package latex

import (
	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/format"
)

func init() {
	format.Register(&format.Format{
		Name:        "latex",
		DisplayName: "LaTeX (.tex)",
		Flags:       format.Export,
		NewDumper:   func(opts dump.Options) format.Dumper { return NewDumper(opts) },
	})
}
