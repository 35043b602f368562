package latex

import (
	"strings"
	"testing"

	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/format"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

const prolog = "<?xml version='1.0' encoding='utf-8'?>\n"

func fromXML(t *testing.T, body string) *tree.Tree {
	t.Helper()
	tr, err := tree.FromXML(prolog + body)
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return tr
}

func dumpAll(t *testing.T, tr *tree.Tree) string {
	t.Helper()
	d := NewDumper(dump.Options{
		Linker:   dump.NewStubLinker(),
		Template: map[string]string{"document_type": "report"},
	})
	lines, err := d.Dump(tr)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	return strings.Join(lines, "")
}

func TestDumpDocument(t *testing.T) {
	tr := fromXML(t, `<zim-tree><h level="1">Title</h>`+"\n\n"+
		`<p>Hello <strong>world</strong>`+"\n</p></zim-tree>")
	want := "\\chapter{Title}\n\n\nHello \\textbf{world}\n"
	if got := dumpAll(t, tr); got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestDumpDocumentTypes(t *testing.T) {
	body := `<zim-tree><h level="2">T</h>` + "\n</zim-tree>"
	tests := []struct {
		docType string
		want    string
	}{
		{"report", "\\section{T}\n\n"},
		{"article", "\\subsection{T}\n\n"},
		{"book", "\\chapter{T}\n\n"},
		// Template values may keep their quotes.
		{"'article'", "\\subsection{T}\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.docType, func(t *testing.T) {
			d := NewDumper(dump.Options{Template: map[string]string{"document_type": tt.docType}})
			lines, err := d.Dump(fromXML(t, body))
			if err != nil {
				t.Fatalf("Dump: %v", err)
			}
			if got := strings.Join(lines, ""); got != tt.want {
				t.Errorf("Dump = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDumpDocumentTypeFallback(t *testing.T) {
	body := `<zim-tree><h level="1">X</h>` + "\n</zim-tree>"
	for name, tmpl := range map[string]map[string]string{
		"unset":   nil,
		"unknown": {"document_type": "letter"},
	} {
		t.Run(name, func(t *testing.T) {
			d := NewDumper(dump.Options{Template: tmpl})
			lines, err := d.Dump(fromXML(t, body))
			if err != nil {
				t.Fatalf("Dump: %v", err)
			}
			if got, want := strings.Join(lines, ""), "\\chapter{X}\n\n"; got != want {
				t.Errorf("Dump = %q, want report sectioning %q", got, want)
			}
		})
	}
}

func TestDumpHeadingClamped(t *testing.T) {
	tr := fromXML(t, `<zim-tree><h level="7">Deep</h>`+"\n</zim-tree>")
	want := "\\paragraph{Deep}\n\n"
	if got := dumpAll(t, tr); got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestDumpEscaping(t *testing.T) {
	tr := fromXML(t, `<zim-tree><p>50% of $x_i^2 in C:\tmp`+"\n</p></zim-tree>")
	want := "50\\% of \\$x\\_i\\^{}2 in C:\\textbackslash{}tmp\n"
	if got := dumpAll(t, tr); got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestDumpInlineNotation(t *testing.T) {
	tr := fromXML(t, `<zim-tree><p><emphasis>e</emphasis> <strong>s</strong> `+
		`<mark>m</mark> <strike>x</strike> <sub>d</sub> <sup>u</sup>`+"\n</p></zim-tree>")
	want := "\\emph{e} \\textbf{s} \\uline{m} \\sout{x} $_{d}$ $^{u}$\n"
	if got := dumpAll(t, tr); got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestDumpVerbatim(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		tr := fromXML(t, `<zim-tree><p>try <code>a_b %</code> now`+"\n</p></zim-tree>")
		want := "try \\lstinline|a_b %| now\n"
		if got := dumpAll(t, tr); got != want {
			t.Errorf("Dump = %q, want %q", got, want)
		}
	})
	t.Run("block", func(t *testing.T) {
		tr := fromXML(t, `<zim-tree><pre>x = 100% &amp; $y`+"\n</pre></zim-tree>")
		want := "\\begin{lstlisting}\nx = 100% & $y\n\\end{lstlisting}\n"
		if got := dumpAll(t, tr); got != want {
			t.Errorf("Dump = %q, want verbatim content unescaped %q", got, want)
		}
	})
}

func TestDumpPreIndent(t *testing.T) {
	tr := fromXML(t, `<zim-tree><pre indent="2">a`+"\nb\n</pre></zim-tree>")
	want := "\\begin{lstlisting}\n\t\ta\n\t\tb\n\\end{lstlisting}\n"
	if got := dumpAll(t, tr); got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestDumpIndentedParagraph(t *testing.T) {
	tr := fromXML(t, `<zim-tree><p indent="2">deep`+"\n</p></zim-tree>")
	want := "\t\tdeep\n"
	if got := dumpAll(t, tr); got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestDumpLists(t *testing.T) {
	tr := fromXML(t, `<zim-tree><ul><li bullet="*">a</li>`+
		`<li bullet="checked-box">done</li>`+
		`<li bullet="unchecked-box">open</li>`+
		`<li bullet="xchecked-box">gone</li></ul>`+"\n</zim-tree>")
	want := "\\begin{itemize}\n" +
		"\\item a\n" +
		"\\item[\\CheckedBox] done\n" +
		"\\item[\\Square] open\n" +
		"\\item[\\XBox] gone\n" +
		"\\end{itemize}\n\n"
	if got := dumpAll(t, tr); got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestDumpNumberedList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"numeric start",
			`<ol start="3"><li>x</li><li>y</li></ol>` + "\n",
			"\\begin{enumerate}\n\\setcounter{enumi}{2}\n\\item x\n\\item y\n\\end{enumerate}\n\n",
		},
		{
			"letter start",
			`<ol start="c"><li>x</li></ol>` + "\n",
			"\\begin{enumerate}\n\\setcounter{enumi}{2}\n" +
				"\\renewcommand{\\theenumi}{\\alph{enumi}}\n\\item x\n\\end{enumerate}\n\n",
		},
		{
			"uppercase first",
			`<ol start="A"><li>x</li></ol>` + "\n",
			"\\begin{enumerate}\n\\renewcommand{\\theenumi}{\\Alph{enumi}}\n" +
				"\\item x\n\\end{enumerate}\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := fromXML(t, "<zim-tree>"+tt.body+"</zim-tree>")
			if got := dumpAll(t, tr); got != tt.want {
				t.Errorf("Dump = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDumpNestedListCounters(t *testing.T) {
	tr := fromXML(t, `<zim-tree><ol start="2"><li>a</li>`+
		`<ol start="b"><li>inner</li></ol>`+
		`<li>c</li></ol>`+"\n</zim-tree>")
	want := "\\begin{enumerate}\n" +
		"\\setcounter{enumi}{1}\n" +
		"\\item a\n" +
		"\\begin{enumerate}\n" +
		"\\setcounter{enumii}{1}\n" +
		"\\renewcommand{\\theenumii}{\\alph{enumii}}\n" +
		"\\item inner\n" +
		"\\end{enumerate}\n" +
		"\\item c\n" +
		"\\end{enumerate}\n\n"
	if got := dumpAll(t, tr); got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestDumpLinks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"url",
			`<link href="http://example.org">http://example.org</link>` + "\n",
			"\\url{http://example.org}\n",
		},
		{
			"page",
			`<link href="Some:Page">the page</link>` + "\n",
			"\\href{Some:Page}{the page}\n",
		},
		{
			"empty text",
			`<link href="Foo:Bar"></link>` + "\n",
			"\\url{Foo:Bar}\n",
		},
		{
			"mailto",
			`<link href="user@example.com">user@example.com</link>` + "\n",
			"\\href{mailto:user@example.com}{user@example.com}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := fromXML(t, "<zim-tree>"+tt.body+"</zim-tree>")
			if got := dumpAll(t, tr); got != tt.want {
				t.Errorf("Dump = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDumpImages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"plain",
			`<img src="pic.png" alt="Pic" />` + "\n",
			"\\includegraphics{pic.png}\n",
		},
		{
			"width",
			`<img src="pic.png" width="288" />` + "\n",
			"\\includegraphics[width=3.00in, keepaspectratio=true]{pic.png}\n",
		},
		{
			"height",
			`<img src="pic.png" height="144" />` + "\n",
			"\\includegraphics[height=1.50in, keepaspectratio=true]{pic.png}\n",
		},
		{
			"link target",
			`<img src="p.png" href="Target" />` + "\n",
			"\\href{Target}{\\includegraphics{p.png}}\n",
		},
		{
			"file uri",
			`<img src="file:///home/u/p.png" />` + "\n",
			"\\includegraphics{/home/u/p.png}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := fromXML(t, "<zim-tree>"+tt.body+"</zim-tree>")
			if got := dumpAll(t, tr); got != tt.want {
				t.Errorf("Dump = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDumpAnchorAndTag(t *testing.T) {
	tr := fromXML(t, `<zim-tree><p>see <anchor name="here" /> and `+
		`<tag name="todo">@todo</tag>`+"\n</p></zim-tree>")
	want := "see \\label{here} and @todo\n"
	if got := dumpAll(t, tr); got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestDumpObjectFallback(t *testing.T) {
	tr := fromXML(t, `<zim-tree><object type="equation">E = mc^2`+"\n</object>\n</zim-tree>")
	want := "\\begin{lstlisting}\nE = mc^2\n\\end{lstlisting}\n\n"
	if got := dumpAll(t, tr); got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
}

func TestRegistration(t *testing.T) {
	f, err := format.Get("LaTeX (.tex)")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.Name != "latex" {
		t.Errorf("Name = %q, want latex", f.Name)
	}
	if !f.Flags.Has(format.Export) || f.Flags.Has(format.Import) {
		t.Errorf("Flags = %v, want export only", f.Flags)
	}
	if _, err := format.GetParser("latex"); err == nil {
		t.Errorf("GetParser should fail for a dump only format")
	}
}
