package latex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/encoding"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
	"github.com/ggfazio/zim-desktop-wiki/internal/logging"
)

// sectioning maps heading levels to sectioning commands per document
// type.
var sectioning = map[string]map[int]string{
	"report": {
		1: `\chapter{%s}`,
		2: `\section{%s}`,
		3: `\subsection{%s}`,
		4: `\subsubsection{%s}`,
		5: `\paragraph{%s}`,
	},
	"article": {
		1: `\section{%s}`,
		2: `\subsection{%s}`,
		3: `\subsubsection{%s}`,
		4: `\paragraph{%s}`,
		5: `\subparagraph{%s}`,
	},
	"book": {
		1: `\part{%s}`,
		2: `\chapter{%s}`,
		3: `\section{%s}`,
		4: `\subsection{%s}`,
		5: `\subsubsection{%s}`,
	},
}

// enumCounters are the enumerate counters by nesting depth. LaTeX
// stops at four levels.
var enumCounters = [...]string{"enumi", "enumii", "enumiii", "enumiv"}

// Dumper renders a page tree as the body of a LaTeX document. The
// template option document_type picks the sectioning commands, one of
// report, article or book. Checkbox bullets need the wasysym package,
// verbatim content the listings package; pulling those in is the
// template's job.
type Dumper struct {
	*dump.Dumper
	documentType string
}

func NewDumper(opts dump.Options) *Dumper {
	d := &Dumper{Dumper: dump.New("latex", opts)}
	d.documentType = strings.Trim(d.Template["document_type"], `'"`)
	switch {
	case d.documentType == "":
		logging.Warn("no document type set, assuming report", "format", "latex")
		d.documentType = "report"
	case sectioning[d.documentType] == nil:
		logging.Warn("unknown document type, assuming report",
			"format", "latex", "document_type", d.documentType)
		d.documentType = "report"
	}
	d.Encode = func(tag tree.Tag, text string) string {
		switch tag {
		case tree.TagVerbatimBlock, tree.TagVerbatim, tree.TagObject:
			return text
		}
		return encoding.EscapeLaTeX(text)
	}
	d.Wraps = map[tree.Tag]dump.Wrap{
		tree.TagEmphasis:    {Start: `\emph{`, End: `}`},
		tree.TagStrong:      {Start: `\textbf{`, End: `}`},
		tree.TagMark:        {Start: `\uline{`, End: `}`},
		tree.TagStrike:      {Start: `\sout{`, End: `}`},
		tree.TagVerbatim:    {Start: `\lstinline|`, End: `|`},
		tree.TagTag:         {},
		tree.TagSubscript:   {Start: `$_{`, End: `}$`},
		tree.TagSuperscript: {Start: `$^{`, End: `}$`},
	}
	d.Handlers = map[tree.Tag]dump.Handler{
		tree.TagHeading:       d.dumpHeading,
		tree.TagParagraph:     d.dumpIndented,
		tree.TagBlock:         d.dumpIndented,
		tree.TagVerbatimBlock: d.dumpPre,
		tree.TagBulletList:    d.dumpBulletList,
		tree.TagNumberedList:  d.dumpNumberedList,
		tree.TagListItem:      d.dumpListItem,
		tree.TagLink:          d.dumpLink,
		tree.TagImage:         d.dumpImage,
		tree.TagAnchor:        d.dumpAnchor,
	}
	d.ObjectFallback = d.dumpPre
	return d
}

func (d *Dumper) dumpHeading(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	level := attrs.Int(tree.AttrLevel, 1)
	if level < 1 {
		level = 1
	} else if level > 5 {
		level = 5
	}
	heading := strings.Trim(strings.Join(content, ""), "\n")
	return []string{fmt.Sprintf(sectioning[d.documentType][level], heading), "\n"}, nil
}

func (d *Dumper) dumpIndented(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	if indent := attrs.Int(tree.AttrIndent, 0); indent > 0 {
		return dump.PrefixLines(strings.Repeat("\t", indent), content), nil
	}
	return content, nil
}

func (d *Dumper) dumpPre(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	if indent := attrs.Int(tree.AttrIndent, 0); indent > 0 {
		content = dump.PrefixLines(strings.Repeat("\t", indent), content)
	}
	out := make([]string, 0, len(content)+2)
	out = append(out, "\\begin{lstlisting}\n")
	out = append(out, content...)
	return append(out, "\\end{lstlisting}\n"), nil
}

func (d *Dumper) dumpBulletList(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	out := make([]string, 0, len(content)+2)
	out = append(out, "\\begin{itemize}\n")
	out = append(out, content...)
	return append(out, "\\end{itemize}\n"), nil
}

// dumpNumberedList lets LaTeX do the numbering. A start attribute
// becomes a setcounter, a letter start additionally restyles the
// counter. The counter name follows the enumerate nesting depth.
func (d *Dumper) dumpNumberedList(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	number, letter := 1, byte(0)
	switch start := attrs.Get(tree.AttrStart); {
	case len(start) == 1 && start[0] >= 'a' && start[0] <= 'z':
		number, letter = int(start[0]-'a')+1, 'a'
	case len(start) == 1 && start[0] >= 'A' && start[0] <= 'Z':
		number, letter = int(start[0]-'A')+1, 'A'
	default:
		if n, err := strconv.Atoi(start); err == nil {
			number = n
		}
	}

	depth := d.CountOpen(tree.TagNumberedList)
	if depth >= len(enumCounters) {
		depth = len(enumCounters) - 1
	}
	counter := enumCounters[depth]

	out := make([]string, 0, len(content)+4)
	out = append(out, "\\begin{enumerate}\n")
	if number > 1 {
		out = append(out, fmt.Sprintf("\\setcounter{%s}{%d}\n", counter, number-1))
	}
	switch letter {
	case 'a':
		out = append(out, fmt.Sprintf("\\renewcommand{\\the%s}{\\alph{%s}}\n", counter, counter))
	case 'A':
		out = append(out, fmt.Sprintf("\\renewcommand{\\the%s}{\\Alph{%s}}\n", counter, counter))
	}
	out = append(out, content...)
	return append(out, "\\end{enumerate}\n"), nil
}

func (d *Dumper) dumpListItem(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	prefix := `\item`
	if d.ParentTag() == tree.TagBulletList {
		switch attrs.Get(tree.AttrBullet) {
		case tree.UncheckedBox:
			prefix = `\item[\Square]`
		case tree.CheckedBox:
			prefix = `\item[\CheckedBox]`
		case tree.XCheckedBox:
			prefix = `\item[\XBox]`
		}
	}

	out := make([]string, 0, len(content)+2)
	out = append(out, prefix+" ")
	out = append(out, content...)
	return append(out, "\n"), nil
}

func (d *Dumper) dumpLink(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	href := attrs.Get(tree.AttrHref)
	if d.Linker != nil {
		href = d.Linker.Link(href)
	}
	text := strings.Join(content, "")
	if text == "" || text == href {
		return []string{`\url{` + href + `}`}, nil
	}
	return []string{`\href{` + href + `}{` + text + `}`}, nil
}

func (d *Dumper) dumpImage(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	src := attrs.Get(tree.AttrSrc)
	if d.Linker != nil {
		src = d.Linker.Img(src)
	}
	// includegraphics takes a path, not a URI.
	src = strings.TrimPrefix(src, "file://")

	var size string
	if w := attrs.Int("width", 0); w > 0 {
		size = fmt.Sprintf("width=%.2fin, keepaspectratio=true", float64(w)/96)
	} else if h := attrs.Int("height", 0); h > 0 {
		size = fmt.Sprintf("height=%.2fin, keepaspectratio=true", float64(h)/96)
	}
	img := `\includegraphics{` + src + `}`
	if size != "" {
		img = `\includegraphics[` + size + `]{` + src + `}`
	}

	if href := attrs.Get(tree.AttrHref); href != "" {
		if d.Linker != nil {
			href = d.Linker.Link(href)
		}
		return []string{`\href{` + href + `}{` + img + `}`}, nil
	}
	return []string{img}, nil
}

func (d *Dumper) dumpAnchor(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	return append(content, `\label{`+attrs.Get(tree.AttrName)+`}`), nil
}
