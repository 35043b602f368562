// Command zim is the CLI for the zim notebook toolkit.
// It converts pages between markup formats, inspects document trees,
// maintains the page index and serves notebook previews.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ulikunitz/xz"

	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/format"
	"github.com/ggfazio/zim-desktop-wiki/core/index"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
	"github.com/ggfazio/zim-desktop-wiki/internal/logging"
	"github.com/ggfazio/zim-desktop-wiki/internal/notebook"
	"github.com/ggfazio/zim-desktop-wiki/internal/server"

	// Register the built-in formats.
	_ "github.com/ggfazio/zim-desktop-wiki/core/html"
	_ "github.com/ggfazio/zim-desktop-wiki/core/latex"
	_ "github.com/ggfazio/zim-desktop-wiki/core/markdown"
	_ "github.com/ggfazio/zim-desktop-wiki/core/plain"
	_ "github.com/ggfazio/zim-desktop-wiki/core/wiki"
)

const version = "0.1.0"

// CLI defines the command-line interface for zim.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" env:"ZIM_LOG_LEVEL" default:"warn"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" env:"ZIM_LOG_FORMAT" default:"text"`

	// Command groups (noun-first organization)
	Convert ConvertCmd `cmd:"" help:"Convert a page between markup formats"`
	Tree    TreeGroup  `cmd:"" help:"Document tree operations (dump, normalize, select)"`
	Index   IndexGroup `cmd:"" help:"Page index operations (build, search, backlinks)"`
	Formats FormatsCmd `cmd:"" help:"List registered formats and their capabilities"`
	Serve   ServeCmd   `cmd:"" help:"Serve a notebook as HTML with live reload"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// TreeGroup contains document tree operations.
type TreeGroup struct {
	Dump      TreeDumpCmd      `cmd:"" help:"Parse a page and print its canonical XML"`
	Normalize TreeNormalizeCmd `cmd:"" help:"Rebuild an XML document through the normalizer"`
	Select    TreeSelectCmd    `cmd:"" help:"Run an XPath expression against a page"`
}

// IndexGroup contains page index operations.
type IndexGroup struct {
	Build     IndexBuildCmd     `cmd:"" help:"Build or refresh the index for a notebook"`
	Search    IndexSearchCmd    `cmd:"" help:"Search indexed titles and headings"`
	Backlinks IndexBacklinksCmd `cmd:"" help:"List pages linking to a target page"`
}

// ConvertCmd converts a page between markup formats.
type ConvertCmd struct {
	In   string `arg:"" help:"Input path (- for stdin, .xz decompressed transparently)"`
	Out  string `arg:"" help:"Output path (- for stdout, .xz compressed transparently)"`
	From string `help:"Source format" default:"wiki"`
	To   string `help:"Target format" default:"html"`
}

func (c *ConvertCmd) Run() error {
	source, err := readInput(c.In)
	if err != nil {
		return err
	}

	parser, err := format.GetParser(c.From)
	if err != nil {
		return err
	}
	t, err := parser.Parse(source)
	if err != nil {
		return fmt.Errorf("parse %s: %w", format.Canonical(c.From), err)
	}

	dumper, err := format.GetDumper(c.To, dump.Options{})
	if err != nil {
		return err
	}
	lines, err := dumper.Dump(t)
	if err != nil {
		return fmt.Errorf("dump %s: %w", format.Canonical(c.To), err)
	}

	return writeOutput(c.Out, strings.Join(lines, ""))
}

// TreeDumpCmd parses a page and prints its canonical XML.
type TreeDumpCmd struct {
	In     string `arg:"" help:"Input path (- for stdin)"`
	Format string `help:"Source format (xml reads canonical XML directly)" default:"wiki"`
}

func (c *TreeDumpCmd) Run() error {
	source, err := readInput(c.In)
	if err != nil {
		return err
	}
	t, err := parseAny(c.Format, source)
	if err != nil {
		return err
	}
	fmt.Print(t.ToXML())
	return nil
}

// TreeNormalizeCmd rebuilds an XML document through the normalizer. The
// input may carry editor-style dirt (multi-line inline elements, empty
// elements, missing attributes); the output is the repaired canonical
// form. Repairs are logged.
type TreeNormalizeCmd struct {
	In string `arg:"" help:"Input XML path (- for stdin)"`
}

func (c *TreeNormalizeCmd) Run() error {
	source, err := readInput(c.In)
	if err != nil {
		return err
	}
	clean, err := normalizeXML(source)
	if err != nil {
		return err
	}
	fmt.Print(clean)
	return nil
}

// TreeSelectCmd runs an XPath expression against a page tree and prints
// the matching fragments.
type TreeSelectCmd struct {
	In     string `arg:"" help:"Input path (- for stdin)"`
	Expr   string `arg:"" help:"XPath expression, e.g. //link[@href]"`
	Format string `help:"Source format (xml reads canonical XML directly)" default:"wiki"`
}

func (c *TreeSelectCmd) Run() error {
	source, err := readInput(c.In)
	if err != nil {
		return err
	}
	t, err := parseAny(c.Format, source)
	if err != nil {
		return err
	}
	matches, err := t.Select(c.Expr)
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Println(m)
	}
	return nil
}

// IndexBuildCmd builds or refreshes the index for a notebook.
type IndexBuildCmd struct {
	Notebook string `arg:"" help:"Notebook directory" type:"existingdir"`
	DB       string `name:"db" help:"Index database path (default: .zim-index.db in the notebook)" type:"path"`
}

func (c *IndexBuildCmd) Run() error {
	nb, err := notebook.Open(c.Notebook)
	if err != nil {
		return err
	}
	ix, err := index.Open(indexPath(c.DB, c.Notebook))
	if err != nil {
		return err
	}
	defer ix.Close()

	total, updated, removed, err := refreshIndex(nb, ix)
	if err != nil {
		return err
	}

	fmt.Printf("Notebook: %s\n", c.Notebook)
	fmt.Printf("  Pages: %d\n", total)
	fmt.Printf("  Updated: %d\n", updated)
	fmt.Printf("  Removed: %d\n", removed)
	return nil
}

// IndexSearchCmd searches indexed titles and headings. The index is
// refreshed first, so results reflect the notebook on disk.
type IndexSearchCmd struct {
	Notebook string `arg:"" help:"Notebook directory" type:"existingdir"`
	Query    string `arg:"" help:"Search text"`
	DB       string `name:"db" help:"Index database path (default: .zim-index.db in the notebook)" type:"path"`
}

func (c *IndexSearchCmd) Run() error {
	ix, err := openFreshIndex(c.Notebook, c.DB)
	if err != nil {
		return err
	}
	defer ix.Close()

	pages, err := ix.Search(c.Query)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, p := range pages {
		if p.Title != "" && p.Title != p.Name {
			fmt.Printf("%s\t%s\n", p.Name, p.Title)
		} else {
			fmt.Println(p.Name)
		}
	}
	return nil
}

// IndexBacklinksCmd lists the pages whose links point at a target page.
type IndexBacklinksCmd struct {
	Notebook string `arg:"" help:"Notebook directory" type:"existingdir"`
	Page     string `arg:"" help:"Target page name, e.g. Foo:Bar"`
	DB       string `name:"db" help:"Index database path (default: .zim-index.db in the notebook)" type:"path"`
}

func (c *IndexBacklinksCmd) Run() error {
	ix, err := openFreshIndex(c.Notebook, c.DB)
	if err != nil {
		return err
	}
	defer ix.Close()

	sources, err := ix.Backlinks(c.Page)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Printf("No pages link to %s\n", c.Page)
		return nil
	}
	for _, name := range sources {
		fmt.Println(name)
	}
	return nil
}

// FormatsCmd lists registered formats and their capabilities.
type FormatsCmd struct{}

func (c *FormatsCmd) Run() error {
	fmt.Printf("%-10s %-20s %s\n", "NAME", "DISPLAY", "CAPABILITIES")
	for _, name := range format.List(0) {
		f, err := format.Get(name)
		if err != nil {
			continue
		}
		fmt.Printf("%-10s %-20s %s\n", f.Name, f.DisplayName, f.Flags)
	}
	return nil
}

// ServeCmd serves a notebook as HTML with live reload.
type ServeCmd struct {
	Notebook string        `arg:"" help:"Notebook directory" type:"existingdir"`
	Port     int           `help:"HTTP server port" default:"8080"`
	Poll     time.Duration `help:"Change poll interval" default:"2s"`
}

func (c *ServeCmd) Run() error {
	srv, err := server.New(server.Config{
		Port:         c.Port,
		Root:         c.Notebook,
		PollInterval: c.Poll,
	})
	if err != nil {
		return err
	}
	return srv.Start()
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("zim version %s\n", version)
	return nil
}

// Helper functions

// readInput reads a source document. "-" reads stdin; an .xz suffix is
// decompressed transparently.
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("xz reader: %w", err)
		}
		r = xzr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// writeOutput writes a converted document. "-" writes to stdout; an .xz
// suffix is compressed transparently.
func writeOutput(path, content string) error {
	if path == "-" {
		_, err := io.WriteString(os.Stdout, content)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.Writer = f
	var xzw *xz.Writer
	if strings.HasSuffix(path, ".xz") {
		xzw, err = xz.NewWriter(f)
		if err != nil {
			f.Close()
			return fmt.Errorf("xz writer: %w", err)
		}
		w = xzw
	}

	if _, err := io.WriteString(w, content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if xzw != nil {
		if err := xzw.Close(); err != nil {
			f.Close()
			return fmt.Errorf("close xz stream: %w", err)
		}
	}
	return f.Close()
}

// parseAny parses source in the named format. The pseudo format "xml"
// reads the canonical XML form directly.
func parseAny(name, source string) (*tree.Tree, error) {
	if format.Canonical(name) == "xml" {
		return tree.FromXML(source)
	}
	parser, err := format.GetParser(name)
	if err != nil {
		return nil, err
	}
	return parser.Parse(source)
}

// normalizeXML replays an XML document through the normalizer and
// returns the repaired canonical form.
func normalizeXML(source string) (string, error) {
	dirty, err := tree.FromXML(source)
	if err != nil {
		return "", err
	}
	n := tree.NewNormalizer()
	if err := dirty.Visit(n); err != nil {
		return "", err
	}
	clean, err := n.Tree()
	if err != nil {
		return "", err
	}
	return clean.ToXML(), nil
}

// indexPath returns the index database path, defaulting to a dot file
// inside the notebook so page scans skip it.
func indexPath(db, notebookDir string) string {
	if db != "" {
		return db
	}
	return filepath.Join(notebookDir, ".zim-index.db")
}

// openFreshIndex opens the index for a notebook and brings it up to
// date before queries run against it.
func openFreshIndex(notebookDir, db string) (*index.Index, error) {
	nb, err := notebook.Open(notebookDir)
	if err != nil {
		return nil, err
	}
	ix, err := index.Open(indexPath(db, notebookDir))
	if err != nil {
		return nil, err
	}
	if _, _, _, err := refreshIndex(nb, ix); err != nil {
		ix.Close()
		return nil, err
	}
	return ix, nil
}

// refreshIndex updates the index from the notebook directory. Pages
// whose fingerprint is unchanged are skipped; pages gone from disk are
// dropped from the index.
func refreshIndex(nb *notebook.Notebook, ix *index.Index) (total, updated, removed int, err error) {
	names, err := nb.List()
	if err != nil {
		return 0, 0, 0, err
	}

	parser, err := format.GetParser("wiki")
	if err != nil {
		return 0, 0, 0, err
	}

	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
		source, mtime, err := nb.Read(name)
		if err != nil {
			return 0, 0, 0, err
		}
		changed, err := ix.Update(name, source, mtime.Unix(), func() (*tree.Tree, error) {
			return parser.Parse(source)
		})
		if err != nil {
			return 0, 0, 0, err
		}
		if changed {
			updated++
		}
	}

	indexed, err := ix.List()
	if err != nil {
		return 0, 0, 0, err
	}
	for _, p := range indexed {
		if !known[p.Name] {
			if err := ix.Remove(p.Name); err != nil {
				return 0, 0, 0, err
			}
			removed++
		}
	}
	return len(names), updated, removed, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("zim"),
		kong.Description("Zim notebook toolkit - wiki markup, page trees, index and preview"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
