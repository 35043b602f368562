package server

import (
	"bytes"
	"encoding/hex"
	"html/template"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/format"
)

// reloadScript reloads the page whenever the server broadcasts a
// change notice.
const reloadScript = `(function () {
	var ws = new WebSocket("ws://" + location.host + "/reload");
	ws.onmessage = function () { location.reload(); };
})();
`

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; font-family: sans-serif; }
pre { background: #f4f4f4; padding: 0.5rem; overflow-x: auto; }
span.zim-tag { color: #a40000; }
nav { border-bottom: 1px solid #ccc; margin-bottom: 1rem; padding-bottom: 0.5rem; }
</style>
</head>
<body>
<nav><a href="/">Index</a></nav>
<main>
{{.Body}}</main>
<script>{{.Script}}</script>
</body>
</html>
`))

var indexBodyTemplate = template.Must(template.New("index").Parse(`<h1>{{.Root}}</h1>
<ul>
{{range .Pages}}<li><a href="{{.Href}}">{{.Name}}</a></li>
{{end}}</ul>
`))

type shellView struct {
	Title  string
	Body   template.HTML
	Script template.JS
}

// renderPage turns wiki source into a complete HTML document. Renders
// are cached under the page name and content fingerprint, so an edit
// misses and the stale entry ages out of the LRU.
func (s *Server) renderPage(name, source string) (string, error) {
	sum := blake3.Sum256([]byte(source))
	key := s.renders.Key(name, hex.EncodeToString(sum[:]))
	if out, ok := s.renders.Get(key); ok {
		return out, nil
	}

	parser, err := format.GetParser("wiki")
	if err != nil {
		return "", err
	}
	t, err := parser.Parse(source)
	if err != nil {
		return "", err
	}
	dumper, err := format.GetDumper("html", dump.Options{Linker: s.newLinker(name)})
	if err != nil {
		return "", err
	}
	lines, err := dumper.Dump(t)
	if err != nil {
		return "", err
	}

	out, err := renderShell(name, strings.Join(lines, ""))
	if err != nil {
		return "", err
	}
	s.renders.Put(key, out)
	return out, nil
}

// renderIndex lists all pages. Cheap enough to skip the cache.
func (s *Server) renderIndex(names []string) (string, error) {
	type entry struct {
		Name string
		Href string
	}
	view := struct {
		Root  string
		Pages []entry
	}{Root: s.nb.Root}
	for _, name := range names {
		view.Pages = append(view.Pages, entry{
			Name: name,
			Href: pageRoute(splitName(name)),
		})
	}

	var body bytes.Buffer
	if err := indexBodyTemplate.Execute(&body, view); err != nil {
		return "", err
	}
	return renderShell("Index", body.String())
}

func renderShell(title, body string) (string, error) {
	var buf bytes.Buffer
	err := shellTemplate.Execute(&buf, shellView{
		Title:  title,
		Body:   template.HTML(body),
		Script: template.JS(reloadScript),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
