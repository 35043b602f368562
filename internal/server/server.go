// Package server previews a notebook over HTTP. Pages are parsed from
// wiki markup and served as HTML documents; connected browsers reload
// when the change watcher sees a page change.
package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ggfazio/zim-desktop-wiki/core/cache"
	"github.com/ggfazio/zim-desktop-wiki/core/errors"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
	"github.com/ggfazio/zim-desktop-wiki/internal/logging"
	"github.com/ggfazio/zim-desktop-wiki/internal/notebook"

	// Served formats register on import.
	_ "github.com/ggfazio/zim-desktop-wiki/core/html"
	_ "github.com/ggfazio/zim-desktop-wiki/core/wiki"
)

// Config holds the preview server configuration.
type Config struct {
	// Port to listen on.
	Port int

	// Root is the notebook directory.
	Root string

	// PollInterval is the change watcher tick. Zero means 2s.
	PollInterval time.Duration
}

// Server serves one notebook.
type Server struct {
	cfg     Config
	nb      *notebook.Notebook
	hub     *hub
	renders *cache.RenderCache
	stop    chan struct{}
}

// New opens the notebook and prepares the server.
func New(cfg Config) (*Server, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	nb, err := notebook.Open(cfg.Root)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:     cfg,
		nb:      nb,
		hub:     newHub(),
		renders: cache.NewDefaultRenderCache(),
		stop:    make(chan struct{}),
	}, nil
}

// Handler returns the route table wrapped in the logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/page/", s.handlePage)
	mux.HandleFunc("/icon/", handleIcon)
	mux.Handle("/file/", http.StripPrefix("/file/", http.FileServer(http.Dir(s.nb.Root))))
	mux.HandleFunc("/reload", s.handleReload)
	return logging.CombinedMiddleware(mux)
}

// Start runs the hub, the watcher and the HTTP server. It blocks until
// the listener fails.
func (s *Server) Start() error {
	go s.hub.run()
	w := newWatcher(s.nb, s.cfg.PollInterval, s.hub.notifyReload)
	go w.run(s.stop)

	logging.ServerStartup("preview", "http", s.cfg.Port, "notebook", s.nb.Root)
	return http.ListenAndServe(fmt.Sprintf(":%d", s.cfg.Port), s.Handler())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	names, err := s.nb.List()
	if err != nil {
		logging.Error("notebook scan failed", "error", err)
		http.Error(w, "scan failed", http.StatusInternalServerError)
		return
	}
	out, err := s.renderIndex(names)
	if err != nil {
		logging.Error("index render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, out)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := pageNameFromPath(strings.TrimPrefix(r.URL.Path, "/page/"))
	if name == "" {
		http.NotFound(w, r)
		return
	}
	source, _, err := s.nb.Read(name)
	if errors.Is(err, errors.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logging.Error("page read failed", "page", name, "error", err)
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	out, err := s.renderPage(name, source)
	if err != nil {
		logging.Error("page render failed", "page", name, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, out)
}

// pageNameFromPath converts the suffix of a /page/ URL into a page
// name. The path arrives percent-decoded.
func pageNameFromPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return strings.ReplaceAll(p, "/", ":")
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, body)
}

// Checkbox icons for list bullets, kept inline so the preview works
// without a resource directory.
var icons = map[string]string{
	tree.UncheckedBox + ".svg": `<svg xmlns="http://www.w3.org/2000/svg" width="14" height="14"><rect x="1" y="1" width="12" height="12" fill="none" stroke="#555" stroke-width="1.5" rx="2"/></svg>`,
	tree.CheckedBox + ".svg":   `<svg xmlns="http://www.w3.org/2000/svg" width="14" height="14"><rect x="1" y="1" width="12" height="12" fill="none" stroke="#555" stroke-width="1.5" rx="2"/><path d="M3.5 7.5 6 10l4.5-6" fill="none" stroke="#2a2" stroke-width="1.8"/></svg>`,
	tree.XCheckedBox + ".svg":  `<svg xmlns="http://www.w3.org/2000/svg" width="14" height="14"><rect x="1" y="1" width="12" height="12" fill="none" stroke="#555" stroke-width="1.5" rx="2"/><path d="M4 4l6 6M10 4l-6 6" stroke="#c22" stroke-width="1.8"/></svg>`,
}

func handleIcon(w http.ResponseWriter, r *http.Request) {
	body, ok := icons[strings.TrimPrefix(r.URL.Path, "/icon/")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	io.WriteString(w, body)
}
