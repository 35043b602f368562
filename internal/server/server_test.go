package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, pages map[string]string) *Server {
	t.Helper()
	root := t.TempDir()
	for name, src := range pages {
		path := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(name, ":", "/"))+".txt")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	s, err := New(Config{Root: root})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func get(t *testing.T, ts *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestHandleIndex(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"Home":       "hello\n",
		"Home:Notes": "notes\n",
	})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	status, body := get(t, ts, "/")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	for _, want := range []string{
		`<a href="/page/Home">Home</a>`,
		`<a href="/page/Home/Notes">Home:Notes</a>`,
		"new WebSocket",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}

	if status, _ := get(t, ts, "/no-such-route"); status != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", status)
	}
}

func TestHandlePage(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"Home": "====== Home ======\n\nHello **world** and [[Other]]\n",
	})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	status, body := get(t, ts, "/page/Home")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	for _, want := range []string{
		"<h1>Home</h1>",
		"Hello <b>world</b>",
		`<a href="/page/Other" class="page">Other</a>`,
		"new WebSocket",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHandlePageMissing(t *testing.T) {
	s := newTestServer(t, map[string]string{"Home": "hi\n"})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	if status, _ := get(t, ts, "/page/Nope"); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestHandlePageCache(t *testing.T) {
	s := newTestServer(t, map[string]string{"Home": "cached\n"})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	get(t, ts, "/page/Home")
	if s.renders.Len() != 1 {
		t.Fatalf("cache holds %d renders after first hit, want 1", s.renders.Len())
	}
	_, first := get(t, ts, "/page/Home")
	if s.renders.Len() != 1 {
		t.Errorf("cache holds %d renders after second hit, want 1", s.renders.Len())
	}
	if !strings.Contains(first, "cached") {
		t.Errorf("cached render missing page content")
	}
}

func TestHandleIcon(t *testing.T) {
	s := newTestServer(t, map[string]string{"Home": "hi\n"})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/icon/checked-box.svg")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q, want image/svg+xml", ct)
	}

	if status, _ := get(t, ts, "/icon/nope.svg"); status != http.StatusNotFound {
		t.Errorf("unknown icon status = %d, want 404", status)
	}
}

func TestHandleFile(t *testing.T) {
	s := newTestServer(t, map[string]string{"Home": "hi\n"})
	dir := filepath.Join(s.nb.Root, "files")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pic.dat"), []byte("attachment bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	status, body := get(t, ts, "/file/files/pic.dat")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body != "attachment bytes" {
		t.Errorf("body = %q, want the attachment content", body)
	}
}

func TestReloadWebSocket(t *testing.T) {
	s := newTestServer(t, map[string]string{"Home": "hi\n"})
	go s.hub.run()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/reload"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, s.hub, 1)

	s.hub.notifyReload("Home")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg reloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "reload" || msg.Page != "Home" {
		t.Errorf("notice = %+v, want reload for Home", msg)
	}
}
