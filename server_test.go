package main

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/erkantaylan/marklite/internal/config"
)

func newTestServer(t *testing.T) (*httptest.Server, *Workspace) {
	t.Helper()
	ws, _ := newTestWorkspace(t, sample)
	cfg, err := config.Load(filepath.Join(t.TempDir(), "marklite.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	hub := NewHub()
	go hub.Run()
	srv := NewServer(hub, ws, cfg, NewWatcher(), 0)
	hub.Publish(srv.settings())
	hub.Publish(ws.State())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, ws
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil skips messages until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func TestServer_InitialState(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)

	settings := readUntil(t, conn, TypeSettings)
	if settings.Settings == nil || settings.Settings.Theme != "dark" {
		t.Errorf("settings = %+v", settings.Settings)
	}
	content := readUntil(t, conn, TypeContent)
	if content.Filename != "guide.md" || len(content.TOC) != 3 {
		t.Errorf("content = %q with %d TOC entries", content.Filename, len(content.TOC))
	}
}

func TestServer_Locate(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, TypeContent)

	err := conn.WriteJSON(Request{Type: RequestLocate, Text: "Setup", Level: 2, Tops: []float64{100, 400}, ScrollTop: 0})
	if err != nil {
		t.Fatal(err)
	}
	msg := readUntil(t, conn, TypeScroll)
	if msg.Scroll.Top != 80 || msg.Scroll.ID != "setup" {
		t.Errorf("scroll = %+v, want top 80 at #setup", msg.Scroll)
	}
}

func TestServer_EditBlocksOpen(t *testing.T) {
	ts, ws := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, TypeContent)

	conn.WriteJSON(Request{Type: RequestEdit, Content: "# Draft\n"})
	msg := readUntil(t, conn, TypeContent)
	if !msg.Info.Dirty || msg.Content != "# Draft\n" {
		t.Errorf("after edit: dirty=%v content=%q", msg.Info.Dirty, msg.Content)
	}

	conn.WriteJSON(Request{Type: RequestOpen, Path: filepath.Join(filepath.Dir(ws.Path()), "other.md")})
	errMsg := readUntil(t, conn, TypeError)
	if !strings.Contains(errMsg.Error, "unsaved changes") {
		t.Errorf("error = %q", errMsg.Error)
	}
}

func TestServer_Settings(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, TypeContent)

	conn.WriteJSON(Request{Type: RequestSettings, Key: "theme", Value: "neon"})
	if msg := readUntil(t, conn, TypeError); !strings.Contains(msg.Error, "invalid setting") {
		t.Errorf("error = %q", msg.Error)
	}

	conn.WriteJSON(Request{Type: RequestSettings, Key: "font_size", Value: "large"})
	msg := readUntil(t, conn, TypeSettings)
	if msg.Settings.FontSize != "large" {
		t.Errorf("FontSize = %q, want large", msg.Settings.FontSize)
	}
}

func TestServer_HTTP(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		path        string
		status      int
		contains    string
		disposition string
	}{
		{"/", http.StatusOK, "<title>MarkLite</title>", ""},
		{"/static/style.css", http.StatusOK, ".md-heading1", ""},
		{"/export", http.StatusOK, `<h2 id="setup">Setup</h2>`, `attachment; filename="guide.html"`},
		{"/nope", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
			if got := resp.Header.Get("Content-Disposition"); got != tt.disposition {
				t.Errorf("Content-Disposition = %q, want %q", got, tt.disposition)
			}
		})
	}
}

func TestServer_Cursor(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, TypeContent)

	// "# Intro\n\n## Setup" puts offset 12 on line 3
	conn.WriteJSON(Request{Type: RequestCursor, Offset: 12})
	msg := readUntil(t, conn, TypeCursor)
	if msg.Cursor.Line != 3 || msg.Cursor.Col != 4 {
		t.Errorf("cursor = %+v, want 3:4", msg.Cursor)
	}
}

func TestServer_RejectsForeignOrigin(t *testing.T) {
	ts, ws := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	header := http.Header{"Origin": {"https://evil.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		conn.Close()
		t.Fatal("handshake from a foreign origin should fail")
	}
	if !errors.Is(err, websocket.ErrBadHandshake) || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("err = %v, resp = %v; want a 403 bad handshake", err, resp)
	}
	if ws.Dirty() {
		t.Error("rejected client must not reach the workspace")
	}

	header = http.Header{"Origin": {ts.URL}}
	conn, _, err = websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("same-origin handshake failed: %v", err)
	}
	conn.Close()
}

func TestServer_EditThenSaveKeepsOrder(t *testing.T) {
	ts, ws := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, TypeContent)

	// the page flushes its pending edit right before saving
	conn.WriteJSON(Request{Type: RequestEdit, Content: "# Last keystroke\n"})
	conn.WriteJSON(Request{Type: RequestSave})

	for {
		msg := readUntil(t, conn, TypeContent)
		if !msg.Info.Dirty && msg.Content == "# Last keystroke\n" {
			break
		}
	}
	data, err := os.ReadFile(ws.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Last keystroke\n" {
		t.Errorf("file = %q, want the last edit", data)
	}
}

func TestServer_PageScript(t *testing.T) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"function flushEdit()",
		"flushEdit();\n    send({ type: \"save\" });",
		"if (mode !== \"preview\") setMode(\"preview\");",
	} {
		if !strings.Contains(string(page), want) {
			t.Errorf("index.html missing %q", want)
		}
	}
}
