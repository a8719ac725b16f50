package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/erkantaylan/marklite/internal/config"
	"github.com/erkantaylan/marklite/internal/document"
	"github.com/erkantaylan/marklite/internal/export"
)

//go:embed static
var staticFiles embed.FS

// Message types sent to clients
const (
	TypeContent  = "content"
	TypeError    = "error"
	TypeScroll   = "scroll"
	TypeFiles    = "files"
	TypeSettings = "settings"
	TypeCursor   = "cursor"
)

// Message sent to clients
type Message struct {
	Type     string           `json:"type"`
	Filename string           `json:"filename,omitempty"`
	HTML     string           `json:"html,omitempty"`
	Content  string           `json:"content"`
	Lines    []string         `json:"lines,omitempty"`
	TOC      []TOCEntry       `json:"toc,omitempty"`
	Info     *document.Info   `json:"info,omitempty"`
	Files    []document.Entry `json:"files,omitempty"`
	Scroll   *Scroll          `json:"scroll,omitempty"`
	Settings *Settings        `json:"settings,omitempty"`
	Cursor   *Cursor          `json:"cursor,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Request types received from clients
const (
	RequestEdit     = "edit"
	RequestSave     = "save"
	RequestSaveAs   = "saveAs"
	RequestCursor   = "cursor"
	RequestLocate   = "locate"
	RequestFiles    = "files"
	RequestOpen     = "open"
	RequestSettings = "settings"
)

// Request sent by clients
type Request struct {
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	Text      string    `json:"text,omitempty"`
	Level     int       `json:"level,omitempty"`
	Tops      []float64 `json:"tops,omitempty"`
	ScrollTop float64   `json:"scrollTop,omitempty"`
	Path      string    `json:"path,omitempty"`
	Key       string    `json:"key,omitempty"`
	Value     string    `json:"value,omitempty"`
	Offset    int       `json:"offset,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type direct struct {
	client *Client
	data   []byte
}

// Hub manages WebSocket clients and broadcasting
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	direct     chan direct
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	current    Message
	settings   Message
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan direct, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			// Send current settings and content to new client
			h.mu.RLock()
			for _, m := range []Message{h.settings, h.current} {
				if m.Type == "" {
					continue
				}
				if data, err := json.Marshal(m); err == nil {
					client.send <- data
				}
			}
			h.mu.RUnlock()

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case d := <-h.direct:
			if _, ok := h.clients[d.client]; !ok {
				continue
			}
			select {
			case d.client.send <- d.data:
			default:
				close(d.client.send)
				delete(h.clients, d.client)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish stores msg as the current state and sends it to every client.
func (h *Hub) Publish(msg Message) {
	h.mu.Lock()
	switch msg.Type {
	case TypeContent:
		h.current = msg
	case TypeSettings:
		h.settings = msg
	}
	h.mu.Unlock()

	data, _ := json.Marshal(msg)
	h.broadcast <- data
}

func (h *Hub) SetError(errMsg string) {
	data, _ := json.Marshal(Message{Type: TypeError, Error: errMsg})
	h.broadcast <- data
}

// Reply sends msg to one client only.
func (h *Hub) Reply(client *Client, msg Message) {
	data, _ := json.Marshal(msg)
	h.direct <- direct{client: client, data: data}
}

// Server handles HTTP and WebSocket
type Server struct {
	hub     *Hub
	ws      *Workspace
	cfg     *config.Store
	watcher *Watcher
	port    int
	server  *http.Server
}

func NewServer(hub *Hub, ws *Workspace, cfg *config.Store, watcher *Watcher, port int) *Server {
	return &Server{
		hub:     hub,
		ws:      ws,
		cfg:     cfg,
		watcher: watcher,
		port:    port,
	}
}

func (s *Server) settings() Message {
	c := s.cfg.Config()
	return Message{Type: TypeSettings, Settings: &Settings{
		Theme:    c.Theme,
		Font:     c.Font,
		FontSize: c.FontSize,
	}}
}

// The socket can write files, so only pages served from this host may
// connect: the default CheckOrigin rejects a foreign Origin header.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("WebSocket upgrade error", "err", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	s.hub.register <- client

	// Writer goroutine
	go func() {
		defer func() {
			conn.Close()
		}()

		for message := range client.send {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}()

	// Reader goroutine
	go func() {
		defer func() {
			s.hub.unregister <- client
			conn.Close()
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var req Request
			if err := json.Unmarshal(data, &req); err != nil {
				log.Warn("Bad request", "err", err)
				continue
			}
			s.dispatch(client, req)
		}
	}()
}

func (s *Server) dispatch(client *Client, req Request) {
	switch req.Type {
	case RequestEdit:
		s.hub.Publish(s.ws.Edit(req.Content))

	case RequestSave:
		msg, err := s.ws.Save()
		if err != nil {
			s.fail(client, err)
			return
		}
		log.Info("Saved", "file", msg.Filename)
		s.hub.Publish(msg)

	case RequestSaveAs:
		msg, err := s.ws.SaveAs(req.Path)
		if err != nil {
			s.fail(client, err)
			return
		}
		if err := s.watcher.Switch(s.ws.Path()); err != nil {
			log.Warn("Cannot watch file", "path", req.Path, "err", err)
		}
		log.Info("Saved as", "file", msg.Filename)
		s.hub.Publish(msg)

	case RequestCursor:
		s.hub.Reply(client, s.ws.Cursor(req.Offset))

	case RequestLocate:
		// No match leaves the preview where it is.
		if msg, ok := s.ws.Locate(req.Text, req.Level, req.Tops, req.ScrollTop); ok {
			s.hub.Reply(client, msg)
		}

	case RequestFiles:
		msg, err := s.ws.Files()
		if err != nil {
			s.fail(client, err)
			return
		}
		s.hub.Reply(client, msg)

	case RequestOpen:
		if s.ws.Dirty() {
			s.fail(client, fmt.Errorf("unsaved changes in %s", s.ws.Path()))
			return
		}
		msg, err := s.ws.Open(req.Path)
		if err != nil {
			s.fail(client, err)
			return
		}
		if err := s.watcher.Switch(s.ws.Path()); err != nil {
			log.Warn("Cannot watch file", "path", req.Path, "err", err)
		}
		log.Info("Opened", "file", msg.Filename)
		s.hub.Publish(msg)

	case RequestSettings:
		if err := s.cfg.Set(req.Key, req.Value); err != nil {
			s.fail(client, err)
			return
		}
		s.hub.Publish(s.settings())
		if req.Key == "theme" {
			s.hub.Publish(s.ws.SetTheme(req.Value))
		}

	default:
		log.Warn("Unknown request", "type", req.Type)
	}
}

func (s *Server) fail(client *Client, err error) {
	log.Error("Request failed", "err", err)
	s.hub.Reply(client, Message{Type: TypeError, Error: err.Error()})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	body, name := s.ws.Export()
	c := s.cfg.Config()
	title := export.Title(name)

	page, err := export.HTML(body, title, export.Options{
		Theme:    c.Theme,
		Font:     c.Font,
		FontSize: c.FontSize,
		Footer:   c.ExportFooter,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", title+".html"))
	w.Write([]byte(page))
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve index.html at root
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data, _ := staticFiles.ReadFile("static/index.html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})

	// Serve static files
	staticFS, _ := fs.Sub(staticFiles, "static")
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	mux.HandleFunc("/export", s.handleExport)

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	return mux
}

func (s *Server) Start() error {
	s.hub.Publish(s.settings())

	s.server = &http.Server{
		Addr:    net.JoinHostPort(s.cfg.Config().Host, strconv.Itoa(s.port)),
		Handler: s.Handler(),
	}

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
