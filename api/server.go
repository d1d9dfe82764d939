package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"themeplane/model"
	"themeplane/theme"
)

type wsRequest struct {
	Type   string          `json:"type"`
	Theme  string          `json:"theme"`
	Values json.RawMessage `json:"values,omitempty"`
}

type wsCatalog struct {
	Type    string               `json:"type"`
	Session string               `json:"session,omitempty"`
	Themes  []model.CatalogEntry `json:"themes"`
}

type wsPreview struct {
	Type   string         `json:"type"`
	Theme  string         `json:"theme"`
	Values map[string]any `json:"values"`
}

type wsError struct {
	Type    string `json:"type"`
	Theme   string `json:"theme,omitempty"`
	Message string `json:"message"`
}

type Server struct {
	repo           *theme.Repository
	themes         *theme.Handler
	clients        *WSConnectionManager
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewServer creates the HTTP API over repo. allowedOrigins limits browser
// origins for CORS and WebSocket upgrades; empty allows any origin.
func NewServer(repo *theme.Repository, allowedOrigins []string) *Server {
	s := &Server{
		repo:           repo,
		themes:         theme.NewHandler(repo),
		clients:        NewWSConnectionManager(),
		allowedOrigins: allowedOrigins,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/rescan", s.handleRescan)
	mux.HandleFunc("/api/ws", s.handleWS)
	s.themes.Register(mux)
}

// Handler wraps h with the server's CORS policy.
func (s *Server) Handler(h http.Handler) http.Handler {
	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(h)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.allowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.allowedOrigins, "*") || slices.Contains(s.allowedOrigins, origin)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	writeJSON(w, http.StatusOK, resp)
}

// handleRescan rebuilds the catalog and pushes it to every WebSocket client.
func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	catalog, err := s.repo.ListAll(r.Context())
	if err != nil {
		log.Printf("rescan themes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list themes"})
		return
	}

	sent := s.clients.Broadcast(wsCatalog{Type: "catalog", Themes: catalog})
	log.Printf("rescan: %d themes, notified %d clients", len(catalog), sent)

	writeJSON(w, http.StatusOK, map[string]any{
		"themes":  catalog,
		"clients": sent,
	})
}

// handleWS serves live previews: clients send custom values for a theme and
// receive the values resolved against the theme's defaults.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	conn.SetReadLimit(theme.MaxCustomValuesBytes)
	s.clients.Add(conn)
	defer func() {
		s.clients.Remove(conn)
		conn.Close()
	}()

	ctx := r.Context()
	catalog, err := s.repo.ListAll(ctx)
	if err != nil {
		log.Printf("websocket catalog: %v", err)
		catalog = []model.CatalogEntry{}
	}
	hello := wsCatalog{Type: "hello", Session: uuid.NewString(), Themes: catalog}
	if err := s.clients.WriteJSON(conn, hello); err != nil {
		return
	}

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}

		var reply any
		switch req.Type {
		case "preview":
			reply = s.preview(ctx, req)
		default:
			reply = wsError{Type: "error", Message: "unknown message type " + req.Type}
		}
		if err := s.clients.WriteJSON(conn, reply); err != nil {
			return
		}
	}
}

func (s *Server) preview(ctx context.Context, req wsRequest) any {
	record, err := s.repo.Load(ctx, req.Theme)
	if err != nil {
		return wsError{Type: "error", Theme: req.Theme, Message: err.Error()}
	}

	var custom model.CustomValues
	if len(req.Values) > 0 && string(req.Values) != "null" {
		custom, err = record.ParseCustomValues(string(req.Values))
		if err != nil {
			return wsError{Type: "error", Theme: req.Theme, Message: err.Error()}
		}
	}

	return wsPreview{Type: "preview", Theme: record.Folder(), Values: record.Resolve(custom)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON error: %v", err)
	}
}
