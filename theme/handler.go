package theme

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"log"
	"net/http"
	"strings"

	"themeplane/storage"
)

// MaxCustomValuesBytes caps the size of a custom values document accepted
// over HTTP or WebSocket.
const MaxCustomValuesBytes = 1 << 20

// Handler handles theme-related HTTP requests.
type Handler struct {
	repo *Repository
}

// NewHandler creates a new theme handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{
		repo: repo,
	}
}

// Register mounts the theme routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/themes", h.HandleCatalog)
	mux.HandleFunc("/api/themes/", h.HandleTheme)
}

// HandleCatalog returns the catalog of loadable themes as JSON, or as menu
// options with ?format=menu. Every path below /api/themes/ names a folder.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Query().Get("format") == "menu" {
		h.HandleMenu(w, r)
		return
	}

	catalog, err := h.repo.ListAll(r.Context())
	if err != nil {
		log.Printf("list themes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list themes")
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// HandleMenu serves the <option> elements for a theme selection menu.
func (h *Handler) HandleMenu(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	menu, err := h.GenerateThemeMenuHTML(r.Context(), r.URL.Query().Get("selected"))
	if err != nil {
		log.Printf("theme menu: %v", err)
		http.Error(w, "failed to list themes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, menu)
}

// HandleTheme serves /api/themes/{folder}, /api/themes/{folder}/defaults and
// /api/themes/{folder}/values.
func (h *Handler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/themes/")
	folder, action, _ := strings.Cut(rest, "/")
	if folder == "" {
		http.NotFound(w, r)
		return
	}

	switch action {
	case "":
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		record, ok := h.load(w, r, folder)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, record)

	case "defaults":
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		record, ok := h.load(w, r, folder)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, record.Defaults())

	case "values":
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		record, ok := h.load(w, r, folder)
		if !ok {
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxCustomValuesBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		custom, err := record.ParseCustomValues(string(body))
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrCustomValues.Error())
			return
		}
		writeJSON(w, http.StatusOK, record.Resolve(custom))

	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request, folder string) (*Record, bool) {
	record, err := h.repo.Load(r.Context(), folder)
	if err != nil {
		status := StatusForError(err)
		if status >= http.StatusInternalServerError {
			log.Printf("load theme %s: %v", folder, err)
		}
		writeError(w, status, err.Error())
		return nil, false
	}
	return record, true
}

// StatusForError maps repository errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrThemeNotFound), errors.Is(err, storage.ErrInvalidName):
		return http.StatusNotFound
	case errors.Is(err, ErrCustomValues):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrInvalidFieldDefinitions):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// GenerateThemeMenuHTML generates the <option> list for a theme selection menu.
func (h *Handler) GenerateThemeMenuHTML(ctx context.Context, selected string) (string, error) {
	catalog, err := h.repo.ListAll(ctx)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for _, entry := range catalog {
		builder.WriteString(`<option value="`)
		builder.WriteString(html.EscapeString(entry.Value))
		builder.WriteString(`"`)
		if entry.Value == selected {
			builder.WriteString(` selected`)
		}
		builder.WriteString(`>`)
		builder.WriteString(html.EscapeString(entry.Name))
		builder.WriteString(`</option>`)
	}

	return builder.String(), nil
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	w.WriteHeader(http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
