package theme

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"themeplane/model"
	"themeplane/storage"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	repo, root := newBlueRepository(t)
	writeThemeFile(t, root, "broken", ConfigFile, `{"name":"Broken","description":"d","version":"1","authors":[{"name":"x","github_profile":"x"}]}`)
	writeThemeFile(t, root, "broken", RoleSettings.FileName, `[]`)
	writeThemeFile(t, root, "odd", ConfigFile, `{"name":"<Odd & \"Quoted\">","description":"d","version":"1","authors":[{"name":"x","github_profile":"x"}]}`)

	mux := http.NewServeMux()
	NewHandler(repo).Register(mux)
	return mux
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleCatalog(t *testing.T) {
	t.Parallel()

	rec := serve(newTestMux(t), http.MethodGet, "/api/themes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got []model.CatalogEntry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 || got[0].Value != "blue" || got[1].Value != "broken" || got[2].Value != "odd" {
		t.Fatalf("catalog = %+v", got)
	}
}

func TestHandleCatalogMethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := serve(newTestMux(t), http.MethodPost, "/api/themes", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodGet {
		t.Fatalf("Allow = %q", rec.Header().Get("Allow"))
	}
}

func TestHandleTheme(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t)

	rec := serve(mux, http.MethodGet, "/api/themes/blue", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Folder string                  `json:"folder"`
		Role   string                  `json:"role"`
		Config model.ThemeConfig       `json:"config"`
		Fields []model.FieldDefinition `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Folder != "blue" || got.Role != "settings" || got.Config.Name != "Blue" || len(got.Fields) != 4 {
		t.Fatalf("theme response = %+v", got)
	}
}

func TestHandleThemeStatusCodes(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t)
	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{name: "missing theme", method: http.MethodGet, target: "/api/themes/red", want: http.StatusNotFound},
		{name: "invalid fields", method: http.MethodGet, target: "/api/themes/broken", want: http.StatusUnprocessableEntity},
		{name: "missing field file", method: http.MethodGet, target: "/api/themes/odd/defaults", want: http.StatusUnprocessableEntity},
		{name: "unknown action", method: http.MethodGet, target: "/api/themes/blue/other", want: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, target: "/api/themes/blue", want: http.StatusMethodNotAllowed},
		{name: "values needs post", method: http.MethodGet, target: "/api/themes/blue/values", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		rec := serve(mux, tt.method, tt.target, "")
		if rec.Code != tt.want {
			t.Fatalf("%s: status = %d, want %d (body %s)", tt.name, rec.Code, tt.want, rec.Body.String())
		}
	}
}

func TestHandleDefaults(t *testing.T) {
	t.Parallel()

	rec := serve(newTestMux(t), http.MethodGet, "/api/themes/blue/defaults", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got["accent"] != "#0B1F3A" || got["radius"] != float64(4) {
		t.Fatalf("defaults = %#v", got)
	}
}

func TestHandleValues(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t)

	rec := serve(mux, http.MethodPost, "/api/themes/blue/values", `{"accent":"#000000","tagline":"Hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["accent"] != "#000000" || got["tagline"] != "Hi" || got["radius"] != float64(4) {
		t.Fatalf("values = %#v", got)
	}

	rec = serve(mux, http.MethodPost, "/api/themes/blue/values", `{"accent":{"nested":true}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("nested value status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), ErrCustomValues.Error()) {
		t.Fatalf("error body = %s", body)
	}
}

func TestHandleMenu(t *testing.T) {
	t.Parallel()

	rec := serve(newTestMux(t), http.MethodGet, "/api/themes?format=menu&selected=blue", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := rec.Body.String()
	want := `<option value="blue" selected>Blue</option>` +
		`<option value="broken">Broken</option>` +
		`<option value="odd">&lt;Odd &amp; &#34;Quoted&#34;&gt;</option>`
	if got != want {
		t.Fatalf("menu =\n%s\nwant\n%s", got, want)
	}
}

func TestFolderNamesAreNotReserved(t *testing.T) {
	t.Parallel()

	repo, root := newBlueRepository(t)
	for _, folder := range []string{"menu", "rescan"} {
		writeThemeFile(t, root, folder, ConfigFile, blueConfig)
		writeThemeFile(t, root, folder, RoleSettings.FileName, blueSettings)
	}
	mux := http.NewServeMux()
	NewHandler(repo).Register(mux)

	for _, folder := range []string{"menu", "rescan"} {
		rec := serve(mux, http.MethodGet, "/api/themes/"+folder, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status = %d, body = %s", folder, rec.Code, rec.Body.String())
		}
		var got struct {
			Folder string `json:"folder"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("GET %s: decode: %v", folder, err)
		}
		if got.Folder != folder {
			t.Fatalf("GET %s: folder = %q", folder, got.Folder)
		}
	}
}

func TestStatusForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{err: ErrThemeNotFound, want: http.StatusNotFound},
		{err: storage.ErrInvalidName, want: http.StatusNotFound},
		{err: ErrInvalidConfig, want: http.StatusUnprocessableEntity},
		{err: ErrInvalidFieldDefinitions, want: http.StatusUnprocessableEntity},
		{err: ErrCustomValues, want: http.StatusBadRequest},
		{err: storage.ErrIO, want: http.StatusInternalServerError},
		{err: errors.New("other"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusForError(tt.err); got != tt.want {
			t.Fatalf("StatusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
