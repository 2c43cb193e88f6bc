package wikitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const (
	loginToken  = "login+\\"
	editToken   = "csrf+\\"
	sessionName = "wikisession"
)

// Edit is a page edit received by the fake MediaWiki server.
type Edit struct {
	Title string
	Text  string
}

// Upload is an upload-by-URL received by the fake MediaWiki server.
type Upload struct {
	Filename string
	URL      string
}

// MediaWiki is a fake api.php server. It accepts one user and keeps edits
// and uploads in arrival order.
type MediaWiki struct {
	server   *httptest.Server
	username string
	password string

	mu        sync.Mutex
	edits     []Edit
	uploads   []Upload
	existing  map[string]bool
	sameAs    map[string]string
	failEdits map[string]bool
	loggedOut bool
}

// NewMediaWiki starts a fake MediaWiki server accepting username/password.
// It is closed when the test ends.
func NewMediaWiki(t *testing.T, username, password string) *MediaWiki {
	t.Helper()
	mw := &MediaWiki{
		username:  username,
		password:  password,
		existing:  map[string]bool{},
		sameAs:    map[string]string{},
		failEdits: map[string]bool{},
	}

	r := chi.NewRouter()
	r.Get("/api.php", mw.handleQuery)
	r.Post("/api.php", mw.handleAction)
	mw.server = httptest.NewServer(r)
	t.Cleanup(mw.server.Close)
	return mw
}

// URL returns the base URL of the wiki.
func (mw *MediaWiki) URL() string { return mw.server.URL }

// Edits returns the edits received so far.
func (mw *MediaWiki) Edits() []Edit {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	out := make([]Edit, len(mw.edits))
	copy(out, mw.edits)
	return out
}

// EditTitles returns the titles of the edits received so far.
func (mw *MediaWiki) EditTitles() []string {
	edits := mw.Edits()
	titles := make([]string, len(edits))
	for i, e := range edits {
		titles[i] = e.Title
	}
	return titles
}

// Uploads returns the uploads received so far.
func (mw *MediaWiki) Uploads() []Upload {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	out := make([]Upload, len(mw.uploads))
	copy(out, mw.uploads)
	return out
}

// SetExisting marks filename as already uploaded.
func (mw *MediaWiki) SetExisting(filename string) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.existing[filename] = true
}

// SetDuplicateOf makes uploads of filename warn that the same content is
// already stored as other, until the warning is ignored.
func (mw *MediaWiki) SetDuplicateOf(filename, other string) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.sameAs[filename] = other
}

// FailEdit makes edits of title fail with an API error.
func (mw *MediaWiki) FailEdit(title string) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.failEdits[title] = true
}

// LoggedOut reports whether the client logged out.
func (mw *MediaWiki) LoggedOut() bool {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.loggedOut
}

func (mw *MediaWiki) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("action") != "query" || q.Get("meta") != "tokens" {
		writeAPIError(w, "badrequest", "unsupported query")
		return
	}
	switch q.Get("type") {
	case "login":
		writeJSON(w, map[string]any{"query": map[string]any{"tokens": map[string]string{"logintoken": loginToken}}})
	case "csrf", "":
		token := "+\\"
		if hasSession(r) {
			token = editToken
		}
		writeJSON(w, map[string]any{"query": map[string]any{"tokens": map[string]string{"csrftoken": token}}})
	default:
		writeAPIError(w, "badtype", "unknown token type")
	}
}

func (mw *MediaWiki) handleAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIError(w, "badform", err.Error())
		return
	}
	action := r.PostForm.Get("action")
	if action == "login" {
		mw.handleLogin(w, r)
		return
	}
	if !hasSession(r) || r.PostForm.Get("token") != editToken {
		writeAPIError(w, "badtoken", "Invalid CSRF token.")
		return
	}

	mw.mu.Lock()
	defer mw.mu.Unlock()
	switch action {
	case "edit":
		title := r.PostForm.Get("title")
		if mw.failEdits[title] {
			writeAPIError(w, "protectedpage", "This page has been protected.")
			return
		}
		mw.edits = append(mw.edits, Edit{Title: title, Text: r.PostForm.Get("text")})
		writeJSON(w, map[string]any{"edit": map[string]string{"result": "Success", "title": title}})
	case "upload":
		name := r.PostForm.Get("filename")
		if mw.existing[name] {
			writeJSON(w, map[string]any{"upload": map[string]any{
				"result":   "Warning",
				"warnings": map[string]string{"exists": name},
			}})
			return
		}
		if other, ok := mw.sameAs[name]; ok && r.PostForm.Get("ignorewarnings") == "" {
			writeJSON(w, map[string]any{"upload": map[string]any{
				"result":   "Warning",
				"warnings": map[string][]string{"duplicate": {other}},
			}})
			return
		}
		mw.existing[name] = true
		mw.uploads = append(mw.uploads, Upload{Filename: name, URL: r.PostForm.Get("url")})
		writeJSON(w, map[string]any{"upload": map[string]string{"result": "Success", "filename": name}})
	case "logout":
		mw.loggedOut = true
		writeJSON(w, map[string]any{})
	default:
		writeAPIError(w, "badvalue", "Unrecognized value for parameter \"action\"")
	}
}

func (mw *MediaWiki) handleLogin(w http.ResponseWriter, r *http.Request) {
	f := r.PostForm
	if f.Get("lgtoken") != loginToken {
		writeJSON(w, map[string]any{"login": map[string]string{"result": "Failed", "reason": "bad token"}})
		return
	}
	if f.Get("lgname") != mw.username || f.Get("lgpassword") != mw.password {
		writeJSON(w, map[string]any{"login": map[string]string{
			"result": "Failed",
			"reason": "Incorrect username or password entered.",
		}})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionName, Value: "ok", Path: "/"})
	writeJSON(w, map[string]any{"login": map[string]string{"result": "Success", "lgusername": mw.username}})
}

func hasSession(r *http.Request) bool {
	c, err := r.Cookie(sessionName)
	return err == nil && c.Value == "ok"
}

func writeAPIError(w http.ResponseWriter, code, info string) {
	writeJSON(w, map[string]any{"error": map[string]string{"code": code, "info": info}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
