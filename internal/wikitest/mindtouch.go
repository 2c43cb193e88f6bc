// Package wikitest provides fake MindTouch and MediaWiki servers for tests.
package wikitest

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Page is a page served by the fake MindTouch server.
type Page struct {
	ID       string
	Title    string
	Path     string
	Body     string
	Files    []File
	Children []Page
}

// File is an attachment served by the fake MindTouch server.
type File struct {
	Name        string
	Type        string
	Description string
	Content     []byte
}

// MindTouch is a fake @api/deki server.
type MindTouch struct {
	server    *httptest.Server
	root      Page
	pages     map[string]Page
	mu        sync.Mutex
	failFiles map[string]bool
	failBody  map[string]bool
	failTree  bool
	requests  []string
}

// NewMindTouch starts a fake MindTouch server serving root. It is closed
// when the test ends.
func NewMindTouch(t *testing.T, root Page) *MindTouch {
	t.Helper()
	m := &MindTouch{
		root:      root,
		pages:     map[string]Page{},
		failFiles: map[string]bool{},
		failBody:  map[string]bool{},
	}
	m.index(root)

	r := chi.NewRouter()
	r.Use(m.record)
	r.Get("/@api/deki/pages", m.handlePages)
	r.Get("/@api/deki/pages/{id}/files", m.handleFiles)
	r.Get("/@api/deki/pages/{id}/contents", m.handleContents)
	r.Get("/@api/deki/files/{id}/{name}", m.handleDownload)

	m.server = httptest.NewServer(r)
	t.Cleanup(m.server.Close)
	return m
}

// URL returns the base URL of the wiki.
func (m *MindTouch) URL() string { return m.server.URL }

// FileURL returns the download URL of an attachment.
func (m *MindTouch) FileURL(pageID, name string) string {
	return fmt.Sprintf("%s/@api/deki/files/%s/%s", m.server.URL, pageID, name)
}

// FailFiles makes the files listing of page id return 500.
func (m *MindTouch) FailFiles(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFiles[id] = true
}

// FailBody makes the contents of page id return 500.
func (m *MindTouch) FailBody(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failBody[id] = true
}

// FailTree makes the pages listing return 503.
func (m *MindTouch) FailTree() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failTree = true
}

// Requests returns the request paths served so far.
func (m *MindTouch) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MindTouch) index(p Page) {
	m.pages[p.ID] = p
	for _, c := range p.Children {
		m.index(c)
	}
}

func (m *MindTouch) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, r.URL.Path)
		m.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (m *MindTouch) failing(set map[string]bool, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return set[id]
}

type xmlPage struct {
	XMLName  xml.Name  `xml:"page"`
	ID       string    `xml:"id,attr"`
	Title    string    `xml:"title"`
	Path     string    `xml:"path"`
	Subpages []xmlPage `xml:"subpages>page"`
}

func toXMLPage(p Page) xmlPage {
	out := xmlPage{ID: p.ID, Title: p.Title, Path: p.Path}
	for _, c := range p.Children {
		out.Subpages = append(out.Subpages, toXMLPage(c))
	}
	return out
}

func (m *MindTouch) handlePages(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	fail := m.failTree
	m.mu.Unlock()
	if fail {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	root := toXMLPage(m.root)
	root.Path = ""
	writeXML(w, struct {
		XMLName xml.Name `xml:"pages"`
		Page    xmlPage
	}{Page: root})
}

func (m *MindTouch) handleFiles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page, ok := m.pages[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if m.failing(m.failFiles, id) {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	type contents struct {
		Href string `xml:"href,attr"`
		Type string `xml:"type,attr"`
		Size int    `xml:"size,attr"`
	}
	type file struct {
		Filename    string   `xml:"filename"`
		Description string   `xml:"description"`
		Contents    contents `xml:"contents"`
	}
	listing := struct {
		XMLName xml.Name `xml:"files"`
		Count   int      `xml:"count,attr"`
		Files   []file   `xml:"file"`
	}{Count: len(page.Files)}
	for _, f := range page.Files {
		listing.Files = append(listing.Files, file{
			Filename:    f.Name,
			Description: f.Description,
			Contents: contents{
				Href: m.FileURL(id, f.Name),
				Type: f.Type,
				Size: len(f.Content),
			},
		})
	}
	writeXML(w, listing)
}

// escaper adds the extra escaping layer MindTouch applies to page bodies.
var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func (m *MindTouch) handleContents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page, ok := m.pages[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if m.failing(m.failBody, id) {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	writeXML(w, struct {
		XMLName xml.Name `xml:"content"`
		Type    string   `xml:"type,attr"`
		Body    string   `xml:"body"`
	}{Type: "text/html", Body: "\n" + escaper.Replace(page.Body) + "\n"})
}

func (m *MindTouch) handleDownload(w http.ResponseWriter, r *http.Request) {
	page, ok := m.pages[chi.URLParam(r, "id")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	name := chi.URLParam(r, "name")
	for _, f := range page.Files {
		if f.Name == name {
			if f.Type != "" {
				w.Header().Set("Content-Type", f.Type)
			}
			_, _ = w.Write(f.Content)
			return
		}
	}
	http.NotFound(w, r)
}

func writeXML(w http.ResponseWriter, v any) {
	data, err := xml.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(data)
}
