package transport

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Cache is an http.RoundTripper that keeps successful XML GET responses of
// the page routes on disk, keyed by the SHA-256 of the request URL. Anything
// else, including attachment downloads, goes straight to the inner transport. Cache read and
// write errors fall through to the network.
type Cache struct {
	inner http.RoundTripper
	dir   string
}

// NewCache creates a Cache storing entries under dir.
// If inner is nil, http.DefaultTransport is used.
func NewCache(dir string, inner http.RoundTripper) (*Cache, error) {
	if inner == nil {
		inner = http.DefaultTransport
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{inner: inner, dir: dir}, nil
}

type cacheEntry struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// RoundTrip implements http.RoundTripper.
func (c *Cache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || !isPageRoute(req.URL.Path) {
		return c.inner.RoundTrip(req)
	}

	path := filepath.Join(c.dir, cacheKey(req.URL.String())+".json")
	if entry, ok := c.load(path); ok {
		return entry.response(req), nil
	}

	resp, err := c.inner.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK || !isXML(resp.Header.Get("Content-Type")) {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	c.store(path, cacheEntry{
		URL:         req.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	})

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (e cacheEntry) response(req *http.Request) *http.Response {
	header := http.Header{}
	header.Set("Content-Type", e.ContentType)
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

func (c *Cache) load(path string) (cacheEntry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *Cache) store(path string, entry cacheEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// pagesRoute prefixes the tree, file listing and contents requests.
const pagesRoute = "/@api/deki/pages"

func isPageRoute(path string) bool {
	return strings.Contains(path, pagesRoute)
}

func isXML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "xml")
}
