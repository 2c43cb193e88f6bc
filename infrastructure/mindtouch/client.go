// Package mindtouch reads a MindTouch (Deki) wiki through its @api/deki XML API.
package mindtouch

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/helixml/mt2mw/domain/migration"
	"github.com/helixml/mt2mw/domain/wiki"
)

const apiPrefix = "@api/deki/"

// ErrNoRoot indicates the pages listing contained no homepage.
var ErrNoRoot = errors.New("pages listing has no root page")

// StatusError is a response with a status other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Client fetches the page tree, attachment listings and page bodies.
type Client struct {
	baseURL  string
	http     *http.Client
	reporter migration.Reporter
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithReporter sets the reporter notified when a node's file listing fails.
func WithReporter(r migration.Reporter) Option {
	return func(c *Client) {
		c.reporter = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for the wiki at baseURL. Authentication is the
// job of httpClient's transport.
func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTree builds the whole page tree: one request for the hierarchy, then
// one files request per page. A failed hierarchy request returns an error. A
// failed files request leaves that page without files and is reported.
func (c *Client) FetchTree(ctx context.Context) (wiki.Tree, error) {
	var listing pagesXML
	if err := c.get(ctx, "pages", &listing); err != nil {
		return wiki.Tree{}, fmt.Errorf("fetch page hierarchy: %w", err)
	}
	if listing.Page == nil {
		return wiki.Tree{}, ErrNoRoot
	}

	root, err := c.buildPage(ctx, *listing.Page)
	if err != nil {
		return wiki.Tree{}, err
	}
	return wiki.NewTree(root.WithPath(root.Title())), nil
}

// FetchBody retrieves the HTML body of page.
func (c *Client) FetchBody(ctx context.Context, page wiki.Page) (string, error) {
	var contents contentsXML
	if err := c.get(ctx, "pages/"+url.PathEscape(page.ID())+"/contents", &contents); err != nil {
		return "", &migration.NodeFetchError{PageID: page.ID(), Resource: "body", Err: err}
	}
	return contents.body(), nil
}

func (c *Client) buildPage(ctx context.Context, node pageXML) (wiki.Page, error) {
	if err := ctx.Err(); err != nil {
		return wiki.Page{}, err
	}

	title := strings.TrimSpace(node.Title)
	files, err := c.fetchFiles(ctx, node.ID)
	if err != nil {
		c.logger.Warn("treating page as having no files",
			slog.String("page", title),
			slog.String("error", err.Error()),
		)
		c.report(ctx, migration.NewEvent(migration.EventFilesFetchFailed, title).WithErr(err))
		files = nil
	}

	children := make([]wiki.Page, 0, len(node.Subpages))
	for _, sub := range node.Subpages {
		child, err := c.buildPage(ctx, sub)
		if err != nil {
			return wiki.Page{}, err
		}
		children = append(children, child)
	}

	return wiki.NewPage(node.ID, title, strings.TrimSpace(node.Path), files, children), nil
}

func (c *Client) fetchFiles(ctx context.Context, id string) ([]wiki.File, error) {
	var listing filesXML
	if err := c.get(ctx, "pages/"+url.PathEscape(id)+"/files", &listing); err != nil {
		return nil, &migration.NodeFetchError{PageID: id, Resource: "files", Err: err}
	}
	files := make([]wiki.File, 0, len(listing.Files))
	for _, f := range listing.Files {
		files = append(files, f.toDomain())
	}
	return files, nil
}

func (c *Client) get(ctx context.Context, function string, out any) error {
	endpoint := c.baseURL + "/" + apiPrefix + function
	c.logger.Debug("requesting", slog.String("url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", function, err)
	}
	return nil
}

func (c *Client) report(ctx context.Context, event migration.Event) {
	if c.reporter == nil {
		return
	}
	if err := c.reporter.OnEvent(ctx, event); err != nil {
		c.logger.Error("failed to report event",
			slog.String("event", event.Kind().String()),
			slog.String("error", err.Error()),
		)
	}
}
