// Package mediawiki talks to the target wiki through api.php.
package mediawiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/helixml/mt2mw/domain/migration"
)

// ErrNotLoggedIn is returned by write actions before a successful Login.
var ErrNotLoggedIn = errors.New("not logged in")

// Client is a session with one MediaWiki installation. It keeps the session
// cookie and edit token between calls and is not safe for concurrent use.
type Client struct {
	apiURL string
	http   *http.Client
	logger *slog.Logger
	token  string
}

// NewClient creates a client for the wiki at baseURL (api.php lives directly
// beneath it). A cookie jar is added to a copy of httpClient when it has none.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		withJar := *httpClient
		withJar.Jar = jar
		httpClient = &withJar
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiURL: strings.TrimRight(baseURL, "/") + "/api.php",
		http:   httpClient,
		logger: logger,
	}, nil
}

// Login authenticates with a bot or user password and fetches the edit token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	loginToken, err := c.fetchToken(ctx, "login")
	if err != nil {
		return fmt.Errorf("fetch login token: %w", err)
	}

	resp, err := c.post(ctx, "login", url.Values{
		"lgname":     {username},
		"lgpassword": {password},
		"lgtoken":    {loginToken},
	})
	if err != nil {
		return err
	}
	if resp.Login == nil || resp.Login.Result != "Success" {
		reason := "no login result"
		if resp.Login != nil {
			reason = strings.TrimSpace(resp.Login.Result + " " + resp.Login.Reason)
		}
		return &APIError{Action: "login", Code: "failed", Info: reason}
	}

	token, err := c.fetchToken(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("fetch edit token: %w", err)
	}
	c.token = token
	c.logger.Info("logged in to target wiki", slog.String("api", c.apiURL), slog.String("user", username))
	return nil
}

// Edit replaces the text of the page title, creating it if needed.
func (c *Client) Edit(ctx context.Context, title, text string) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	resp, err := c.post(ctx, "edit", url.Values{
		"title": {title},
		"text":  {text},
		"token": {c.token},
	})
	if err != nil {
		return err
	}
	if resp.Edit == nil || resp.Edit.Result != "Success" {
		return &APIError{Action: "edit", Code: "failed", Info: "edit of " + title + " was not saved"}
	}
	return nil
}

// UploadFromURL asks the wiki to fetch fileURL and store it as filename.
// A file already stored under filename returns migration.ErrDuplicate. Any
// other warning is overridden once so the file ends up under filename.
func (c *Client) UploadFromURL(ctx context.Context, filename, fileURL, comment string) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	params := url.Values{
		"filename": {filename},
		"url":      {fileURL},
		"comment":  {comment},
		"token":    {c.token},
	}
	resp, err := c.post(ctx, "upload", params)
	if err != nil {
		return err
	}
	if resp.Upload != nil && resp.Upload.Result == "Warning" && !resp.Upload.nameTaken() {
		c.logger.DebugContext(ctx, "overriding upload warnings",
			slog.String("filename", filename),
			slog.String("warnings", resp.Upload.warningText()),
		)
		params.Set("ignorewarnings", "1")
		if resp, err = c.post(ctx, "upload", params); err != nil {
			return err
		}
	}
	switch {
	case resp.Upload == nil:
		return &APIError{Action: "upload", Code: "failed", Info: "no upload result"}
	case resp.Upload.Result == "Success":
		return nil
	case resp.Upload.nameTaken():
		return fmt.Errorf("%s: %w", resp.Upload.warningText(), migration.ErrDuplicate)
	default:
		return &APIError{Action: "upload", Code: strings.ToLower(resp.Upload.Result), Info: resp.Upload.warningText()}
	}
}

// Logout ends the session. It is a no-op when not logged in.
func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	_, err := c.post(ctx, "logout", url.Values{"token": {c.token}})
	c.token = ""
	return err
}

func (c *Client) fetchToken(ctx context.Context, kind string) (string, error) {
	params := url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {kind},
		"format": {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req, "query")
	if err != nil {
		return "", err
	}
	if resp.Query == nil || resp.Query.Tokens[kind+"token"] == "" {
		return "", &APIError{Action: "query", Code: "notoken", Info: "no " + kind + " token in response"}
	}
	return resp.Query.Tokens[kind+"token"], nil
}

func (c *Client) post(ctx context.Context, action string, form url.Values) (response, error) {
	form.Set("action", action)
	form.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, action)
}

func (c *Client) do(req *http.Request, action string) (response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%s: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return response{}, fmt.Errorf("%s: HTTP %d %s", action, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return response{}, fmt.Errorf("%s: decode response: %w", action, err)
	}
	if out.Error != nil {
		return response{}, &APIError{Action: action, Code: out.Error.Code, Info: out.Error.Info}
	}
	return out, nil
}
