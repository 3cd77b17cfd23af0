// Package apiclient talks to the external API server that owns sessions, users and settings.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	apperrors "github.com/partnerdesk/console/internal/errors"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultCookieName = "session"
	maxResponseBytes  = 1 << 20
)

// IdentityPaths are JMESPath expressions locating user fields in the /auth/me body.
type IdentityPaths struct {
	ID    string
	Email string
	Name  string
	Roles string
}

// DefaultIdentityPaths matches a flat {"id","email","name","roles"} document.
func DefaultIdentityPaths() IdentityPaths {
	return IdentityPaths{ID: "id", Email: "email", Name: "name", Roles: "roles"}
}

// Config configures the API client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	CookieName string
	Identity   IdentityPaths
	Client     *http.Client
}

// Client implements the identity, session and settings ports over HTTP.
type Client struct {
	baseURL    *url.URL
	cookieName string
	identity   identityQueries
	client     *http.Client
}

// identityQueries holds the identity paths compiled once at construction.
type identityQueries struct {
	id, email, name, roles query
}

type query struct {
	expr string
	jp   jmespath.JMESPath
}

func compileQuery(expr string) (query, error) {
	jp, err := jmespath.Compile(expr)
	if err != nil {
		return query{}, fmt.Errorf("compile identity path %q: %w", expr, err)
	}
	return query{expr: expr, jp: jp}, nil
}

func compileIdentity(p IdentityPaths) (identityQueries, error) {
	var (
		q   identityQueries
		err error
	)
	if q.id, err = compileQuery(p.ID); err != nil {
		return q, err
	}
	if q.email, err = compileQuery(p.Email); err != nil {
		return q, err
	}
	if q.name, err = compileQuery(p.Name); err != nil {
		return q, err
	}
	if q.roles, err = compileQuery(p.Roles); err != nil {
		return q, err
	}
	return q, nil
}

// NewClient builds a Client. BaseURL must be an absolute http(s) URL and every
// identity path must compile.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("api base url must be absolute http(s), got %q", cfg.BaseURL)
	}

	identity, err := compileIdentity(withDefaultPaths(cfg.Identity))
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	name := strings.TrimSpace(cfg.CookieName)
	if name == "" {
		name = defaultCookieName
	}

	return &Client{baseURL: base, cookieName: name, identity: identity, client: hc}, nil
}

func withDefaultPaths(p IdentityPaths) IdentityPaths {
	d := DefaultIdentityPaths()
	if strings.TrimSpace(p.ID) != "" {
		d.ID = p.ID
	}
	if strings.TrimSpace(p.Email) != "" {
		d.Email = p.Email
	}
	if strings.TrimSpace(p.Name) != "" {
		d.Name = p.Name
	}
	if strings.TrimSpace(p.Roles) != "" {
		d.Roles = p.Roles
	}
	return d
}

// CookieName returns the session cookie name forwarded to the API server.
func (c *Client) CookieName() string { return c.cookieName }

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

func (c *Client) newRequest(ctx context.Context, method, path, session string, body any) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), rdr)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: session})
	}
	return req, nil
}

// do sends req. Network failures come back as Transport errors; the caller owns
// the response body on success.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeTransport, "%s %s", req.Method, req.URL.Path)
	}
	return resp, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return nil, apperrors.Wrap(readErr, apperrors.ErrCodeTransport, "read api response")
	}
	if closeErr != nil {
		return nil, fmt.Errorf("close response body: %w", closeErr)
	}
	return data, nil
}

func drain(resp *http.Response) error {
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("drain api response: %w", err)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}
	return nil
}

func unexpectedStatus(resp *http.Response, op string) error {
	body, err := readBody(resp)
	if err != nil {
		return err
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return apperrors.Upstreamf(resp.StatusCode, "%s: api server answered %s: %s", op, resp.Status, msg)
}

func isDenied(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
