package apiclient

import (
	"context"
	"net/http"

	apperrors "github.com/partnerdesk/console/internal/errors"
	"github.com/partnerdesk/console/internal/ports"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
)

// Login submits credentials. On success the grant carries the session cookie
// value plus every Set-Cookie header so the caller can relay them unchanged.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (ports.SessionGrant, error) {
	req, err := c.newRequest(ctx, http.MethodPost, loginPath, "", creds)
	if err != nil {
		return ports.SessionGrant{}, err
	}
	resp, err := c.do(req)
	if err != nil {
		return ports.SessionGrant{}, err
	}

	switch {
	case isDenied(resp.StatusCode):
		if derr := drain(resp); derr != nil {
			return ports.SessionGrant{}, derr
		}
		return ports.SessionGrant{}, apperrors.InvalidCredentials("email or password is incorrect")
	case !isSuccess(resp.StatusCode):
		return ports.SessionGrant{}, unexpectedStatus(resp, "login")
	}

	grant := ports.SessionGrant{SetCookies: resp.Header.Values("Set-Cookie")}
	for _, ck := range resp.Cookies() {
		if ck.Name == c.cookieName && ck.Value != "" {
			grant.Session = ck.Value
		}
	}
	if err := drain(resp); err != nil {
		return ports.SessionGrant{}, err
	}
	if grant.Session == "" {
		return ports.SessionGrant{}, apperrors.Upstreamf(resp.StatusCode,
			"login succeeded but no %q cookie was set", c.cookieName)
	}
	return grant, nil
}

// Logout ends session on the API server. A session the server no longer
// recognizes counts as already logged out.
func (c *Client) Logout(ctx context.Context, session string) error {
	if session == "" {
		return nil
	}
	req, err := c.newRequest(ctx, http.MethodPost, logoutPath, session, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if !isSuccess(resp.StatusCode) && !isDenied(resp.StatusCode) {
		return unexpectedStatus(resp, "logout")
	}
	return drain(resp)
}
