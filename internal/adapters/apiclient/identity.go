package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	apperrors "github.com/partnerdesk/console/internal/errors"
)

const mePath = "/auth/me"

// CurrentUser asks the API server who owns session. A missing session, a 401/403
// answer or a JSON null body all mean nobody is signed in.
func (c *Client) CurrentUser(ctx context.Context, session string) (*domainauth.User, error) {
	if session == "" {
		return nil, apperrors.Unauthenticated("no session")
	}

	req, err := c.newRequest(ctx, http.MethodGet, mePath, session, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case isDenied(resp.StatusCode):
		if derr := drain(resp); derr != nil {
			return nil, derr
		}
		return nil, apperrors.Unauthenticated("session rejected by api server")
	case !isSuccess(resp.StatusCode):
		return nil, unexpectedStatus(resp, "current user")
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	return c.decodeUser(body)
}

func (c *Client) decodeUser(body []byte) (*domainauth.User, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperrors.Upstreamf(http.StatusOK, "decode current user: %v", err)
	}
	if doc == nil {
		return nil, nil
	}

	id, err := searchString(c.identity.id, doc)
	if err != nil {
		return nil, err
	}
	email, err := searchString(c.identity.email, doc)
	if err != nil {
		return nil, err
	}
	name, err := searchString(c.identity.name, doc)
	if err != nil {
		return nil, err
	}
	raw, err := searchStrings(c.identity.roles, doc)
	if err != nil {
		return nil, err
	}

	return &domainauth.User{
		ID:       id,
		Email:    email,
		Name:     name,
		RawRoles: raw,
		Roles:    domainauth.ParseRoles(raw),
	}, nil
}

func searchString(q query, doc any) (string, error) {
	v, err := q.jp.Search(doc)
	if err != nil {
		return "", apperrors.Upstreamf(http.StatusOK, "evaluate %q: %v", q.expr, err)
	}
	return scalarString(v), nil
}

// searchStrings accepts either a list of role names or a single role string.
func searchStrings(q query, doc any) ([]string, error) {
	v, err := q.jp.Search(doc)
	if err != nil {
		return nil, apperrors.Upstreamf(http.StatusOK, "evaluate %q: %v", q.expr, err)
	}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		if s := scalarString(t); s != "" {
			return []string{s}, nil
		}
		return nil, nil
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
