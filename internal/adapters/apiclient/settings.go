package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/partnerdesk/console/internal/domain/settings"
	apperrors "github.com/partnerdesk/console/internal/errors"
)

const settingsPath = "/settings"

// ListSettings returns the flat settings list stored on the API server.
func (c *Client) ListSettings(ctx context.Context, session string) ([]settings.Entry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, settingsPath, session, nil)
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
		return nil, apperrors.Unauthenticated("settings access denied")
	case !isSuccess(resp.StatusCode):
		return nil, unexpectedStatus(resp, "list settings")
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	var entries []settings.Entry
	if len(body) > 0 {
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, apperrors.Upstreamf(resp.StatusCode, "decode settings: %v", err)
		}
	}
	return entries, nil
}

// SaveSettings replaces the settings list on the API server.
func (c *Client) SaveSettings(ctx context.Context, session string, entries []settings.Entry) error {
	if entries == nil {
		entries = []settings.Entry{}
	}
	req, err := c.newRequest(ctx, http.MethodPut, settingsPath, session, entries)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}

	switch {
	case isDenied(resp.StatusCode):
		if derr := drain(resp); derr != nil {
			return derr
		}
		return apperrors.Unauthenticated("settings access denied")
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		body, rerr := readBody(resp)
		if rerr != nil {
			return rerr
		}
		return apperrors.Validation("api server rejected settings: " + string(body))
	case !isSuccess(resp.StatusCode):
		return unexpectedStatus(resp, "save settings")
	}
	return drain(resp)
}
