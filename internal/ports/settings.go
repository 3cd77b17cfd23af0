package ports

import (
	"context"

	"github.com/partnerdesk/console/internal/domain/settings"
)

// SettingsAPI reads and writes the flat settings list on the API server.
type SettingsAPI interface {
	ListSettings(ctx context.Context, session string) ([]settings.Entry, error)
	SaveSettings(ctx context.Context, session string, entries []settings.Entry) error
}
