package service

import (
	"context"
	"fmt"

	"github.com/partnerdesk/console/internal/domain/settings"
	apperrors "github.com/partnerdesk/console/internal/errors"
	"github.com/partnerdesk/console/internal/ports"
)

// StructValidator validates a struct using its tags.
type StructValidator interface {
	Struct(s any) error
}

// SettingsServiceOptions groups dependencies for SettingsService.
type SettingsServiceOptions struct {
	API       ports.SettingsAPI // Required
	Validator StructValidator   // Optional: without it only parse errors are reported
}

// SettingsService loads and saves the admin settings screen.
type SettingsService struct {
	api      ports.SettingsAPI
	validate StructValidator
}

// NewSettingsService constructs a SettingsService. It panics if API is nil.
func NewSettingsService(opts SettingsServiceOptions) *SettingsService {
	if opts.API == nil {
		panic("settings api is required")
	}
	return &SettingsService{api: opts.API, validate: opts.Validator}
}

// SettingsView is the normalized settings state plus any stored values that
// could not be parsed.
type SettingsView struct {
	Form     settings.Form
	Problems []settings.FieldError
}

// Load fetches and normalizes the stored settings.
func (s *SettingsService) Load(ctx context.Context, session string) (*SettingsView, error) {
	entries, err := s.api.ListSettings(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	form, problems := settings.Normalize(entries)
	return &SettingsView{Form: form, Problems: problems}, nil
}

// Update overlays posted values on the stored list, validates the result and
// saves it. Parse failures in posted values are returned in the view with a
// Validation error and nothing is saved.
func (s *SettingsService) Update(ctx context.Context, session string, posted []settings.Entry) (*SettingsView, error) {
	current, err := s.api.ListSettings(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	merged := settings.Merge(current, posted)
	form, _ := settings.Normalize(merged)

	if _, problems := settings.Normalize(posted); len(problems) > 0 {
		return &SettingsView{Form: form, Problems: problems},
			apperrors.ValidationField(problems[0].Key, problems[0].Message)
	}

	if s.validate != nil {
		if verr := s.validate.Struct(form); verr != nil {
			return &SettingsView{Form: form}, apperrors.Wrap(verr, apperrors.ErrCodeValidation, "invalid settings")
		}
	}

	if err := s.api.SaveSettings(ctx, session, settings.Flatten(form)); err != nil {
		return &SettingsView{Form: form}, fmt.Errorf("save settings: %w", err)
	}
	return &SettingsView{Form: form}, nil
}
