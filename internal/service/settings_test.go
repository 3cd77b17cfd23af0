package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/partnerdesk/console/internal/domain/settings"
	apperrors "github.com/partnerdesk/console/internal/errors"
	"github.com/partnerdesk/console/internal/mocks"
)

func newSettingsService(t *testing.T) (*mocks.MockSettingsAPI, *SettingsService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	api := mocks.NewMockSettingsAPI(ctrl)
	return api, NewSettingsService(SettingsServiceOptions{API: api, Validator: validator.New()})
}

var storedSettings = []settings.Entry{
	{Key: settings.KeySiteName, Value: "Acme"},
	{Key: settings.KeyCurrency, Value: "usd"},
	{Key: settings.KeyCookieDays, Value: "forty"},
	{Key: "legacy.flag", Value: "on"},
}

func TestSettingsService_Load(t *testing.T) {
	api, svc := newSettingsService(t)
	api.EXPECT().ListSettings(gomock.Any(), "tok").Return(storedSettings, nil)

	view, err := svc.Load(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Acme", view.Form.SiteName)
	assert.Equal(t, "USD", view.Form.Currency)
	assert.Equal(t, settings.Defaults().CookieDays, view.Form.CookieDays)
	assert.Equal(t, map[string]string{"legacy.flag": "on"}, view.Form.Extra)
	require.Len(t, view.Problems, 1)
	assert.Equal(t, settings.KeyCookieDays, view.Problems[0].Key)
}

func TestSettingsService_Load_Denied(t *testing.T) {
	api, svc := newSettingsService(t)
	api.EXPECT().ListSettings(gomock.Any(), "tok").Return(nil, apperrors.Unauthenticated("denied"))

	_, err := svc.Load(context.Background(), "tok")
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestSettingsService_Update_SavesMergedList(t *testing.T) {
	api, svc := newSettingsService(t)
	api.EXPECT().ListSettings(gomock.Any(), "tok").Return(storedSettings, nil)

	var saved []settings.Entry
	api.EXPECT().SaveSettings(gomock.Any(), "tok", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, entries []settings.Entry) error {
			saved = entries
			return nil
		})

	view, err := svc.Update(context.Background(), "tok", []settings.Entry{
		{Key: settings.KeyCookieDays, Value: "45"},
		{Key: "injected.key", Value: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 45, view.Form.CookieDays)

	got := map[string]string{}
	for _, e := range saved {
		got[e.Key] = e.Value
	}
	assert.Equal(t, "45", got[settings.KeyCookieDays])
	assert.Equal(t, "on", got["legacy.flag"])
	assert.NotContains(t, got, "injected.key")
}

func TestSettingsService_Update_RejectsUnparsableValue(t *testing.T) {
	api, svc := newSettingsService(t)
	api.EXPECT().ListSettings(gomock.Any(), "tok").Return(storedSettings, nil)

	view, err := svc.Update(context.Background(), "tok", []settings.Entry{
		{Key: settings.KeyCommissionPercent, Value: "lots"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, settings.KeyCommissionPercent, apperrors.GetField(err))
	require.NotNil(t, view)
	require.Len(t, view.Problems, 1)
}

func TestSettingsService_Update_RejectsOutOfRange(t *testing.T) {
	api, svc := newSettingsService(t)
	api.EXPECT().ListSettings(gomock.Any(), "tok").Return(storedSettings, nil)

	_, err := svc.Update(context.Background(), "tok", []settings.Entry{
		{Key: settings.KeyCommissionPercent, Value: "150"},
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestSettingsService_Update_RejectsInfiniteThreshold(t *testing.T) {
	api, svc := newSettingsService(t)
	api.EXPECT().ListSettings(gomock.Any(), "tok").Return(storedSettings, nil)
	// No SaveSettings expectation: gomock fails the test if it is called.

	view, err := svc.Update(context.Background(), "tok", []settings.Entry{
		{Key: settings.KeyPayoutThreshold, Value: "+Inf"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, settings.KeyPayoutThreshold, apperrors.GetField(err))
	require.NotNil(t, view)
	assert.Equal(t, settings.Defaults().PayoutThreshold, view.Form.PayoutThreshold)
}
