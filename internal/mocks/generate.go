// Package mocks provides gomock implementations of the console's ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	client := mocks.NewMockIdentityClient(ctrl)
//	client.EXPECT().CurrentUser(gomock.Any(), "tok").Return(user, nil)
package mocks

// IdentityClient: CurrentUser
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_client_mock.go github.com/partnerdesk/console/internal/ports IdentityClient

// SessionAPI: Login, Logout
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_api_mock.go github.com/partnerdesk/console/internal/ports SessionAPI

// SettingsAPI: ListSettings, SaveSettings
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=settings_api_mock.go github.com/partnerdesk/console/internal/ports SettingsAPI
