//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are installed globally via `go install` or run through
// `go run pkg@version` and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools:
//
// Air - Live reload for the console (pair with DEV=true to read templates from disk)
//   Install: go install github.com/air-verse/air@v1.63.0
//   Version: v1.63.0 (pinned 2025-01-01)
//   Docs: https://github.com/air-verse/air
//
// mockgen - gomock generator for internal/mocks
//   Run: go generate ./internal/mocks (invokes go.uber.org/mock/mockgen@v0.6.0)
//   Docs: https://github.com/uber-go/mock
