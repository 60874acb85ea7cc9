// Package mocks provides gomock implementations of the ports used across the shell.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	resolver := mocks.NewMockSessionResolver(ctrl)
//	resolver.EXPECT().Resolve(gomock.Any(), "sid").Return(&identity, nil)
package mocks

// Generate mock for SessionResolver interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_resolver_mock.go github.com/piragi/knowledge-shell/internal/ports SessionResolver
