// Package application provides a mock of the command application interface.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/watchsync"
	"github.com/agentstation/watchsync/cmd/application"
	"github.com/agentstation/watchsync/internal/auth"
	"github.com/agentstation/watchsync/pkg/catalogs"
)

var _ application.Application = (*Mock)(nil)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ClientFunc       func(ctx context.Context) (watchsync.Client, error)
	AuthFunc         func(ctx context.Context) (*auth.Manager, error)
	RemoverFunc      func(ctx context.Context, service catalogs.Service) (application.Remover, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client(ctx context.Context) (watchsync.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(ctx)
	}
	return nil, nil
}

// Auth returns a token manager using the mock function or nil.
func (m *Mock) Auth(ctx context.Context) (*auth.Manager, error) {
	if m.AuthFunc != nil {
		return m.AuthFunc(ctx)
	}
	return nil, nil
}

// Remover returns a remover using the mock function or nil.
func (m *Mock) Remover(ctx context.Context, service catalogs.Service) (application.Remover, error) {
	if m.RemoverFunc != nil {
		return m.RemoverFunc(ctx, service)
	}
	return nil, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns the version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}
