package errors_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	pkgerrors "github.com/agentstation/watchsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "mapping",
			ID:       "mal-16498",
		}
		assert.Equal(t, "mapping with ID mal-16498 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("record", "trakt-naruto")
		wrapped := fmt.Errorf("lookup: %w", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "direction",
			Message: "unknown direction",
		}
		assert.Equal(t, "validation failed for field direction: unknown direction", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "empty title"}
		assert.Equal(t, "validation failed: empty title", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestUpstreamError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
		want   bool
	}{
		{"401 is unauthorized", 401, pkgerrors.ErrUnauthorized, true},
		{"404 is not found", 404, pkgerrors.ErrNotFound, true},
		{"429 is rate limited", 429, pkgerrors.ErrRateLimited, true},
		{"503 is unavailable", 503, pkgerrors.ErrUpstreamUnavailable, true},
		{"400 is none of them", 400, pkgerrors.ErrUnauthorized, false},
		{"500 is not rate limited", 500, pkgerrors.ErrRateLimited, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewUpstreamError("mal", tt.status, "boom")
			assert.Equal(t, tt.want, errors.Is(err, tt.target))
		})
	}

	t.Run("message", func(t *testing.T) {
		err := pkgerrors.NewUpstreamError("trakt", 422, "invalid list")
		assert.Equal(t, "trakt returned 422: invalid list", err.Error())

		err.Endpoint = "users/me/lists"
		assert.Equal(t, "trakt returned 422 for users/me/lists: invalid list", err.Error())
	})

	t.Run("retry after", func(t *testing.T) {
		err := &pkgerrors.UpstreamError{Service: "mal", StatusCode: 429, Message: "slow down", RetryAfter: 30 * time.Second}
		assert.Equal(t, 30*time.Second, pkgerrors.RetryAfter(fmt.Errorf("fetch: %w", err)))
		assert.Zero(t, pkgerrors.RetryAfter(errors.New("x")))
	})

	t.Run("wrapped transport error", func(t *testing.T) {
		base := errors.New("connection reset")
		err := pkgerrors.WrapUpstream("trakt", 0, base)
		require.Error(t, err)
		assert.ErrorIs(t, err, base)
		assert.Equal(t, "trakt request failed: connection reset", err.Error())
		assert.NoError(t, pkgerrors.WrapUpstream("trakt", 0, nil))
	})
}

func TestAuthError(t *testing.T) {
	cause := errors.New("invalid_grant")
	err := pkgerrors.NewAuthError("mal", "token refresh failed", cause)

	assert.True(t, pkgerrors.IsUnauthorized(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "authentication error for mal: token refresh failed: invalid_grant", err.Error())

	var authErr *pkgerrors.AuthError
	require.True(t, errors.As(fmt.Errorf("fetch: %w", err), &authErr))
	assert.Equal(t, "mal", authErr.Service)
}

func TestOperationError(t *testing.T) {
	cause := pkgerrors.NewUpstreamError("mal", 500, "oops")
	err := pkgerrors.NewOperationError("update", "mal", "20", cause)

	assert.Equal(t, "update on mal for 20 failed: mal returned 500: oops", err.Error())
	assert.True(t, pkgerrors.IsUpstreamUnavailable(err))

	noID := pkgerrors.NewOperationError("add", "trakt", "", errors.New("x"))
	assert.Equal(t, "add on trakt failed: x", noID.Error())
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("store", "unknown driver \"mongo\"", nil)
	assert.Equal(t, "configuration error in store: unknown driver \"mongo\"", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestWrapHelpers(t *testing.T) {
	base := errors.New("disk full")

	t.Run("io", func(t *testing.T) {
		err := pkgerrors.WrapIO("write", "/tmp/watchsync.db", base)
		var ioErr *pkgerrors.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "write", ioErr.Operation)
		assert.ErrorIs(t, err, base)
	})

	t.Run("resource", func(t *testing.T) {
		err := pkgerrors.WrapResource("set", "mappings", "mal-1", base)
		assert.Equal(t, "failed to set mappings mal-1: disk full", err.Error())
		assert.NoError(t, pkgerrors.WrapResource("set", "mappings", "mal-1", nil))
	})

	t.Run("parse", func(t *testing.T) {
		err := pkgerrors.WrapParse("json", "", base)
		assert.Equal(t, "json parse error: disk full", err.Error())
	})

	t.Run("validation", func(t *testing.T) {
		err := pkgerrors.WrapValidation("source", base)
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}
