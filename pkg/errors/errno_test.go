package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeCode(t *testing.T) {
	tests := []struct {
		name     string
		service  int
		category int
		seq      int
		expected int
	}{
		{"common request", ServiceCommon, CategoryRequest, 0, 1000},
		{"ingest not found", ServiceIngest, CategoryNotFound, 0, 2004000},
		{"chat conflict", ServiceChat, CategoryConflict, 0, 2105000},
		{"vendor rate", ServiceVendor, CategoryRate, 0, 9006000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MakeCode(tt.service, tt.category, tt.seq))
		})
	}
}

func TestErrnoIs(t *testing.T) {
	wrapped := ErrBotNotReady.WithMessagef("bot status is %s", "processing")

	assert.True(t, errors.Is(wrapped, ErrBotNotReady))
	assert.False(t, errors.Is(wrapped, ErrBotNotFound))
}

func TestWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ErrCrawlFailed.WithCause(cause)

	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, cause, errors.Unwrap(err))
	// The original registered value must stay untouched.
	assert.NoError(t, errors.Unwrap(ErrCrawlFailed))
}

func TestFromError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, FromError(nil))
	})

	t.Run("already errno", func(t *testing.T) {
		e := FromError(ErrProviderQuota)
		assert.Equal(t, ErrProviderQuota.Code, e.Code)
		assert.Equal(t, http.StatusTooManyRequests, e.HTTPStatus())
	})

	t.Run("plain error", func(t *testing.T) {
		e := FromError(fmt.Errorf("boom"))
		assert.Equal(t, ErrInternal.Code, e.Code)
		assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus())
	})
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("pipeline: %w", ErrEmptyContent.WithCause(fmt.Errorf("0 chunks")))

	assert.True(t, IsCode(err, ErrEmptyContent.Code))
	assert.False(t, IsCode(err, ErrCrawlFailed.Code))
	assert.False(t, IsCode(nil, ErrCrawlFailed.Code))
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(ErrBotNotFound.Code)
	assert.True(t, ok)
	assert.Equal(t, "Bot not found", e.Message)

	_, ok = Lookup(9999999)
	assert.False(t, ok)
}
