package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/all-source-os/allframe/core/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("nil error yields empty attr", func(t *testing.T) {
		t.Parallel()

		attr := logger.Error(nil)
		assert.Equal(t, slog.Attr{}, attr)
	})

	t.Run("non-nil error is keyed under error", func(t *testing.T) {
		t.Parallel()

		attr := logger.Error(errors.New("boom"))
		assert.Equal(t, "error", attr.Key)
	})
}

func TestErrors(t *testing.T) {
	t.Parallel()

	t.Run("all nil yields empty attr", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))
	})

	t.Run("non-nil errors are grouped in order", func(t *testing.T) {
		t.Parallel()

		attr := logger.Errors(errors.New("first"), nil, errors.New("third"))
		assert.Equal(t, "errors", attr.Key)
		group := attr.Value.Group()
		assert.Len(t, group, 2)
	})
}

func TestEmptyInputHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.AggregateID(""))
	assert.Equal(t, slog.Attr{}, logger.EventID(""))

	assert.Equal(t, "aggregate_id", logger.AggregateID("a1").Key)
	assert.Equal(t, "attempt", logger.RetryAttempt(2).Key)
	assert.Equal(t, "protocol", logger.Protocol("rest").Key)
	assert.Equal(t, "handler", logger.HandlerName("get_user").Key)
	assert.Equal(t, "component", logger.Component("router").Key)
	assert.Equal(t, int64(3), logger.Count("events", 3).Value.Int64())
}
