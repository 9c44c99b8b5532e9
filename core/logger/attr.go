package logger

import (
	"log/slog"
	"strconv"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit
// nil checks, following the principle of making zero values useful.

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups multiple non-nil errors under the key "errors".
// Uses index-based keys to preserve error order. Returns empty Attr for all
// nil errors.
func Errors(errs ...error) slog.Attr {
	count := 0
	for _, err := range errs {
		if err != nil {
			count++
		}
	}
	if count == 0 {
		return slog.Attr{}
	}

	as := make([]slog.Attr, 0, count)
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Protocol creates an attribute for protocol names.
func Protocol(name string) slog.Attr {
	return slog.String("protocol", name)
}

// HandlerName creates an attribute for handler names.
func HandlerName(name string) slog.Attr {
	return slog.String("handler", name)
}

// AggregateID creates an attribute for event stream identifiers.
func AggregateID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("aggregate_id", id)
}

// EventID creates an attribute for event identifiers.
func EventID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("event_id", id)
}

// RetryAttempt creates an attribute for retry attempt numbers.
func RetryAttempt(attempt int) slog.Attr {
	return slog.Int("attempt", attempt)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}
