// Package logger provides slog attribute helpers shared by the framework's
// packages. Error, Errors, AggregateID and EventID return an empty Attr for
// nil or empty inputs, so call sites never need explicit nil checks; the
// other helpers always return a keyed Attr.
package logger
