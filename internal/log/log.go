// Package log holds the logging helpers shared by distroalias packages.
//
// Packages log with the [log/slog] package-level functions and the *Context
// variants, and attach request-scoped attributes to the [context.Context]
// with [With]. A handler wrapped by [WrapHandler] adds those attributes to
// every record.
package log

import (
	"context"
	"io"
	"log/slog"
)

type ctxkey int

const (
	_ ctxkey = iota
	attrsKey
	levelKey
)

// With returns a context carrying the provided key-value pairs (or
// [slog.Attr] values), to be added to records logged with it.
//
// A key set on an outer context is replaced by the same key set later.
func With(ctx context.Context, args ...any) context.Context {
	prev, _ := ctx.Value(attrsKey).([]slog.Attr)
	next := toAttrs(args)
	out := make([]slog.Attr, 0, len(prev)+len(next))
	for _, a := range prev {
		if !hasKey(next, a.Key) {
			out = append(out, a)
		}
	}
	for i, a := range next {
		if hasKey(next[i+1:], a.Key) {
			continue
		}
		if a.Value.Kind() == slog.KindGroup && len(a.Value.Group()) == 0 {
			continue
		}
		out = append(out, a)
	}
	return context.WithValue(ctx, attrsKey, out)
}

// Attrs returns the attributes stored in the context by [With].
func Attrs(ctx context.Context) []slog.Attr {
	as, _ := ctx.Value(attrsKey).([]slog.Attr)
	return as
}

// WithLevel returns a context that enables records at or above the provided
// level, regardless of the handler's configured level.
func WithLevel(ctx context.Context, l slog.Leveler) context.Context {
	return context.WithValue(ctx, levelKey, l)
}

// WrapHandler wraps the provided handler so that attributes from [With] and
// levels from [WithLevel] are honored.
func WrapHandler(next slog.Handler) slog.Handler {
	return handler{next: next}
}

// NewHandler returns the handler used by commands: text output on "w" at
// info level, wrapped by [WrapHandler]. Use [WithLevel] to enable debug
// output for a context.
func NewHandler(w io.Writer) slog.Handler {
	return WrapHandler(slog.NewTextHandler(w, nil))
}

var _ slog.Handler = handler{}

type handler struct {
	next slog.Handler
}

// Enabled implements [slog.Handler].
func (h handler) Enabled(ctx context.Context, l slog.Level) bool {
	if lv, ok := ctx.Value(levelKey).(slog.Leveler); ok && l >= lv.Level() {
		return true
	}
	return h.next.Enabled(ctx, l)
}

// Handle implements [slog.Handler].
func (h handler) Handle(ctx context.Context, r slog.Record) error {
	if as := Attrs(ctx); len(as) != 0 {
		r.AddAttrs(as...)
	}
	return h.next.Handle(ctx, r)
}

// WithAttrs implements [slog.Handler].
func (h handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return handler{next: h.next.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (h handler) WithGroup(name string) slog.Handler {
	return handler{next: h.next.WithGroup(name)}
}

func hasKey(as []slog.Attr, k string) bool {
	for _, a := range as {
		if a.Key == k {
			return true
		}
	}
	return false
}

// ToAttrs follows the argument conventions of [slog.Logger.Log].
func toAttrs(args []any) []slog.Attr {
	const badKey = `!BADKEY`
	var out []slog.Attr
	for len(args) > 0 {
		switch x := args[0].(type) {
		case string:
			if len(args) == 1 {
				out = append(out, slog.String(badKey, x))
				args = nil
				continue
			}
			out = append(out, slog.Any(x, args[1]))
			args = args[2:]
		case slog.Attr:
			out = append(out, x)
			args = args[1:]
		default:
			out = append(out, slog.Any(badKey, x))
			args = args[1:]
		}
	}
	return out
}
