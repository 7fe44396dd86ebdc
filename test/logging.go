package test

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quay/distroalias/internal/log"
)

// Setup installs the test log handler exactly once.
var setup = sync.OnceFunc(func() {
	slog.SetDefault(slog.New(log.WrapHandler(handler{})))
})

type ctxKey struct{}

var _ slog.Handler = handler{}

// Handler implements [slog.Handler] by extracting a "real" [slog.Handler] from
// the [context.Context] passed to it. Records logged with a Context not set up
// by [Logging] are dropped.
//
// Handlers derived with WithAttrs or WithGroup replay those calls onto the
// extracted handler.
type handler struct {
	ops []func(slog.Handler) slog.Handler
}

func (h handler) inner(ctx context.Context) (slog.Handler, bool) {
	lh, ok := ctx.Value(ctxKey{}).(slog.Handler)
	if !ok {
		return nil, false
	}
	for _, op := range h.ops {
		lh = op(lh)
	}
	return lh, true
}

// Enabled implements [slog.Handler].
func (h handler) Enabled(ctx context.Context, l slog.Level) bool {
	lh, ok := h.inner(ctx)
	return ok && lh.Enabled(ctx, l)
}

// Handle implements [slog.Handler].
func (h handler) Handle(ctx context.Context, r slog.Record) error {
	lh, ok := h.inner(ctx)
	if !ok {
		return nil
	}
	return lh.Handle(ctx, r)
}

// WithAttrs implements [slog.Handler].
func (h handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return handler{ops: append(h.ops[:len(h.ops):len(h.ops)], func(h slog.Handler) slog.Handler {
		return h.WithAttrs(attrs)
	})}
}

// WithGroup implements [slog.Handler].
func (h handler) WithGroup(name string) slog.Handler {
	return handler{ops: append(h.ops[:len(h.ops):len(h.ops)], func(h slog.Handler) slog.Handler {
		return h.WithGroup(name)
	})}
}

// Logging returns a [context.Context] that's set up to make the default
// [slog.Logger] write debug-level output to the provided [testing.TB].
func Logging(t testing.TB, parent ...context.Context) context.Context {
	setup()
	ctx := context.Background()
	if len(parent) > 0 {
		ctx = parent[0]
	}
	start := time.Now()
	h := slog.NewTextHandler(t.Output(), &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(g []string, a slog.Attr) slog.Attr {
			if g != nil {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String(slog.TimeKey, "+"+time.Since(start).String())
			case slog.SourceKey:
				src, ok := a.Value.Any().(*slog.Source)
				if !ok {
					return a
				}
				fn := src.Function
				if i := strings.LastIndexByte(fn, '/'); i != -1 {
					fn = fn[i+1:]
				}
				return slog.String(slog.SourceKey, fn)
			}
			return a
		},
	})
	return context.WithValue(ctx, ctxKey{}, slog.Handler(h))
}
