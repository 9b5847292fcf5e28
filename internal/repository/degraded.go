package repository

import (
	"context"
	"sync/atomic"
)

type degradedKey struct{}

// TrackDegraded returns a context that records whether a read served
// fallback rows after a failed refresh, and a func reporting it.
func TrackDegraded(ctx context.Context) (context.Context, func() bool) {
	flag := new(atomic.Bool)
	return context.WithValue(ctx, degradedKey{}, flag), flag.Load
}

func markDegraded(ctx context.Context) {
	if flag, ok := ctx.Value(degradedKey{}).(*atomic.Bool); ok {
		flag.Store(true)
	}
}
