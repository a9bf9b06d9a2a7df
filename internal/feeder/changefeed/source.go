package changefeed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var errStreamEnded = errors.New("change feed stream ended")

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// lifecycle gives sources the Shutdown half of async.Worker.
type lifecycle struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (l *lifecycle) start(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()
	return ctx, cancel
}

func (l *lifecycle) Shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
}

// runWithRetry keeps a long running stream alive until ctx is done. A stream
// that returns without error before that is treated as a failure.
func runWithRetry(ctx context.Context, source string, b backoff.BackOff, stream func(context.Context) error) {
	operation := func() error {
		err := stream(ctx)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			return errStreamEnded
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		slog.Warn("change feed source failed",
			slog.String("source", source),
			slog.Any("error", err),
			slog.Duration("retry_in", next))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil && ctx.Err() == nil {
		slog.Error("change feed source stopped", slog.String("source", source), slog.Any("error", err))
	}
}
