package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionValidator is the server call the liveness loop makes each tick.
type SessionValidator interface {
	ValidateSession(ctx context.Context) (bool, error)
}

// DefaultSessionCheckInterval is how often the session is revalidated.
const DefaultSessionCheckInterval = 5 * time.Minute

// LivenessLoop keeps a session warm by revalidating it on a fixed interval.
// Start and Stop are idempotent; at most one polling cycle runs per loop
// instance, and cancellation is the cycle's normal exit path.
type LivenessLoop struct {
	validator SessionValidator
	interval  time.Duration
	onInvalid func()
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewLivenessLoop builds a loop. onInvalid is called when the server
// reports the session invalid; the loop itself never re-authenticates.
func NewLivenessLoop(validator SessionValidator, interval time.Duration, onInvalid func(), logger *zap.Logger) *LivenessLoop {
	if interval <= 0 {
		interval = DefaultSessionCheckInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LivenessLoop{
		validator: validator,
		interval:  interval,
		onInvalid: onInvalid,
		logger:    logger,
	}
}

// Start launches the polling cycle. A second Start while running is a
// no-op. The call returns promptly; the cycle runs on its own goroutine.
func (l *LivenessLoop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}
	l.running = true

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(ctx, l.done)
	l.logger.Debug("liveness loop started")
}

// Stop cancels the cycle and waits for it to exit. Stopping a loop that is
// not running is a no-op.
func (l *LivenessLoop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	cancel := l.cancel
	done := l.done
	l.cancel = nil
	l.done = nil
	l.mu.Unlock()

	cancel()
	<-done
	l.logger.Debug("liveness loop stopped")
}

// Running reports whether a polling cycle is active.
func (l *LivenessLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// run is the single polling cycle. The ticker wait is the only suspension
// point, so cancellation is observed there with bounded latency.
func (l *LivenessLoop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			valid, err := l.validator.ValidateSession(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Warn("session check failed", zap.Error(err))
				continue
			}
			if !valid {
				l.logger.Info("session expired or invalid")
				if l.onInvalid != nil {
					l.onInvalid()
				}
				continue
			}
			l.logger.Debug("session is valid")
		}
	}
}
