package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionConfig configures the background session keeper.
type SessionConfig struct {
	Client   *Client
	Listener *Listener
	// Interval between session checks; zero means DefaultSessionCheckInterval.
	Interval time.Duration
	// OnNotification receives pushed notifications while the session runs.
	OnNotification Handler
	// OnSessionInvalid fires when the server reports the session invalid;
	// re-authentication or sign-out is the application's decision.
	OnSessionInvalid func()
	Logger           *zap.Logger
}

// Session ties the liveness loop and the notification listener together:
// starting it connects the channel, subscribes the notification handler and
// begins periodic session checks; stopping it unwinds all three. Both
// operations are idempotent.
type Session struct {
	cfg    SessionConfig
	loop   *LivenessLoop
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	sub     *Subscription
}

// NewSession builds the session keeper.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		cfg:    cfg,
		loop:   NewLivenessLoop(cfg.Client, cfg.Interval, cfg.OnSessionInvalid, logger),
		logger: logger,
	}
}

// Start connects the real-time channel and starts the liveness loop.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if s.cfg.Listener != nil {
		if err := s.cfg.Listener.Connect(ctx); err != nil {
			return err
		}
		if s.cfg.OnNotification != nil {
			s.sub = s.cfg.Listener.Subscribe(s.cfg.OnNotification)
		}
	}

	s.loop.Start()
	s.running = true
	s.logger.Info("background session started")
	return nil
}

// Stop stops the loop, cancels the notification subscription and closes
// the channel.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	s.loop.Stop()
	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}
	if s.cfg.Listener != nil {
		_ = s.cfg.Listener.Close()
	}
	s.logger.Info("background session stopped")
}
