package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler receives one pushed notification.
type Handler func(title, message string)

// Subscription is the handle returned by Subscribe. Cancelling it detaches
// the handler; leak-freedom is checkable by pairing every Subscribe with
// exactly one Cancel.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel detaches the subscription. Safe to call repeatedly.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// ListenerConfig configures the real-time channel client.
type ListenerConfig struct {
	// BaseURL is the service's HTTP base URL; the scheme is rewritten to ws/wss.
	BaseURL string
	// Token is the bearer token presented during the handshake.
	Token string
	// TokenInQuery sends the token as ?access_token= instead of the
	// Authorization header, for transports that strip custom headers.
	TokenInQuery bool
	Logger       *zap.Logger
}

// Listener maintains one WebSocket connection to the notification channel
// and fans decoded events out to its subscribers.
type Listener struct {
	cfg    ListenerConfig
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[*Subscription]Handler
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

type notificationEnvelope struct {
	Event   string `json:"event"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

const receiveNotificationEvent = "ReceiveNotification"

// NewListener creates a listener; call Connect to open the channel.
func NewListener(cfg ListenerConfig) *Listener {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		cfg:    cfg,
		logger: logger,
		subs:   make(map[*Subscription]Handler),
	}
}

// Connect dials the notification endpoint and starts the read loop. A
// listener that was closed can connect again; each cycle gets a fresh
// connection and read loop.
func (l *Listener) Connect(ctx context.Context) error {
	l.mu.Lock()
	if l.conn != nil {
		l.mu.Unlock()
		return fmt.Errorf("listener already connected")
	}
	l.mu.Unlock()

	endpoint, header, err := l.dialTarget()
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial notification channel: status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial notification channel: %w", err)
	}

	l.mu.Lock()
	if l.conn != nil {
		l.mu.Unlock()
		_ = conn.Close()
		return fmt.Errorf("listener already connected")
	}
	l.closed = false
	l.conn = conn
	l.done = make(chan struct{})
	l.mu.Unlock()

	go l.readLoop(conn, l.done)
	return nil
}

// Subscribe attaches a handler for pushed notifications and returns its
// cancellation handle.
func (l *Listener) Subscribe(h Handler) *Subscription {
	sub := &Subscription{}
	sub.cancel = func() {
		l.mu.Lock()
		delete(l.subs, sub)
		l.mu.Unlock()
	}

	l.mu.Lock()
	l.subs[sub] = h
	l.mu.Unlock()
	return sub
}

// Close tears the connection down and waits for the read loop to exit.
// Safe to call repeatedly; Connect may be called again afterwards.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed || l.conn == nil {
		l.closed = true
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	conn := l.conn
	done := l.done
	l.conn = nil
	l.done = nil
	l.mu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}
	if done != nil {
		<-done
	}
	return nil
}

func (l *Listener) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		var envelope notificationEnvelope
		if err := conn.ReadJSON(&envelope); err != nil {
			l.mu.Lock()
			closed := l.closed
			l.mu.Unlock()
			if !closed {
				l.logger.Warn("notification channel closed", zap.Error(err))
			}
			return
		}
		if envelope.Event != receiveNotificationEvent {
			continue
		}
		for _, handler := range l.snapshotHandlers() {
			handler(envelope.Title, envelope.Message)
		}
	}
}

func (l *Listener) snapshotHandlers() []Handler {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Handler, 0, len(l.subs))
	for _, h := range l.subs {
		out = append(out, h)
	}
	return out
}

func (l *Listener) dialTarget() (string, http.Header, error) {
	parsed, err := url.Parse(strings.TrimRight(l.cfg.BaseURL, "/") + "/ws/notifications")
	if err != nil {
		return "", nil, err
	}
	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	header := http.Header{}
	if l.cfg.TokenInQuery {
		query := parsed.Query()
		query.Set("access_token", l.cfg.Token)
		parsed.RawQuery = query.Encode()
	} else {
		header.Set("Authorization", "Bearer "+l.cfg.Token)
	}
	return parsed.String(), header, nil
}
