package hub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/notify-service/internal/domain"
	"github.com/spec-kit/notify-service/internal/observability"
)

// fakeTransport records written payloads and can be told to fail sends.
type fakeTransport struct {
	mu       sync.Mutex
	written  []domain.Notification
	failSend bool
	closed   bool
}

func (f *fakeTransport) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return errors.New("broken pipe")
	}
	f.written = append(f.written, v.(domain.Notification))
	return nil
}

func (f *fakeTransport) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) notifications() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Notification, len(f.written))
	copy(out, f.written)
	return out
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestHub() *Hub {
	return NewHub(zap.NewNop(), observability.NewMetrics())
}

func TestDeliver_FansOutToAllConnections(t *testing.T) {
	h := newTestHub()
	t1, t2 := &fakeTransport{}, &fakeTransport{}
	c1 := NewConnection("alice", t1, time.Second)
	c2 := NewConnection("alice", t2, time.Second)
	h.Add(c1)
	h.Add(c2)

	require.Equal(t, 2, h.ConnectionCount("alice"))

	h.Deliver("alice", "Hello", "World")

	require.Len(t, t1.notifications(), 1)
	require.Len(t, t2.notifications(), 1)
	assert.Equal(t, domain.EventReceiveNotification, t1.notifications()[0].Event)
	assert.Equal(t, "Hello", t1.notifications()[0].Title)
	assert.Equal(t, "World", t1.notifications()[0].Message)
}

func TestDeliver_SkipsRemovedConnection(t *testing.T) {
	h := newTestHub()
	t1, t2 := &fakeTransport{}, &fakeTransport{}
	c1 := NewConnection("alice", t1, time.Second)
	c2 := NewConnection("alice", t2, time.Second)
	h.Add(c1)
	h.Add(c2)

	h.Remove(c1)
	h.Deliver("alice", "Hello", "World")

	assert.Empty(t, t1.notifications())
	require.Len(t, t2.notifications(), 1)
	assert.Equal(t, 1, h.ConnectionCount("alice"))
}

func TestDeliver_NoConnectionsIsNoOp(t *testing.T) {
	h := newTestHub()

	assert.NotPanics(t, func() {
		h.Deliver("nobody", "Hello", "World")
	})
}

func TestDeliver_IsolatesSendFailure(t *testing.T) {
	h := newTestHub()
	broken := &fakeTransport{failSend: true}
	healthy := &fakeTransport{}
	c1 := NewConnection("alice", broken, time.Second)
	c2 := NewConnection("alice", healthy, time.Second)
	h.Add(c1)
	h.Add(c2)

	h.Deliver("alice", "Hello", "World")

	// The failed connection is closed and removed; the healthy one got the message.
	require.Len(t, healthy.notifications(), 1)
	assert.True(t, broken.isClosed())
	assert.Equal(t, 1, h.ConnectionCount("alice"))

	// Further deliveries only reach the survivor.
	h.Deliver("alice", "Again", "Still here")
	assert.Len(t, healthy.notifications(), 2)
}

func TestDeliver_IsolatedPerIdentity(t *testing.T) {
	h := newTestHub()
	ta, tb := &fakeTransport{}, &fakeTransport{}
	h.Add(NewConnection("alice", ta, time.Second))
	h.Add(NewConnection("bob", tb, time.Second))

	h.Deliver("alice", "Hello", "Alice")

	require.Len(t, ta.notifications(), 1)
	assert.Empty(t, tb.notifications())
}

func TestRemove_Idempotent(t *testing.T) {
	h := newTestHub()
	ft := &fakeTransport{}
	c := NewConnection("alice", ft, time.Second)
	h.Add(c)

	h.Remove(c)
	h.Remove(c)

	assert.Equal(t, 0, h.ConnectionCount("alice"))
}

func TestCloseAll(t *testing.T) {
	h := newTestHub()
	t1, t2 := &fakeTransport{}, &fakeTransport{}
	h.Add(NewConnection("alice", t1, time.Second))
	h.Add(NewConnection("bob", t2, time.Second))

	h.CloseAll()

	assert.True(t, t1.isClosed())
	assert.True(t, t2.isClosed())
	assert.Equal(t, 0, h.ConnectionCount("alice"))
	assert.Equal(t, 0, h.ConnectionCount("bob"))
}

func TestConcurrentAddRemoveDeliver(t *testing.T) {
	h := newTestHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewConnection("alice", &fakeTransport{}, time.Second)
			h.Add(c)
			h.Deliver("alice", "T", "M")
			h.Remove(c)
			c.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, h.ConnectionCount("alice"))
}
