package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/notify-service/pkg/util"
)

type fakeHub struct {
	mu        sync.Mutex
	delivered [][3]string
}

func (f *fakeHub) Deliver(identity, title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, [3]string{identity, title, message})
}

func TestSend_DeliversToHub(t *testing.T) {
	h := &fakeHub{}
	d := NewNotificationDispatcher(h, zap.NewNop())

	err := d.Send(context.Background(), "alice", "Hello", "World")
	require.NoError(t, err)

	require.Len(t, h.delivered, 1)
	assert.Equal(t, [3]string{"alice", "Hello", "World"}, h.delivered[0])
}

func TestSend_CancelledContext(t *testing.T) {
	h := &fakeHub{}
	d := NewNotificationDispatcher(h, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Send(ctx, "alice", "Hello", "World")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.delivered)
}

func TestSend_ValidatesFields(t *testing.T) {
	tests := []struct {
		name                   string
		userID, title, message string
	}{
		{"empty user", "", "Hello", "World"},
		{"empty title", "alice", "", "World"},
		{"empty message", "alice", "Hello", ""},
		{"whitespace only", "  ", "Hello", "World"},
		{"all empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeHub{}
			d := NewNotificationDispatcher(h, zap.NewNop())

			err := d.Send(context.Background(), tt.userID, tt.title, tt.message)
			require.Error(t, err)

			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Empty(t, h.delivered)
		})
	}
}
