package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/notify-service/internal/domain"
)

func TestRegister_UpsertReplacesInPlace(t *testing.T) {
	r := NewInMemoryDeviceRegistry()

	r.Register("alice", domain.DeviceRegistration{DeviceToken: "tok-1", Platform: "ios"})
	r.Register("alice", domain.DeviceRegistration{DeviceToken: "tok-2", Platform: "android"})
	r.Register("alice", domain.DeviceRegistration{DeviceToken: "tok-1", Platform: "ios"})

	devices := r.ListFor("alice")
	require.Len(t, devices, 2)
	assert.Equal(t, "tok-1", devices[0].DeviceToken)
	assert.Equal(t, "tok-2", devices[1].DeviceToken)
}

func TestRegister_SameTokenDifferentPlatform(t *testing.T) {
	r := NewInMemoryDeviceRegistry()

	r.Register("alice", domain.DeviceRegistration{DeviceToken: "tok-1", Platform: "ios"})
	r.Register("alice", domain.DeviceRegistration{DeviceToken: "tok-1", Platform: "android"})

	require.Len(t, r.ListFor("alice"), 2)
}

func TestListFor_UnknownIdentity(t *testing.T) {
	r := NewInMemoryDeviceRegistry()

	devices := r.ListFor("nobody")
	require.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestListFor_ReturnsCopy(t *testing.T) {
	r := NewInMemoryDeviceRegistry()
	r.Register("alice", domain.DeviceRegistration{DeviceToken: "tok-1", Platform: "ios"})

	devices := r.ListFor("alice")
	devices[0].DeviceToken = "mutated"

	assert.Equal(t, "tok-1", r.ListFor("alice")[0].DeviceToken)
}

func TestUnregister(t *testing.T) {
	r := NewInMemoryDeviceRegistry()
	r.Register("alice", domain.DeviceRegistration{DeviceToken: "tok-1", Platform: "ios"})

	assert.True(t, r.Unregister("alice", "tok-1", "ios"))
	assert.False(t, r.Unregister("alice", "tok-1", "ios"))
	assert.False(t, r.Unregister("nobody", "tok-1", "ios"))
	assert.Empty(t, r.ListFor("alice"))
}

func TestRegister_ConcurrentSameIdentity(t *testing.T) {
	r := NewInMemoryDeviceRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			// Same pair every time: must collapse to one entry.
			r.Register("alice", domain.DeviceRegistration{DeviceToken: "shared", Platform: "ios"})
		}(i)
		go func(i int) {
			defer wg.Done()
			r.Register("alice", domain.DeviceRegistration{DeviceToken: fmt.Sprintf("tok-%d", i), Platform: "android"})
		}(i)
	}
	wg.Wait()

	devices := r.ListFor("alice")
	// 1 shared entry + 50 distinct android tokens, no lost updates.
	require.Len(t, devices, 51)

	seen := map[string]int{}
	for _, d := range devices {
		seen[d.DeviceToken+"|"+d.Platform]++
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, "duplicate entry for %s", key)
	}
}

func TestRegister_ConcurrentDistinctIdentities(t *testing.T) {
	r := NewInMemoryDeviceRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			identity := fmt.Sprintf("user-%d", i)
			for j := 0; j < 10; j++ {
				r.Register(identity, domain.DeviceRegistration{DeviceToken: fmt.Sprintf("tok-%d", j), Platform: "ios"})
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		assert.Len(t, r.ListFor(fmt.Sprintf("user-%d", i)), 10)
	}
}
