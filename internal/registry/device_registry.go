// Package registry stores per-identity device registrations for
// out-of-band push delivery.
package registry

import (
	"sync"

	"github.com/spec-kit/notify-service/internal/domain"
)

// DeviceRegistry maps an identity to its registered devices.
type DeviceRegistry interface {
	Register(identity string, registration domain.DeviceRegistration)
	Unregister(identity, deviceToken, platform string) bool
	ListFor(identity string) []domain.DeviceRegistration
}

// identityDevices owns one identity's registration list. The mutex
// serializes writers for the same identity; different identities hold
// different entries and do not contend.
type identityDevices struct {
	mu    sync.Mutex
	items []domain.DeviceRegistration
}

type inMemoryDeviceRegistry struct {
	devices sync.Map // identity -> *identityDevices
}

// NewInMemoryDeviceRegistry creates the registry. State lives for the
// process lifetime only.
func NewInMemoryDeviceRegistry() DeviceRegistry {
	return &inMemoryDeviceRegistry{}
}

// Register upserts a registration keyed on (deviceToken, platform) within
// the identity's set: an existing entry is replaced in place, otherwise the
// registration is appended.
func (r *inMemoryDeviceRegistry) Register(identity string, registration domain.DeviceRegistration) {
	entry := r.entryFor(identity)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	for i, existing := range entry.items {
		if existing.DeviceToken == registration.DeviceToken && existing.Platform == registration.Platform {
			entry.items[i] = registration
			return
		}
	}
	entry.items = append(entry.items, registration)
}

// Unregister removes a registration; it reports whether one was present.
func (r *inMemoryDeviceRegistry) Unregister(identity, deviceToken, platform string) bool {
	val, ok := r.devices.Load(identity)
	if !ok {
		return false
	}
	entry := val.(*identityDevices)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	for i, existing := range entry.items {
		if existing.DeviceToken == deviceToken && existing.Platform == platform {
			entry.items = append(entry.items[:i], entry.items[i+1:]...)
			return true
		}
	}
	return false
}

// ListFor returns a copy of the identity's registrations in insertion
// order; unknown identities yield an empty slice, never an error.
func (r *inMemoryDeviceRegistry) ListFor(identity string) []domain.DeviceRegistration {
	val, ok := r.devices.Load(identity)
	if !ok {
		return []domain.DeviceRegistration{}
	}
	entry := val.(*identityDevices)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	out := make([]domain.DeviceRegistration, len(entry.items))
	copy(out, entry.items)
	return out
}

func (r *inMemoryDeviceRegistry) entryFor(identity string) *identityDevices {
	if val, ok := r.devices.Load(identity); ok {
		return val.(*identityDevices)
	}
	val, _ := r.devices.LoadOrStore(identity, &identityDevices{})
	return val.(*identityDevices)
}
