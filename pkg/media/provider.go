package media

import (
	"sync"
)

// CaptureModule is one opened capture device. Start binds to the identity of
// the calling goroutine's designated thread, so callers must only start
// modules through the gateway.
type CaptureModule interface {
	// Start begins producing frames into sink under the given capability.
	// Starting an already started module must not leak a second session.
	Start(capability CaptureCapability, sink VideoFrameSink) error
	Stop() error
}

// CaptureProvider is the engine collaborator surface for local capture:
// system device listing, per-device capability listing, and opening.
type CaptureProvider interface {
	Devices() ([]DeviceInfo, error)
	Capabilities(deviceID string) ([]CaptureCapability, error)
	Open(deviceID string) (CaptureModule, error)
}

var (
	providerLock sync.RWMutex
	provider     CaptureProvider
)

// SetProvider installs the platform capture provider. Tests install fakes.
func SetProvider(p CaptureProvider) {
	providerLock.Lock()
	provider = p
	providerLock.Unlock()
}

func Provider() (CaptureProvider, error) {
	providerLock.RLock()
	defer providerLock.RUnlock()

	if provider == nil {
		return nil, ErrNoProvider
	}
	return provider, nil
}
