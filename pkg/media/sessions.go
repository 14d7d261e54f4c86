package media

import (
	"sync"
)

// one live capture session per device
var (
	sessionsLock sync.Mutex
	sessions     = make(map[string]*CaptureSource)
)

func lookupSession(deviceID string) *CaptureSource {
	sessionsLock.Lock()
	defer sessionsLock.Unlock()

	return sessions[deviceID]
}

func registerSession(s *CaptureSource) {
	sessionsLock.Lock()
	sessions[s.deviceID] = s
	sessionsLock.Unlock()
}

func dropSession(s *CaptureSource) {
	sessionsLock.Lock()
	if sessions[s.deviceID] == s {
		delete(sessions, s.deviceID)
	}
	sessionsLock.Unlock()
}
