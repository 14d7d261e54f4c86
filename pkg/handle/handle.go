package handle

import (
	"errors"
	"sync"
)

var (
	ErrInvalidHandle = errors.New("invalid native handle")
)

// Handle is an opaque identifier standing in for one engine object across
// the boundary. Zero is never a valid handle.
type Handle uint64

const Nil Handle = 0

// Kind tags the dynamic type of the object behind a handle.
type Kind int32

const (
	KindNone Kind = iota
	KindPeerConnection
	KindLocalVideoTrack
	KindExternalVideoSource
	KindDataChannel
	KindStatsReport
	KindCaptureSource
)

func (k Kind) String() string {
	switch k {
	case KindPeerConnection:
		return "peer_connection"
	case KindLocalVideoTrack:
		return "local_video_track"
	case KindExternalVideoSource:
		return "external_video_source"
	case KindDataChannel:
		return "data_channel"
	case KindStatsReport:
		return "stats_report"
	case KindCaptureSource:
		return "capture_source"
	default:
		return "none"
	}
}

type entry struct {
	kind Kind
	obj  interface{}
	refs int32
}

// Map hands out borrowed references to shared engine objects. Acquire takes
// a +1 reference on behalf of the caller; the caller must Release exactly
// once, and the last releaser receives the object back for teardown.
type Map struct {
	lock    sync.RWMutex
	next    Handle
	entries map[Handle]*entry
}

func NewMap() *Map {
	return &Map{
		entries: make(map[Handle]*entry),
	}
}

func (m *Map) Acquire(kind Kind, obj interface{}) Handle {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.next++
	h := m.next
	m.entries[h] = &entry{kind: kind, obj: obj, refs: 1}
	return h
}

// Get validates the handle is live and of the expected kind. It does not
// change the reference count.
func (m *Map) Get(h Handle, kind Kind) (interface{}, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	e, ok := m.entries[h]
	if !ok || e.kind != kind {
		return nil, ErrInvalidHandle
	}
	return e.obj, nil
}

func (m *Map) Kind(h Handle) Kind {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if e, ok := m.entries[h]; ok {
		return e.kind
	}
	return KindNone
}

func (m *Map) Retain(h Handle) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	e, ok := m.entries[h]
	if !ok {
		return ErrInvalidHandle
	}
	e.refs++
	return nil
}

// Release drops one reference. When the last reference is dropped the entry
// is removed and the object returned with last == true so the caller can run
// teardown. Releasing an unknown handle fails, it never double-tears-down.
func (m *Map) Release(h Handle) (obj interface{}, last bool, err error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	e, ok := m.entries[h]
	if !ok {
		return nil, false, ErrInvalidHandle
	}
	e.refs--
	if e.refs > 0 {
		return e.obj, false, nil
	}
	delete(m.entries, h)
	return e.obj, true, nil
}

func (m *Map) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return len(m.entries)
}
