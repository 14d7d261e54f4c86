package interop

import (
	"sync"

	"github.com/peerlink/interop/pkg/config"
	"github.com/peerlink/interop/pkg/handle"
	"github.com/peerlink/interop/pkg/logger"
	"github.com/peerlink/interop/pkg/media"
	"github.com/peerlink/interop/pkg/rtc"
)

// Handle is the opaque object identifier exchanged across the boundary.
type Handle = handle.Handle

// NilHandle is never valid.
const NilHandle = handle.Nil

// library is the process-wide boundary state. Entry points called before
// Initialize fail with InvalidOperation, matching the "factory not yet
// available" contract.
type library struct {
	lock    sync.RWMutex
	engine  *rtc.Engine
	handles *handle.Map
	// sources maps each live capture session to its boundary handle, so
	// reopening a device adds a reference to the existing handle instead
	// of minting an alias with its own refcount.
	sources map[*media.CaptureSource]Handle
}

var lib library

// Initialize builds the engine from a YAML configuration string. An empty
// string selects defaults. Calling it twice without Shutdown in between is
// an InvalidOperation.
func Initialize(confString string) Result {
	return guard(func() error {
		conf, err := config.NewConfig(confString)
		if err != nil {
			return err
		}
		if conf.Logging.JSON {
			logger.InitProduction(conf.Logging.Level)
		} else {
			logger.InitDevelopment(conf.Logging.Level)
		}

		engine, err := rtc.NewEngine(conf)
		if err != nil {
			return err
		}

		lib.lock.Lock()
		defer lib.lock.Unlock()
		if lib.engine != nil {
			engine.Close()
			return ErrAlreadyInitialized
		}
		lib.engine = engine
		lib.handles = handle.NewMap()
		lib.sources = make(map[*media.CaptureSource]Handle)
		return nil
	})
}

// Shutdown tears the engine down. Live handles are invalidated; using them
// afterwards yields InvalidNativeHandle.
func Shutdown() {
	lib.lock.Lock()
	engine := lib.engine
	lib.engine = nil
	lib.handles = nil
	lib.sources = nil
	lib.lock.Unlock()

	if engine != nil {
		engine.Close()
	}
}

// sourceHandle returns the boundary handle for source, retaining the
// existing one when the session is already exposed.
func (l *library) sourceHandle(handles *handle.Map, source *media.CaptureSource) Handle {
	l.lock.Lock()
	defer l.lock.Unlock()

	if h, ok := l.sources[source]; ok {
		if err := handles.Retain(h); err == nil {
			return h
		}
	}
	h := handles.Acquire(handle.KindCaptureSource, source)
	if l.sources != nil {
		l.sources[source] = h
	}
	return h
}

func (l *library) dropSource(source *media.CaptureSource) {
	l.lock.Lock()
	delete(l.sources, source)
	l.lock.Unlock()
}

func getLibrary() (*rtc.Engine, *handle.Map, error) {
	lib.lock.RLock()
	defer lib.lock.RUnlock()
	if lib.engine == nil {
		return nil, nil, ErrNotInitialized
	}
	return lib.engine, lib.handles, nil
}

func getConnection(h Handle) (*rtc.Connection, *handle.Map, error) {
	_, handles, err := getLibrary()
	if err != nil {
		return nil, nil, err
	}
	obj, err := handles.Get(h, handle.KindPeerConnection)
	if err != nil {
		return nil, nil, err
	}
	return obj.(*rtc.Connection), handles, nil
}

func getDataChannel(h Handle) (*rtc.DataChannel, error) {
	_, handles, err := getLibrary()
	if err != nil {
		return nil, err
	}
	obj, err := handles.Get(h, handle.KindDataChannel)
	if err != nil {
		return nil, err
	}
	return obj.(*rtc.DataChannel), nil
}
