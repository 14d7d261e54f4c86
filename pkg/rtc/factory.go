package rtc

import (
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/pion/interceptor"
	pionstats "github.com/pion/interceptor/pkg/stats"
	"github.com/pion/webrtc/v3"

	"github.com/peerlink/interop/pkg/config"
	"github.com/peerlink/interop/pkg/gateway"
	"github.com/peerlink/interop/pkg/logger"
)

// Engine owns the pion API instance, the designated capture thread and the
// async job pool shared by every connection it creates.
type Engine struct {
	config  *config.Config
	logger  logger.Logger
	api     *webrtc.API
	gateway *gateway.Gateway
	workers *workerpool.WorkerPool

	// statsLock serializes peer connection creation so the getter the
	// stats interceptor hands out can be matched to the connection being
	// built.
	statsLock     sync.Mutex
	pendingGetter pionstats.Getter
}

func NewEngine(conf *config.Config) (*Engine, error) {
	me := &webrtc.MediaEngine{}
	if err := me.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}

	ir := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(me, ir); err != nil {
		return nil, err
	}
	statsFactory, err := pionstats.NewInterceptor()
	if err != nil {
		return nil, err
	}
	ir.Add(statsFactory)

	se := webrtc.SettingEngine{
		LoggerFactory: logger.LoggerFactory(),
	}

	e := &Engine{
		config:  conf,
		logger:  logger.GetLogger().WithName("engine"),
		gateway: gateway.New("capture", conf.Capture.QueueSize),
		workers: workerpool.New(conf.RTC.PoolSize),
	}
	statsFactory.OnNewPeerConnection(func(_ string, getter pionstats.Getter) {
		e.pendingGetter = getter
	})
	e.api = webrtc.NewAPI(
		webrtc.WithMediaEngine(me),
		webrtc.WithSettingEngine(se),
		webrtc.WithInterceptorRegistry(ir),
	)
	return e, nil
}

func (e *Engine) Gateway() *gateway.Gateway {
	return e.gateway
}

// newPeerConnection builds a pion connection and returns the stream stats
// getter the interceptor delivered while the connection was constructed.
func (e *Engine) newPeerConnection() (*webrtc.PeerConnection, pionstats.Getter, error) {
	e.statsLock.Lock()
	defer e.statsLock.Unlock()

	e.pendingGetter = nil
	pc, err := e.api.NewPeerConnection(e.webrtcConfiguration())
	if err != nil {
		return nil, nil, err
	}
	return pc, e.pendingGetter, nil
}

func (e *Engine) webrtcConfiguration() webrtc.Configuration {
	conf := webrtc.Configuration{}
	for _, s := range e.config.RTC.ICEServers {
		server := webrtc.ICEServer{
			URLs:     s.URLs,
			Username: s.Username,
		}
		if s.Credential != "" {
			server.Credential = s.Credential
		}
		conf.ICEServers = append(conf.ICEServers, server)
	}
	return conf
}

// Close stops the designated thread and waits for queued jobs to drain.
// Connections must be closed by their owners first.
func (e *Engine) Close() {
	e.gateway.Close()
	e.workers.StopWait()
	e.logger.Infow("engine closed")
}
