package media

import (
	"context"
	"sync"

	"github.com/frostbyte73/core"

	"github.com/peerlink/interop/pkg/gateway"
	"github.com/peerlink/interop/pkg/logger"
	"github.com/peerlink/interop/pkg/telemetry"
	"github.com/peerlink/interop/pkg/utils"
)

// Broadcaster fans frames out to zero or more sinks. Sinks added while the
// source is live observe every frame produced after the add; removing a sink
// stops delivery to it without affecting others.
type Broadcaster struct {
	lock  sync.RWMutex
	sinks map[VideoFrameSink]struct{}
}

func (b *Broadcaster) AddSink(sink VideoFrameSink) {
	b.lock.Lock()
	if b.sinks == nil {
		b.sinks = make(map[VideoFrameSink]struct{})
	}
	b.sinks[sink] = struct{}{}
	b.lock.Unlock()
}

func (b *Broadcaster) RemoveSink(sink VideoFrameSink) {
	b.lock.Lock()
	delete(b.sinks, sink)
	b.lock.Unlock()
}

func (b *Broadcaster) OnFrame(frame *VideoFrame) {
	b.lock.RLock()
	sinks := make([]VideoFrameSink, 0, len(b.sinks))
	for s := range b.sinks {
		sinks = append(sinks, s)
	}
	b.lock.RUnlock()

	for _, s := range sinks {
		s.OnFrame(frame)
	}
	telemetry.FramesBroadcast.Inc()
}

func (b *Broadcaster) NumSinks() int {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return len(b.sinks)
}

// VideoSource is the shared surface of builtin capture and external sources.
type VideoSource interface {
	ID() string
	AddSink(sink VideoFrameSink)
	RemoveSink(sink VideoFrameSink)
	Close(ctx context.Context) error
}

// CaptureSource wraps an opened capture module. Sources start live: the
// module is already capturing by the time the source is handed out.
type CaptureSource struct {
	Broadcaster

	id         string
	deviceID   string
	capability CaptureCapability
	module     CaptureModule
	gateway    *gateway.Gateway
	logger     logger.Logger
	closed     core.Fuse
}

func (s *CaptureSource) ID() string {
	return s.id
}

func (s *CaptureSource) DeviceID() string {
	return s.deviceID
}

func (s *CaptureSource) Capability() CaptureCapability {
	return s.capability
}

// Close stops capture on the designated thread. Idempotent.
func (s *CaptureSource) Close(ctx context.Context) error {
	var err error
	s.closed.Once(func() {
		dropSession(s)
		err = s.gateway.Run(ctx, func(ctx context.Context) error {
			return s.module.Stop()
		})
		telemetry.CaptureSourcesActive.Dec()
		s.logger.Infow("capture source closed", "device", s.deviceID)
	})
	return err
}

// ExternalSource produces frames pushed by the application instead of a
// capture device.
type ExternalSource struct {
	Broadcaster

	id     string
	closed core.Fuse
}

func NewExternalSource() *ExternalSource {
	return &ExternalSource{
		id: utils.NewGuid(utils.SourcePrefix),
	}
}

func (s *ExternalSource) ID() string {
	return s.id
}

func (s *ExternalSource) PushFrame(frame *VideoFrame) error {
	if s.closed.IsBroken() {
		return ErrSourceClosed
	}
	if frame == nil || len(frame.Planes) == 0 {
		return ErrInvalidFrame
	}
	s.OnFrame(frame)
	return nil
}

func (s *ExternalSource) Close(ctx context.Context) error {
	s.closed.Break()
	return nil
}
