package rtc

import (
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"

	"github.com/peerlink/interop/pkg/media"
)

type ConnectedHandler func()

type LocalDescriptionHandler func(sdpType string, sdp string)

type IceCandidateHandler func(candidate string, sdpMLineIndex int, sdpMid string)

type IceStateHandler func(state webrtc.ICEConnectionState)

type IceGatheringStateHandler func(state webrtc.ICEGathererState)

type RenegotiationHandler func()

type TrackAddedHandler func(kind TrackKind)

type TrackRemovedHandler func(kind TrackKind)

type DataChannelHandler func(dc *DataChannel)

type VideoFrameHandler func(frame *media.VideoFrame)

// RtpPacketHandler receives each packet read off a remote track, before any
// depacketizing. The packet is only valid for the duration of the call.
type RtpPacketHandler func(kind TrackKind, packet *rtp.Packet)

type AudioFrameHandler func(frame *media.AudioFrame)

// callbacks is the per-connection dispatch table. Registering nil clears a
// slot, the last writer wins, and dispatch never holds the lock while the
// handler runs.
type callbacks struct {
	lock sync.RWMutex

	onConnected          ConnectedHandler
	onLocalDescription   LocalDescriptionHandler
	onIceCandidate       IceCandidateHandler
	onIceState           IceStateHandler
	onIceGatheringState  IceGatheringStateHandler
	onRenegotiation      RenegotiationHandler
	onTrackAdded         TrackAddedHandler
	onTrackRemoved       TrackRemovedHandler
	onDataChannelAdded   DataChannelHandler
	onDataChannelRemoved DataChannelHandler
	onRemoteRtpPacket    RtpPacketHandler
	onRemoteI420AFrame   VideoFrameHandler
	onRemoteArgb32Frame  VideoFrameHandler
	onRemoteAudioFrame   AudioFrameHandler
}

func (c *callbacks) clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.onConnected = nil
	c.onLocalDescription = nil
	c.onIceCandidate = nil
	c.onIceState = nil
	c.onIceGatheringState = nil
	c.onRenegotiation = nil
	c.onTrackAdded = nil
	c.onTrackRemoved = nil
	c.onDataChannelAdded = nil
	c.onDataChannelRemoved = nil
	c.onRemoteRtpPacket = nil
	c.onRemoteI420AFrame = nil
	c.onRemoteArgb32Frame = nil
	c.onRemoteAudioFrame = nil
}

func (c *Connection) OnConnected(f ConnectedHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onConnected = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnLocalDescription(f LocalDescriptionHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onLocalDescription = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnIceCandidate(f IceCandidateHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onIceCandidate = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnIceState(f IceStateHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onIceState = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnIceGatheringState(f IceGatheringStateHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onIceGatheringState = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnRenegotiationNeeded(f RenegotiationHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onRenegotiation = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnTrackAdded(f TrackAddedHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onTrackAdded = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnTrackRemoved(f TrackRemovedHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onTrackRemoved = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnDataChannelAdded(f DataChannelHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onDataChannelAdded = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnDataChannelRemoved(f DataChannelHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onDataChannelRemoved = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnRemoteRtpPacket(f RtpPacketHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onRemoteRtpPacket = f
	c.callbacks.lock.Unlock()
}

// The two remote video frame slots select independent delivery formats;
// either or both may be registered.

func (c *Connection) OnRemoteI420AFrame(f VideoFrameHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onRemoteI420AFrame = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnRemoteArgb32Frame(f VideoFrameHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onRemoteArgb32Frame = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) OnRemoteAudioFrame(f AudioFrameHandler) {
	c.callbacks.lock.Lock()
	c.callbacks.onRemoteAudioFrame = f
	c.callbacks.lock.Unlock()
}

func (c *Connection) fireConnected() {
	c.callbacks.lock.RLock()
	f := c.callbacks.onConnected
	c.callbacks.lock.RUnlock()
	if f != nil {
		f()
	}
}

func (c *Connection) fireLocalDescription(sdpType, sdp string) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onLocalDescription
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(sdpType, sdp)
	}
}

func (c *Connection) fireIceCandidate(candidate string, sdpMLineIndex int, sdpMid string) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onIceCandidate
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(candidate, sdpMLineIndex, sdpMid)
	}
}

func (c *Connection) fireIceState(state webrtc.ICEConnectionState) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onIceState
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(state)
	}
}

func (c *Connection) fireIceGatheringState(state webrtc.ICEGathererState) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onIceGatheringState
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(state)
	}
}

func (c *Connection) fireRenegotiation() {
	c.callbacks.lock.RLock()
	f := c.callbacks.onRenegotiation
	c.callbacks.lock.RUnlock()
	if f != nil {
		f()
	}
}

func (c *Connection) fireTrackAdded(kind TrackKind) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onTrackAdded
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(kind)
	}
}

func (c *Connection) fireTrackRemoved(kind TrackKind) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onTrackRemoved
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(kind)
	}
}

func (c *Connection) fireDataChannelAdded(dc *DataChannel) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onDataChannelAdded
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(dc)
	}
}

func (c *Connection) fireDataChannelRemoved(dc *DataChannel) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onDataChannelRemoved
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(dc)
	}
}

func (c *Connection) fireRemoteRtpPacket(kind TrackKind, packet *rtp.Packet) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onRemoteRtpPacket
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(kind, packet)
	}
}

func (c *Connection) fireRemoteI420AFrame(frame *media.VideoFrame) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onRemoteI420AFrame
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(frame)
	}
}

func (c *Connection) fireRemoteArgb32Frame(frame *media.VideoFrame) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onRemoteArgb32Frame
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(frame)
	}
}

func (c *Connection) fireRemoteAudioFrame(frame *media.AudioFrame) {
	c.callbacks.lock.RLock()
	f := c.callbacks.onRemoteAudioFrame
	c.callbacks.lock.RUnlock()
	if f != nil {
		f(frame)
	}
}
