package rtc

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/frostbyte73/core"
	pionstats "github.com/pion/interceptor/pkg/stats"
	"github.com/pion/webrtc/v3"

	"github.com/peerlink/interop/pkg/logger"
	"github.com/peerlink/interop/pkg/media"
	"github.com/peerlink/interop/pkg/telemetry"
	"github.com/peerlink/interop/pkg/utils"
)

const negotiationFrequency = 150 * time.Millisecond

// BitrateSettings holds the requested connection-wide encoder bitrates in
// bits per second. A nil field means no constraint was requested.
type BitrateSettings struct {
	Min   *uint32
	Start *uint32
	Max   *uint32
}

// Connection wraps a single pion PeerConnection together with its local
// tracks, data channels and the user-registered event handlers.
type Connection struct {
	engine      *Engine
	logger      logger.Logger
	id          string
	pc          *webrtc.PeerConnection
	statsGetter pionstats.Getter
	callbacks   callbacks

	lock               sync.Mutex
	localVideo         []*LocalVideoTrack
	localAudio         *LocalAudioTrack
	dataChannels       []*DataChannel
	bitrate            BitrateSettings
	debouncedNegotiate func(func())

	closed core.Fuse
}

func (e *Engine) NewConnection() (*Connection, error) {
	if e.gateway.IsClosed() {
		return nil, ErrEngineClosed
	}

	pc, statsGetter, err := e.newPeerConnection()
	if err != nil {
		return nil, err
	}

	c := &Connection{
		engine:             e,
		id:                 utils.NewGuid(utils.ConnectionPrefix),
		pc:                 pc,
		statsGetter:        statsGetter,
		debouncedNegotiate: debounce.New(negotiationFrequency),
	}
	c.logger = e.logger.WithValues("pcID", c.id)

	pc.OnICECandidate(c.handleICECandidate)
	pc.OnICEConnectionStateChange(c.handleICEConnectionState)
	pc.OnICEGatheringStateChange(c.fireIceGatheringState)
	pc.OnNegotiationNeeded(c.handleNegotiationNeeded)
	pc.OnTrack(c.handleRemoteTrack)
	pc.OnDataChannel(c.handleRemoteDataChannel)

	telemetry.ConnectionsCurrent.Inc()
	c.logger.Debugw("connection created")
	return c, nil
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) IsClosed() bool {
	return c.closed.IsBroken()
}

func (c *Connection) handleICECandidate(candidate *webrtc.ICECandidate) {
	if candidate == nil {
		return
	}
	init := candidate.ToJSON()
	mid := ""
	if init.SDPMid != nil {
		mid = *init.SDPMid
	}
	mLine := 0
	if init.SDPMLineIndex != nil {
		mLine = int(*init.SDPMLineIndex)
	}
	c.fireIceCandidate(init.Candidate, mLine, mid)
}

func (c *Connection) handleICEConnectionState(state webrtc.ICEConnectionState) {
	c.logger.Debugw("ice connection state changed", "state", state.String())
	c.fireIceState(state)
	if state == webrtc.ICEConnectionStateConnected {
		c.fireConnected()
	}
}

func (c *Connection) handleNegotiationNeeded() {
	c.debouncedNegotiate(func() {
		if c.closed.IsBroken() {
			return
		}
		c.fireRenegotiation()
	})
}

func (c *Connection) handleRemoteTrack(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
	kind := trackKindFromCodecType(track.Kind())
	c.logger.Infow("remote track added", "kind", kind.String(), "trackID", track.ID())
	c.fireTrackAdded(kind)
	go c.pumpRemoteTrack(track, kind)
}

// pumpRemoteTrack drains packets until the sender stops the track. Packets
// go to the registered RTP handler for external depacketizing/decoding;
// unobserved packets are dropped.
func (c *Connection) pumpRemoteTrack(track *webrtc.TrackRemote, kind TrackKind) {
	for {
		packet, _, err := track.ReadRTP()
		if err != nil {
			if err != io.EOF && !c.closed.IsBroken() {
				c.logger.Warnw("error reading remote track", err, "trackID", track.ID())
			}
			break
		}
		c.fireRemoteRtpPacket(kind, packet)
	}
	if !c.closed.IsBroken() {
		c.fireTrackRemoved(kind)
	}
}

func (c *Connection) handleRemoteDataChannel(dc *webrtc.DataChannel) {
	channel := newDataChannel(c, dc)
	c.lock.Lock()
	c.dataChannels = append(c.dataChannels, channel)
	c.lock.Unlock()
	c.fireDataChannelAdded(channel)
}

// CreateOffer builds an offer, applies it locally and surfaces it through
// the local description callback once ICE gathering can proceed.
func (c *Connection) CreateOffer() error {
	if c.closed.IsBroken() {
		return ErrConnectionClosed
	}
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return err
	}
	if err = c.pc.SetLocalDescription(offer); err != nil {
		return err
	}
	c.fireLocalDescription(offer.Type.String(), offer.SDP)
	return nil
}

// CreateAnswer builds an answer for the pending remote offer and applies it
// locally. Fails if no remote offer has been applied.
func (c *Connection) CreateAnswer() error {
	if c.closed.IsBroken() {
		return ErrConnectionClosed
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return err
	}
	if err = c.pc.SetLocalDescription(answer); err != nil {
		return err
	}
	c.fireLocalDescription(answer.Type.String(), answer.SDP)
	return nil
}

func (c *Connection) SetRemoteDescription(sdpType, sdp string) error {
	if c.closed.IsBroken() {
		return ErrConnectionClosed
	}
	var t webrtc.SDPType
	switch strings.ToLower(sdpType) {
	case "offer":
		t = webrtc.SDPTypeOffer
	case "answer":
		t = webrtc.SDPTypeAnswer
	case "pranswer":
		t = webrtc.SDPTypePranswer
	case "rollback":
		t = webrtc.SDPTypeRollback
	default:
		return ErrInvalidDescriptionType
	}
	return c.pc.SetRemoteDescription(webrtc.SessionDescription{Type: t, SDP: sdp})
}

func (c *Connection) AddIceCandidate(candidate string, sdpMLineIndex int, sdpMid string) error {
	if c.closed.IsBroken() {
		return ErrConnectionClosed
	}
	mLine := uint16(sdpMLineIndex)
	return c.pc.AddICECandidate(webrtc.ICECandidateInit{
		Candidate:     candidate,
		SDPMid:        &sdpMid,
		SDPMLineIndex: &mLine,
	})
}

// SetBitrate records connection-wide encoder bitrate constraints, in bits
// per second. A negative value clears the corresponding constraint.
func (c *Connection) SetBitrate(minBps, startBps, maxBps int64) error {
	if c.closed.IsBroken() {
		return ErrConnectionClosed
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.bitrate.Min = bitrateValue(minBps)
	c.bitrate.Start = bitrateValue(startBps)
	c.bitrate.Max = bitrateValue(maxBps)
	return nil
}

func bitrateValue(bps int64) *uint32 {
	if bps < 0 {
		return nil
	}
	v := uint32(bps)
	return &v
}

func (c *Connection) Bitrate() BitrateSettings {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.bitrate
}

// DeliverRemoteVideoFrame hands a decoded remote frame to the frame slot
// matching its pixel layout. Decoding happens outside this package; this
// is the re-entry point for the decoder's output.
func (c *Connection) DeliverRemoteVideoFrame(frame *media.VideoFrame) {
	if c.closed.IsBroken() || frame == nil {
		return
	}
	switch frame.Format {
	case media.FormatARGB, media.FormatBGRA:
		c.fireRemoteArgb32Frame(frame)
	default:
		c.fireRemoteI420AFrame(frame)
	}
}

func (c *Connection) DeliverRemoteAudioFrame(frame *media.AudioFrame) {
	if c.closed.IsBroken() {
		return
	}
	c.fireRemoteAudioFrame(frame)
}

// Close tears down tracks and channels, fires the matching removal events,
// then clears every registered handler so no callback outlives the call.
func (c *Connection) Close() {
	c.closed.Once(func() {
		c.lock.Lock()
		videoTracks := c.localVideo
		c.localVideo = nil
		audioTrack := c.localAudio
		c.localAudio = nil
		channels := c.dataChannels
		c.dataChannels = nil
		c.lock.Unlock()

		for _, t := range videoTracks {
			t.detach()
			c.fireTrackRemoved(TrackKindVideo)
		}
		if audioTrack != nil {
			c.fireTrackRemoved(TrackKindAudio)
		}
		for _, ch := range channels {
			ch.close()
			c.fireDataChannelRemoved(ch)
		}

		if err := c.pc.Close(); err != nil {
			c.logger.Warnw("error closing peer connection", err)
		}
		c.callbacks.clear()
		telemetry.ConnectionsCurrent.Dec()
		c.logger.Infow("connection closed")
	})
}
