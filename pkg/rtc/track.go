package rtc

import (
	"sync"

	"github.com/pion/webrtc/v3"
	pionmedia "github.com/pion/webrtc/v3/pkg/media"
	"go.uber.org/atomic"

	"github.com/peerlink/interop/pkg/media"
	"github.com/peerlink/interop/pkg/utils"
)

const (
	defaultVideoTrackName = "external_track"
	localAudioTrackLabel  = "local_audio"
)

type TrackKind int

const (
	TrackKindAudio TrackKind = iota
	TrackKindVideo
)

func (k TrackKind) String() string {
	switch k {
	case TrackKindAudio:
		return "audio"
	case TrackKindVideo:
		return "video"
	default:
		return "unknown"
	}
}

func trackKindFromCodecType(t webrtc.RTPCodecType) TrackKind {
	if t == webrtc.RTPCodecTypeAudio {
		return TrackKindAudio
	}
	return TrackKindVideo
}

// LocalVideoTrack binds a video source to an outbound sender. It subscribes
// to the source as a frame sink; encoded samples are written by the
// application through WriteSample, raw frames are observable through the
// frame handler.
type LocalVideoTrack struct {
	id      string
	name    string
	source  media.VideoSource
	track   *webrtc.TrackLocalStaticSample
	sender  *webrtc.RTPSender
	enabled *atomic.Bool

	frameLock sync.RWMutex
	onFrame   VideoFrameHandler
}

func (t *LocalVideoTrack) ID() string {
	return t.id
}

func (t *LocalVideoTrack) Name() string {
	return t.name
}

func (t *LocalVideoTrack) Source() media.VideoSource {
	return t.source
}

// Enabled reports whether the track forwards media. Disabled tracks drop
// frames and samples instead of muting at the encoder.
func (t *LocalVideoTrack) Enabled() bool {
	return t.enabled.Load()
}

func (t *LocalVideoTrack) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

func (t *LocalVideoTrack) OnVideoFrame(f VideoFrameHandler) {
	t.frameLock.Lock()
	t.onFrame = f
	t.frameLock.Unlock()
}

// OnFrame implements media.VideoFrameSink.
func (t *LocalVideoTrack) OnFrame(frame *media.VideoFrame) {
	if !t.enabled.Load() {
		return
	}
	t.frameLock.RLock()
	f := t.onFrame
	t.frameLock.RUnlock()
	if f != nil {
		f(frame)
	}
}

// WriteSample sends one encoded sample on the track. Samples written while
// the track is disabled are dropped without error.
func (t *LocalVideoTrack) WriteSample(sample pionmedia.Sample) error {
	if !t.enabled.Load() {
		return nil
	}
	return t.track.WriteSample(sample)
}

func (t *LocalVideoTrack) detach() {
	if t.source != nil {
		t.source.RemoveSink(t)
	}
}

// AddLocalVideoTrack attaches source to the connection as a new sendonly
// video track. An empty name selects the default external track name.
func (c *Connection) AddLocalVideoTrack(name string, source media.VideoSource) (*LocalVideoTrack, error) {
	if c.closed.IsBroken() {
		return nil, ErrConnectionClosed
	}
	if name == "" {
		name = defaultVideoTrackName
	}

	id := utils.NewGuid(utils.TrackPrefix)
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		id,
		name,
	)
	if err != nil {
		return nil, err
	}
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return nil, err
	}

	t := &LocalVideoTrack{
		id:      id,
		name:    name,
		source:  source,
		track:   track,
		sender:  sender,
		enabled: atomic.NewBool(true),
	}
	if source != nil {
		source.AddSink(t)
	}

	c.lock.Lock()
	c.localVideo = append(c.localVideo, t)
	c.lock.Unlock()

	c.logger.Infow("local video track added", "trackID", id, "name", name)
	c.fireTrackAdded(TrackKindVideo)
	return t, nil
}

func (c *Connection) RemoveLocalVideoTrack(t *LocalVideoTrack) error {
	if c.closed.IsBroken() {
		return ErrConnectionClosed
	}

	c.lock.Lock()
	idx := -1
	for i, cur := range c.localVideo {
		if cur == t {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.lock.Unlock()
		return ErrTrackNotFound
	}
	c.localVideo = append(c.localVideo[:idx], c.localVideo[idx+1:]...)
	c.lock.Unlock()

	t.detach()
	if err := c.pc.RemoveTrack(t.sender); err != nil {
		return err
	}
	c.fireTrackRemoved(TrackKindVideo)
	return nil
}

// RemoveLocalVideoTracksFromSource removes every local video track fed by
// source. Tracks on other sources are untouched.
func (c *Connection) RemoveLocalVideoTracksFromSource(source media.VideoSource) error {
	if c.closed.IsBroken() {
		return ErrConnectionClosed
	}

	c.lock.Lock()
	var matched []*LocalVideoTrack
	var kept []*LocalVideoTrack
	for _, t := range c.localVideo {
		if t.source == source {
			matched = append(matched, t)
		} else {
			kept = append(kept, t)
		}
	}
	c.localVideo = kept
	c.lock.Unlock()

	for _, t := range matched {
		t.detach()
		if err := c.pc.RemoveTrack(t.sender); err != nil {
			return err
		}
		c.fireTrackRemoved(TrackKindVideo)
	}
	return nil
}

// LocalAudioTrack is the connection's single outbound audio track.
type LocalAudioTrack struct {
	id      string
	track   *webrtc.TrackLocalStaticSample
	sender  *webrtc.RTPSender
	enabled *atomic.Bool
}

func (t *LocalAudioTrack) ID() string {
	return t.id
}

func (t *LocalAudioTrack) Enabled() bool {
	return t.enabled.Load()
}

func (t *LocalAudioTrack) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

func (t *LocalAudioTrack) WriteSample(sample pionmedia.Sample) error {
	if !t.enabled.Load() {
		return nil
	}
	return t.track.WriteSample(sample)
}

// AddLocalAudioTrack attaches the connection's audio track. At most one
// audio track exists per connection.
func (c *Connection) AddLocalAudioTrack() (*LocalAudioTrack, error) {
	if c.closed.IsBroken() {
		return nil, ErrConnectionClosed
	}

	c.lock.Lock()
	if c.localAudio != nil {
		existing := c.localAudio
		c.lock.Unlock()
		return existing, nil
	}
	c.lock.Unlock()

	id := utils.NewGuid(utils.TrackPrefix)
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		id,
		localAudioTrackLabel,
	)
	if err != nil {
		return nil, err
	}
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return nil, err
	}

	t := &LocalAudioTrack{
		id:      id,
		track:   track,
		sender:  sender,
		enabled: atomic.NewBool(true),
	}

	c.lock.Lock()
	c.localAudio = t
	c.lock.Unlock()

	c.logger.Infow("local audio track added", "trackID", id)
	c.fireTrackAdded(TrackKindAudio)
	return t, nil
}

func (c *Connection) RemoveLocalAudioTrack() error {
	if c.closed.IsBroken() {
		return ErrConnectionClosed
	}

	c.lock.Lock()
	t := c.localAudio
	c.localAudio = nil
	c.lock.Unlock()
	if t == nil {
		return ErrTrackNotFound
	}

	if err := c.pc.RemoveTrack(t.sender); err != nil {
		return err
	}
	c.fireTrackRemoved(TrackKindAudio)
	return nil
}

func (c *Connection) LocalAudioTrack() *LocalAudioTrack {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.localAudio
}
