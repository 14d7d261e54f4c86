package interop

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/peerlink/interop/pkg/media"
	"github.com/peerlink/interop/pkg/sdputil"
	"github.com/peerlink/interop/pkg/stats"
)

type fakeModule struct {
	stopped atomic.Bool
}

func (m *fakeModule) Start(capability media.CaptureCapability, sink media.VideoFrameSink) error {
	return nil
}

func (m *fakeModule) Stop() error {
	m.stopped.Store(true)
	return nil
}

type fakeProvider struct {
	devices []media.DeviceInfo
	caps    map[string][]media.CaptureCapability
	opened  []*fakeModule
}

func (p *fakeProvider) Devices() ([]media.DeviceInfo, error) {
	return p.devices, nil
}

func (p *fakeProvider) Capabilities(deviceID string) ([]media.CaptureCapability, error) {
	return p.caps[deviceID], nil
}

func (p *fakeProvider) Open(deviceID string) (media.CaptureModule, error) {
	m := &fakeModule{}
	p.opened = append(p.opened, m)
	return m, nil
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		devices: []media.DeviceInfo{
			{ID: "cam0", Name: "Integrated Camera"},
			{ID: "cam1", Name: "USB Camera"},
		},
		caps: map[string][]media.CaptureCapability{
			"cam0": {
				{Width: 640, Height: 480, MaxFramerate: 30, Format: media.FormatNV12},
				{Width: 1280, Height: 720, MaxFramerate: 30, Format: media.FormatNV12},
			},
			"cam1": {
				{Width: 640, Height: 480, MaxFramerate: 15, Format: media.FormatI420},
			},
		},
	}
}

func initLibrary(t *testing.T) *fakeProvider {
	require.Equal(t, ResultSuccess, Initialize(""))
	provider := newFakeProvider()
	media.SetProvider(provider)
	t.Cleanup(func() {
		media.SetProvider(nil)
		Shutdown()
	})
	return provider
}

func TestEntryPointsBeforeInitialize(t *testing.T) {
	// start from a torn-down library regardless of which tests ran first
	Shutdown()

	_, res := PeerConnectionCreate()
	require.Equal(t, ResultInvalidOperation, res)
	require.Equal(t, ResultInvalidOperation, PeerConnectionClose(1))
	_, res = ExternalVideoSourceCreate()
	require.Equal(t, ResultInvalidOperation, res)
}

func TestInitializeTwice(t *testing.T) {
	initLibrary(t)
	require.Equal(t, ResultInvalidOperation, Initialize(""))
}

func TestPeerConnectionLifecycle(t *testing.T) {
	initLibrary(t)

	h, res := PeerConnectionCreate()
	require.Equal(t, ResultSuccess, res)
	require.NotEqual(t, NilHandle, h)

	require.Equal(t, ResultSuccess, PeerConnectionClose(h))
	require.Equal(t, ResultInvalidNativeHandle, PeerConnectionClose(h))
	require.Equal(t, ResultInvalidNativeHandle, PeerConnectionCreateOffer(h))
}

func TestHandleKindMismatch(t *testing.T) {
	initLibrary(t)

	src, res := ExternalVideoSourceCreate()
	require.Equal(t, ResultSuccess, res)
	t.Cleanup(func() { ExternalVideoSourceRelease(src) })

	// a source handle is not a connection handle
	require.Equal(t, ResultInvalidNativeHandle, PeerConnectionCreateOffer(src))
	require.Equal(t, ResultInvalidNativeHandle, PeerConnectionClose(src))
}

func TestEnumerateDevices(t *testing.T) {
	initLibrary(t)

	var ids []string
	done := false
	res := EnumerateVideoCaptureDevices(
		func(id, name string) { ids = append(ids, id) },
		func() { done = true },
	)
	require.Equal(t, ResultSuccess, res)
	require.Equal(t, []string{"cam0", "cam1"}, ids)
	require.True(t, done)

	require.Equal(t, ResultInvalidParameter, EnumerateVideoCaptureDevices(nil, nil))
}

func TestEnumerateDevicesWithoutProvider(t *testing.T) {
	initLibrary(t)
	media.SetProvider(nil)

	res := EnumerateVideoCaptureDevices(func(id, name string) {}, nil)
	require.Equal(t, ResultInvalidOperation, res)
}

func TestEnumerateFormats(t *testing.T) {
	initLibrary(t)

	type format struct {
		width, height uint32
		fourcc        uint32
	}
	var formats []format
	done := false
	res := EnumerateVideoCaptureFormats("cam0",
		func(width, height uint32, framerate float64, fourcc uint32) {
			formats = append(formats, format{width, height, fourcc})
		},
		func() { done = true },
	)
	require.Equal(t, ResultSuccess, res)
	require.Len(t, formats, 2)
	require.Equal(t, uint32(media.MakeFourCC('N', 'V', '1', '2')), formats[0].fourcc)
	require.True(t, done)

	// unknown device reports zero formats, still completes
	formats = nil
	done = false
	res = EnumerateVideoCaptureFormats("nope",
		func(width, height uint32, framerate float64, fourcc uint32) {
			formats = append(formats, format{width, height, fourcc})
		},
		func() { done = true },
	)
	require.Equal(t, ResultSuccess, res)
	require.Empty(t, formats)
	require.True(t, done)
}

func TestOpenVideoCaptureDevice(t *testing.T) {
	initLibrary(t)

	_, res := OpenVideoCaptureDevice(media.VideoDeviceConfig{DeviceID: "nope"})
	require.Equal(t, ResultNotFound, res)

	h, res := OpenVideoCaptureDevice(media.VideoDeviceConfig{DeviceID: "cam1"})
	require.Equal(t, ResultSuccess, res)
	require.NotEqual(t, NilHandle, h)

	require.Equal(t, ResultSuccess, VideoCaptureSourceRelease(h))
	require.Equal(t, ResultInvalidNativeHandle, VideoCaptureSourceRelease(h))
}

func TestOpenVideoCaptureDeviceSharesSession(t *testing.T) {
	provider := initLibrary(t)

	h1, res := OpenVideoCaptureDevice(media.VideoDeviceConfig{DeviceID: "cam0"})
	require.Equal(t, ResultSuccess, res)
	h2, res := OpenVideoCaptureDevice(media.VideoDeviceConfig{DeviceID: "cam0"})
	require.Equal(t, ResultSuccess, res)

	// the second open joins the live session instead of aliasing it
	require.Equal(t, h1, h2)
	require.Len(t, provider.opened, 1)

	// one reference remains, capture keeps running
	require.Equal(t, ResultSuccess, VideoCaptureSourceRelease(h1))
	require.False(t, provider.opened[0].stopped.Load())

	require.Equal(t, ResultSuccess, VideoCaptureSourceRelease(h2))
	require.True(t, provider.opened[0].stopped.Load())
	require.Equal(t, ResultInvalidNativeHandle, VideoCaptureSourceRelease(h2))
}

func TestExternalVideoSource(t *testing.T) {
	initLibrary(t)

	src, res := ExternalVideoSourceCreate()
	require.Equal(t, ResultSuccess, res)

	require.Equal(t, ResultInvalidParameter, ExternalVideoSourcePushFrame(src, nil))

	frame := &media.VideoFrame{
		Format:  media.FormatI420,
		Width:   2,
		Height:  2,
		Planes:  [][]byte{make([]byte, 4), make([]byte, 1), make([]byte, 1)},
		Strides: []int32{2, 1, 1},
	}
	require.Equal(t, ResultSuccess, ExternalVideoSourcePushFrame(src, frame))

	require.Equal(t, ResultSuccess, ExternalVideoSourceRelease(src))
	require.Equal(t, ResultInvalidNativeHandle, ExternalVideoSourcePushFrame(src, frame))
}

func TestAddLocalVideoTrackFromExternalSource(t *testing.T) {
	initLibrary(t)

	pc, res := PeerConnectionCreate()
	require.Equal(t, ResultSuccess, res)
	t.Cleanup(func() { PeerConnectionClose(pc) })

	src, res := ExternalVideoSourceCreate()
	require.Equal(t, ResultSuccess, res)
	t.Cleanup(func() { ExternalVideoSourceRelease(src) })

	track, res := PeerConnectionAddLocalVideoTrackFromExternalSource(pc, "", src)
	require.Equal(t, ResultSuccess, res)
	require.NotEqual(t, NilHandle, track)

	enabled, res := LocalVideoTrackIsEnabled(track)
	require.Equal(t, ResultSuccess, res)
	require.True(t, enabled)
	require.Equal(t, ResultSuccess, LocalVideoTrackSetEnabled(track, false))

	require.Equal(t, ResultSuccess, PeerConnectionRemoveLocalVideoTrack(pc, track))
	require.Equal(t, ResultInvalidNativeHandle, PeerConnectionRemoveLocalVideoTrack(pc, track))
}

func TestLocalAudioTrack(t *testing.T) {
	initLibrary(t)

	pc, res := PeerConnectionCreate()
	require.Equal(t, ResultSuccess, res)
	t.Cleanup(func() { PeerConnectionClose(pc) })

	_, res = PeerConnectionIsLocalAudioTrackEnabled(pc)
	require.Equal(t, ResultInvalidNativeHandle, res)

	require.Equal(t, ResultSuccess, PeerConnectionAddLocalAudioTrack(pc))
	enabled, res := PeerConnectionIsLocalAudioTrackEnabled(pc)
	require.Equal(t, ResultSuccess, res)
	require.True(t, enabled)

	require.Equal(t, ResultSuccess, PeerConnectionSetLocalAudioTrackEnabled(pc, false))
	enabled, res = PeerConnectionIsLocalAudioTrackEnabled(pc)
	require.Equal(t, ResultSuccess, res)
	require.False(t, enabled)

	require.Equal(t, ResultSuccess, PeerConnectionRemoveLocalAudioTrack(pc))
}

func TestDataChannel(t *testing.T) {
	initLibrary(t)

	pc, res := PeerConnectionCreate()
	require.Equal(t, ResultSuccess, res)
	t.Cleanup(func() { PeerConnectionClose(pc) })

	ch, res := PeerConnectionAddDataChannel(pc, -1, "chat", true, true)
	require.Equal(t, ResultSuccess, res)

	require.Equal(t, ResultInvalidParameter, DataChannelSend(ch, nil))
	// transport is not connected, the channel never opened
	require.Equal(t, ResultInvalidOperation, DataChannelSend(ch, []byte("hello")))

	require.Equal(t, ResultSuccess, DataChannelRegisterCallbacks(ch, nil, nil, nil))

	require.Equal(t, ResultSuccess, PeerConnectionRemoveDataChannel(pc, ch))
	require.Equal(t, ResultInvalidNativeHandle, DataChannelSend(ch, []byte("hello")))
}

func TestSdpForceCodecsBufferProtocol(t *testing.T) {
	message := strings.Join([]string{
		"v=0",
		"o=- 0 0 IN IP4 127.0.0.1",
		"s=-",
		"t=0 0",
		"m=audio 9 UDP/TLS/RTP/SAVPF 111 0",
		"a=rtpmap:111 opus/48000/2",
		"a=rtpmap:0 PCMU/8000",
		"",
	}, "\r\n")
	audio := sdputil.CodecFilter{CodecName: "opus"}

	required, res := SdpForceCodecs(message, audio, sdputil.CodecFilter{}, nil)
	require.Equal(t, ResultInvalidParameter, res)
	require.Greater(t, required, 1)

	// one byte short: nothing written
	short := make([]byte, required-1)
	n, res := SdpForceCodecs(message, audio, sdputil.CodecFilter{}, short)
	require.Equal(t, ResultInvalidParameter, res)
	require.Equal(t, required, n)
	for _, b := range short {
		require.Zero(t, b)
	}

	buf := make([]byte, required)
	n, res = SdpForceCodecs(message, audio, sdputil.CodecFilter{}, buf)
	require.Equal(t, ResultSuccess, res)
	require.Equal(t, required, n)
	require.Zero(t, buf[n-1])
	out := string(buf[:n-1])
	require.Contains(t, out, "a=rtpmap:111 opus/48000/2")
	require.NotContains(t, out, "PCMU")

	_, res = SdpForceCodecs("", audio, sdputil.CodecFilter{}, buf)
	require.Equal(t, ResultInvalidParameter, res)
}

func TestStatsReportRoundTrip(t *testing.T) {
	initLibrary(t)

	pc, res := PeerConnectionCreate()
	require.Equal(t, ResultSuccess, res)
	t.Cleanup(func() { PeerConnectionClose(pc) })

	require.Equal(t, ResultInvalidParameter, PeerConnectionGetSimpleStats(pc, nil))

	reports := make(chan Handle, 1)
	res = PeerConnectionGetSimpleStats(pc, func(report Handle) {
		reports <- report
	})
	require.Equal(t, ResultSuccess, res)

	var report Handle
	select {
	case report = <-reports:
	case <-time.After(5 * time.Second):
		t.Fatal("stats callback never ran")
	}
	require.NotEqual(t, NilHandle, report)

	visits := 0
	res = StatsReportGetObjects(report, "NoSuchCategory", func(snapshot interface{}) { visits++ })
	require.Equal(t, ResultSuccess, res)
	require.Zero(t, visits)

	res = StatsReportGetObjects(report, stats.CategoryTransport, func(snapshot interface{}) {
		_, ok := snapshot.(*stats.TransportStats)
		require.True(t, ok)
	})
	require.Equal(t, ResultSuccess, res)

	require.Equal(t, ResultSuccess, StatsReportRelease(report))
	require.Equal(t, ResultInvalidNativeHandle, StatsReportRelease(report))
	require.Equal(t, ResultInvalidNativeHandle, StatsReportGetObjects(report, stats.CategoryTransport, func(interface{}) {}))
}

func TestMemCpyStride(t *testing.T) {
	src := []byte{
		1, 2, 0, 0,
		3, 4, 0, 0,
	}
	dst := make([]byte, 4)
	require.Equal(t, ResultSuccess, MemCpyStride(dst, 2, src, 4, 2, 2))
	require.Equal(t, []byte{1, 2, 3, 4}, dst)

	// equal strides collapse to a contiguous copy
	tight := make([]byte, 8)
	require.Equal(t, ResultSuccess, MemCpyStride(tight, 4, src, 4, 4, 2))
	require.Equal(t, src, tight)

	require.Equal(t, ResultInvalidParameter, MemCpyStride(nil, 2, src, 4, 2, 2))
	require.Equal(t, ResultInvalidParameter, MemCpyStride(dst, 1, src, 4, 2, 2))
	require.Equal(t, ResultInvalidParameter, MemCpyStride(make([]byte, 3), 2, src, 4, 2, 2))
}
