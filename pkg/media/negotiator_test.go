package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/peerlink/interop/pkg/gateway"
)

type fakeModule struct {
	started atomic.Bool
	stopped atomic.Bool
	sink    VideoFrameSink
}

func (m *fakeModule) Start(capability CaptureCapability, sink VideoFrameSink) error {
	m.started.Store(true)
	m.sink = sink
	return nil
}

func (m *fakeModule) Stop() error {
	m.stopped.Store(true)
	return nil
}

type fakeProvider struct {
	devices      []DeviceInfo
	capabilities map[string][]CaptureCapability
	unopenable   map[string]bool
	opened       []*fakeModule
}

func (p *fakeProvider) Devices() ([]DeviceInfo, error) {
	return p.devices, nil
}

func (p *fakeProvider) Capabilities(deviceID string) ([]CaptureCapability, error) {
	return p.capabilities[deviceID], nil
}

func (p *fakeProvider) Open(deviceID string) (CaptureModule, error) {
	if p.unopenable[deviceID] {
		return nil, ErrNoDeviceOpened
	}
	m := &fakeModule{}
	p.opened = append(p.opened, m)
	return m, nil
}

func newTestProvider() *fakeProvider {
	return &fakeProvider{
		devices: []DeviceInfo{
			{ID: "cam0", Name: "Front Camera"},
			{ID: "cam1", Name: "Rear Camera"},
		},
		capabilities: map[string][]CaptureCapability{
			"cam0": {
				{Width: 640, Height: 480, MaxFramerate: 15, Format: FormatNV12},
				{Width: 1280, Height: 720, MaxFramerate: 30, Format: FormatNV12},
			},
			"cam1": {
				{Width: 640, Height: 480, MaxFramerate: 30, Format: FormatI420},
			},
		},
		unopenable: map[string]bool{},
	}
}

func testGateway(t *testing.T) *gateway.Gateway {
	t.Helper()
	g := gateway.New("capture-test", 16)
	t.Cleanup(g.Close)
	return g
}

func resetSessions() {
	sessionsLock.Lock()
	sessions = make(map[string]*CaptureSource)
	sessionsLock.Unlock()
}

func TestEnumerateDevices(t *testing.T) {
	p := newTestProvider()

	var ids, names []string
	done := false
	err := EnumerateDevices(p, func(id, name string) {
		ids = append(ids, id)
		names = append(names, name)
	}, func() { done = true })
	require.NoError(t, err)
	require.Equal(t, []string{"cam0", "cam1"}, ids)
	require.Equal(t, []string{"Front Camera", "Rear Camera"}, names)
	require.True(t, done)
}

func TestEnumerateDevicesEmptyStillCompletes(t *testing.T) {
	p := &fakeProvider{}

	found := 0
	done := false
	err := EnumerateDevices(p, func(id, name string) { found++ }, func() { done = true })
	require.NoError(t, err)
	require.Zero(t, found)
	require.True(t, done)
}

func TestEnumerateCapabilities(t *testing.T) {
	p := newTestProvider()
	// unmapped pixel layouts are filtered out
	p.capabilities["cam0"] = append(p.capabilities["cam0"],
		CaptureCapability{Width: 320, Height: 240, MaxFramerate: 10, Format: FormatUnknown})

	var widths []uint32
	var codes []FourCC
	var doneErr error
	done := false
	err := EnumerateCapabilities(p, "cam0", func(w, h uint32, fps float64, fourcc FourCC) {
		widths = append(widths, w)
		codes = append(codes, fourcc)
	}, func(err error) {
		done = true
		doneErr = err
	})
	require.NoError(t, err)
	require.True(t, done)
	require.NoError(t, doneErr)
	require.Equal(t, []uint32{640, 1280}, widths)
	require.Equal(t, []FourCC{MakeFourCC('N', 'V', '1', '2'), MakeFourCC('N', 'V', '1', '2')}, codes)
}

func TestEnumerateCapabilitiesUnknownDevice(t *testing.T) {
	p := newTestProvider()

	found := 0
	done := false
	err := EnumerateCapabilities(p, "nope", func(w, h uint32, fps float64, fourcc FourCC) {
		found++
	}, func(err error) { done = true })
	require.NoError(t, err)
	require.Zero(t, found)
	require.True(t, done)
}

func TestOpenSourceUnknownDeviceIDIsNotFound(t *testing.T) {
	resetSessions()
	p := newTestProvider()

	_, err := OpenSource(context.Background(), testGateway(t), p, VideoDeviceConfig{DeviceID: "ghost"})
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestOpenSourceExactCapabilityMatch(t *testing.T) {
	resetSessions()
	p := newTestProvider()
	g := testGateway(t)

	s, err := OpenSource(context.Background(), g, p, VideoDeviceConfig{Width: 640, Height: 480, Framerate: 30})
	require.NoError(t, err)
	defer s.Close(context.Background())

	// cam0 has no exact {640,480,30}, cam1 does
	require.Equal(t, "cam1", s.DeviceID())
	require.Equal(t, uint32(640), s.Capability().Width)
	require.Equal(t, float64(30), s.Capability().MaxFramerate)
	require.Len(t, p.opened, 1)
	require.True(t, p.opened[0].started.Load())
}

func TestOpenSourceNoCapabilityMatchIsInvalidOperation(t *testing.T) {
	resetSessions()
	p := newTestProvider()
	g := testGateway(t)

	// cam0: {640,480,15} and {1280,720,30}; constrain 640x480@30 within cam0 only
	_, err := OpenSource(context.Background(), g, p, VideoDeviceConfig{DeviceID: "cam0", Width: 640, Height: 480, Framerate: 30})
	require.ErrorIs(t, err, ErrNoDeviceOpened)
}

func TestOpenSourceUnconstrainedUsesFirstCapability(t *testing.T) {
	resetSessions()
	p := newTestProvider()
	g := testGateway(t)

	s, err := OpenSource(context.Background(), g, p, VideoDeviceConfig{})
	require.NoError(t, err)
	defer s.Close(context.Background())

	require.Equal(t, "cam0", s.DeviceID())
	require.Equal(t, uint32(640), s.Capability().Width)
	require.Equal(t, uint32(480), s.Capability().Height)
}

func TestOpenSourceSkipsUnopenableCandidates(t *testing.T) {
	resetSessions()
	p := newTestProvider()
	p.unopenable["cam0"] = true
	g := testGateway(t)

	s, err := OpenSource(context.Background(), g, p, VideoDeviceConfig{})
	require.NoError(t, err)
	defer s.Close(context.Background())

	require.Equal(t, "cam1", s.DeviceID())
}

func TestOpenSourceReusesLiveSession(t *testing.T) {
	resetSessions()
	p := newTestProvider()
	g := testGateway(t)

	s1, err := OpenSource(context.Background(), g, p, VideoDeviceConfig{DeviceID: "cam1"})
	require.NoError(t, err)
	defer s1.Close(context.Background())

	s2, err := OpenSource(context.Background(), g, p, VideoDeviceConfig{DeviceID: "cam1"})
	require.NoError(t, err)
	require.Same(t, s1, s2)
	require.Len(t, p.opened, 1)
}

func TestCaptureSourceCloseStopsModule(t *testing.T) {
	resetSessions()
	p := newTestProvider()
	g := testGateway(t)

	s, err := OpenSource(context.Background(), g, p, VideoDeviceConfig{DeviceID: "cam1"})
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))
	require.True(t, p.opened[0].stopped.Load())

	// close is idempotent
	require.NoError(t, s.Close(context.Background()))

	// the device can be opened again after close
	s2, err := OpenSource(context.Background(), g, p, VideoDeviceConfig{DeviceID: "cam1"})
	require.NoError(t, err)
	require.NotSame(t, s, s2)
	require.NoError(t, s2.Close(context.Background()))
}
