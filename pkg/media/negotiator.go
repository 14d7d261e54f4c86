package media

import (
	"context"
	"math"

	"github.com/peerlink/interop/pkg/gateway"
	"github.com/peerlink/interop/pkg/logger"
	"github.com/peerlink/interop/pkg/telemetry"
	"github.com/peerlink/interop/pkg/utils"
)

// EnumerateDevices queries the system device list once and delivers each
// device to onDevice, then calls onDone exactly once, including when zero
// devices are present. A new call re-queries the system.
func EnumerateDevices(p CaptureProvider, onDevice func(id, name string), onDone func()) error {
	devices, err := p.Devices()
	if err != nil {
		if onDone != nil {
			onDone()
		}
		return err
	}
	for _, d := range devices {
		onDevice(d.ID, d.Name)
	}
	if onDone != nil {
		onDone()
	}
	return nil
}

// EnumerateCapabilities delivers the capture formats supported by one
// device. Formats whose pixel layout has no FOURCC mapping are dropped. An
// unknown device id yields zero formats, then completion.
func EnumerateCapabilities(p CaptureProvider, deviceID string, onFormat func(width, height uint32, framerate float64, fourcc FourCC), onDone func(err error)) error {
	devices, err := p.Devices()
	if err != nil {
		if onDone != nil {
			onDone(err)
		}
		return err
	}
	for _, d := range devices {
		if d.ID != deviceID {
			continue
		}
		caps, err := p.Capabilities(d.ID)
		if err != nil {
			if onDone != nil {
				onDone(err)
			}
			return err
		}
		for _, c := range caps {
			fourcc := FourCCFromFormat(c.Format)
			if fourcc == FourCCAny {
				continue
			}
			onFormat(c.Width, c.Height, c.MaxFramerate, fourcc)
		}
		break
	}
	if onDone != nil {
		onDone(nil)
	}
	return nil
}

// OpenSource resolves a device/capability pair matching config and opens it
// on the gateway's designated thread. The returned source is live.
//
// Resolution is deterministic for a given enumeration snapshot: candidates
// are scanned in enumeration order, capabilities in listing order, and the
// first exact match of every constrained field wins. Constrained framerates
// compare after rounding to the nearest integer.
func OpenSource(ctx context.Context, g *gateway.Gateway, p CaptureProvider, config VideoDeviceConfig) (*CaptureSource, error) {
	return gateway.RunResult(g, ctx, func(ctx context.Context) (*CaptureSource, error) {
		return openSourceOnGateway(ctx, g, p, config)
	})
}

func openSourceOnGateway(ctx context.Context, g *gateway.Gateway, p CaptureProvider, config VideoDeviceConfig) (*CaptureSource, error) {
	log := logger.GetLogger().WithName("media")

	devices, err := p.Devices()
	if err != nil {
		return nil, err
	}

	var candidates []DeviceInfo
	if config.DeviceID != "" {
		for _, d := range devices {
			if d.ID == config.DeviceID {
				candidates = append(candidates, d)
				break
			}
		}
		if len(candidates) == 0 {
			log.Errorw("could not find video capture device by unique id", nil, "deviceID", config.DeviceID)
			return nil, ErrDeviceNotFound
		}
	} else {
		candidates = devices
		if len(candidates) == 0 {
			log.Errorw("could not find any video capture device", nil)
			return nil, ErrDeviceNotFound
		}
	}

	var module CaptureModule
	var opened DeviceInfo
	var capability CaptureCapability
	if config.constrained() {
		wantFps := int(math.Floor(config.Framerate + 0.5))
		for _, d := range candidates {
			caps, err := p.Capabilities(d.ID)
			if err != nil {
				continue
			}
			for _, c := range caps {
				if config.Width > 0 && c.Width != config.Width {
					continue
				}
				if config.Height > 0 && c.Height != config.Height {
					continue
				}
				if config.Framerate > 0.0 && int(math.Floor(c.MaxFramerate+0.5)) != wantFps {
					continue
				}
				if existing := lookupSession(d.ID); existing != nil {
					// one session per device; reuse when the mode matches
					if existing.capability == c {
						return existing, nil
					}
					break
				}
				if m, err := p.Open(d.ID); err == nil {
					module, opened, capability = m, d, c
					break
				}
			}
			if module != nil {
				break
			}
		}
	} else {
		for _, d := range candidates {
			if existing := lookupSession(d.ID); existing != nil {
				return existing, nil
			}
			m, err := p.Open(d.ID)
			if err != nil {
				continue
			}
			caps, err := p.Capabilities(d.ID)
			if err != nil || len(caps) == 0 {
				_ = m.Stop()
				continue
			}
			// no capability was requested, take the first one listed
			module, opened, capability = m, d, caps[0]
			break
		}
	}

	if module == nil {
		log.Errorw("failed to open any video capture device", nil, "tried", len(candidates))
		return nil, ErrNoDeviceOpened
	}

	source := &CaptureSource{
		id:         utils.NewGuid(utils.SourcePrefix),
		deviceID:   opened.ID,
		capability: capability,
		module:     module,
		gateway:    g,
		logger:     log,
	}
	// capture sources start live by convention
	if err := module.Start(capability, &source.Broadcaster); err != nil {
		_ = module.Stop()
		return nil, ErrCaptureStartFail
	}
	registerSession(source)
	telemetry.CaptureSourcesActive.Inc()
	log.Infow("capture source opened",
		"device", opened.ID,
		"width", capability.Width,
		"height", capability.Height,
		"fps", capability.MaxFramerate,
	)
	return source, nil
}
