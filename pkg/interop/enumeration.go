package interop

import (
	"context"

	"github.com/peerlink/interop/pkg/handle"
	"github.com/peerlink/interop/pkg/media"
)

// EnumerateVideoCaptureDevices delivers every capture device through
// onFound, then calls onDone exactly once, including when no devices are
// present. onFound must not be nil.
func EnumerateVideoCaptureDevices(onFound func(id, name string), onDone func()) Result {
	return guard(func() error {
		if onFound == nil {
			return ErrInvalidArgument
		}
		provider, err := media.Provider()
		if err != nil {
			return err
		}
		return media.EnumerateDevices(provider, onFound, onDone)
	})
}

// EnumerateVideoCaptureFormats delivers the formats deviceID supports.
// Formats without a FOURCC mapping are omitted. An unknown device id yields
// zero formats followed by completion.
func EnumerateVideoCaptureFormats(deviceID string, onFound func(width, height uint32, framerate float64, fourcc uint32), onDone func()) Result {
	return guard(func() error {
		if onFound == nil {
			return ErrInvalidArgument
		}
		provider, err := media.Provider()
		if err != nil {
			return err
		}
		return media.EnumerateCapabilities(provider, deviceID,
			func(width, height uint32, framerate float64, fourcc media.FourCC) {
				onFound(width, height, framerate, uint32(fourcc))
			},
			func(err error) {
				if onDone != nil {
					onDone()
				}
			})
	})
}

// OpenVideoCaptureDevice resolves and opens a capture device matching
// config and returns a handle to the live source. The caller owns one
// reference and must release it with VideoCaptureSourceRelease.
func OpenVideoCaptureDevice(config media.VideoDeviceConfig) (Handle, Result) {
	var h Handle
	res := guard(func() error {
		engine, handles, err := getLibrary()
		if err != nil {
			return err
		}
		provider, err := media.Provider()
		if err != nil {
			return err
		}
		source, err := media.OpenSource(context.Background(), engine.Gateway(), provider, config)
		if err != nil {
			return err
		}
		h = lib.sourceHandle(handles, source)
		return nil
	})
	return h, res
}

// VideoCaptureSourceRelease drops the caller's reference; the last release
// stops capture.
func VideoCaptureSourceRelease(h Handle) Result {
	return guard(func() error {
		_, handles, err := getLibrary()
		if err != nil {
			return err
		}
		if _, err = handles.Get(h, handle.KindCaptureSource); err != nil {
			return err
		}
		obj, last, err := handles.Release(h)
		if err != nil {
			return err
		}
		if last {
			source := obj.(*media.CaptureSource)
			lib.dropSource(source)
			return source.Close(context.Background())
		}
		return nil
	})
}
