package interop

import (
	"context"

	"github.com/peerlink/interop/pkg/handle"
	"github.com/peerlink/interop/pkg/media"
	"github.com/peerlink/interop/pkg/rtc"
)

func getVideoSource(handles *handle.Map, h Handle) (media.VideoSource, error) {
	switch handles.Kind(h) {
	case handle.KindCaptureSource:
		obj, err := handles.Get(h, handle.KindCaptureSource)
		if err != nil {
			return nil, err
		}
		return obj.(*media.CaptureSource), nil
	case handle.KindExternalVideoSource:
		obj, err := handles.Get(h, handle.KindExternalVideoSource)
		if err != nil {
			return nil, err
		}
		return obj.(*media.ExternalSource), nil
	default:
		return nil, handle.ErrInvalidHandle
	}
}

// PeerConnectionAddLocalVideoTrack binds an opened capture source to the
// connection as a new outbound video track. The returned track handle
// carries one reference owned by the caller.
func PeerConnectionAddLocalVideoTrack(h Handle, trackName string, source Handle) (Handle, Result) {
	var th Handle
	res := guard(func() error {
		conn, handles, err := getConnection(h)
		if err != nil {
			return err
		}
		src, err := getVideoSource(handles, source)
		if err != nil {
			return err
		}
		track, err := conn.AddLocalVideoTrack(trackName, src)
		if err != nil {
			return err
		}
		th = handles.Acquire(handle.KindLocalVideoTrack, track)
		return nil
	})
	return th, res
}

// PeerConnectionAddLocalVideoTrackFromExternalSource is the external-feed
// variant of PeerConnectionAddLocalVideoTrack. An empty track name selects
// the default external track name.
func PeerConnectionAddLocalVideoTrackFromExternalSource(h Handle, trackName string, source Handle) (Handle, Result) {
	var th Handle
	res := guard(func() error {
		conn, handles, err := getConnection(h)
		if err != nil {
			return err
		}
		obj, err := handles.Get(source, handle.KindExternalVideoSource)
		if err != nil {
			return err
		}
		track, err := conn.AddLocalVideoTrack(trackName, obj.(*media.ExternalSource))
		if err != nil {
			return err
		}
		th = handles.Acquire(handle.KindLocalVideoTrack, track)
		return nil
	})
	return th, res
}

// PeerConnectionRemoveLocalVideoTrack detaches the track and releases the
// caller's reference to it.
func PeerConnectionRemoveLocalVideoTrack(h Handle, track Handle) Result {
	return guard(func() error {
		conn, handles, err := getConnection(h)
		if err != nil {
			return err
		}
		obj, err := handles.Get(track, handle.KindLocalVideoTrack)
		if err != nil {
			return err
		}
		if err = conn.RemoveLocalVideoTrack(obj.(*rtc.LocalVideoTrack)); err != nil {
			return err
		}
		_, _, err = handles.Release(track)
		return err
	})
}

// PeerConnectionRemoveLocalVideoTracksFromSource detaches every track fed
// by source. Track handles previously returned for those tracks remain the
// caller's to release.
func PeerConnectionRemoveLocalVideoTracksFromSource(h Handle, source Handle) Result {
	return guard(func() error {
		conn, handles, err := getConnection(h)
		if err != nil {
			return err
		}
		src, err := getVideoSource(handles, source)
		if err != nil {
			return err
		}
		return conn.RemoveLocalVideoTracksFromSource(src)
	})
}

func PeerConnectionAddLocalAudioTrack(h Handle) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		_, err = conn.AddLocalAudioTrack()
		return err
	})
}

func PeerConnectionRemoveLocalAudioTrack(h Handle) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		return conn.RemoveLocalAudioTrack()
	})
}

func PeerConnectionSetLocalAudioTrackEnabled(h Handle, enabled bool) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		track := conn.LocalAudioTrack()
		if track == nil {
			return rtc.ErrTrackNotFound
		}
		track.SetEnabled(enabled)
		return nil
	})
}

func PeerConnectionIsLocalAudioTrackEnabled(h Handle) (bool, Result) {
	var enabled bool
	res := guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		track := conn.LocalAudioTrack()
		if track == nil {
			return rtc.ErrTrackNotFound
		}
		enabled = track.Enabled()
		return nil
	})
	return enabled, res
}

func LocalVideoTrackSetEnabled(track Handle, enabled bool) Result {
	return guard(func() error {
		_, handles, err := getLibrary()
		if err != nil {
			return err
		}
		obj, err := handles.Get(track, handle.KindLocalVideoTrack)
		if err != nil {
			return err
		}
		obj.(*rtc.LocalVideoTrack).SetEnabled(enabled)
		return nil
	})
}

func LocalVideoTrackIsEnabled(track Handle) (bool, Result) {
	var enabled bool
	res := guard(func() error {
		_, handles, err := getLibrary()
		if err != nil {
			return err
		}
		obj, err := handles.Get(track, handle.KindLocalVideoTrack)
		if err != nil {
			return err
		}
		enabled = obj.(*rtc.LocalVideoTrack).Enabled()
		return nil
	})
	return enabled, res
}

// LocalVideoTrackRegisterFrameCallback observes the raw frames flowing
// from the track's source while the track is enabled.
func LocalVideoTrackRegisterFrameCallback(track Handle, cb func(frame *media.VideoFrame)) Result {
	return guard(func() error {
		_, handles, err := getLibrary()
		if err != nil {
			return err
		}
		obj, err := handles.Get(track, handle.KindLocalVideoTrack)
		if err != nil {
			return err
		}
		obj.(*rtc.LocalVideoTrack).OnVideoFrame(cb)
		return nil
	})
}

// ExternalVideoSourceCreate allocates a source the application pushes raw
// frames into. The caller owns one reference.
func ExternalVideoSourceCreate() (Handle, Result) {
	var h Handle
	res := guard(func() error {
		_, handles, err := getLibrary()
		if err != nil {
			return err
		}
		h = handles.Acquire(handle.KindExternalVideoSource, media.NewExternalSource())
		return nil
	})
	return h, res
}

// ExternalVideoSourcePushFrame fans the frame out to every track attached
// to the source. The frame is only borrowed for the duration of the call.
func ExternalVideoSourcePushFrame(h Handle, frame *media.VideoFrame) Result {
	return guard(func() error {
		if frame == nil {
			return media.ErrInvalidFrame
		}
		_, handles, err := getLibrary()
		if err != nil {
			return err
		}
		obj, err := handles.Get(h, handle.KindExternalVideoSource)
		if err != nil {
			return err
		}
		return obj.(*media.ExternalSource).PushFrame(frame)
	})
}

func ExternalVideoSourceRelease(h Handle) Result {
	return guard(func() error {
		_, handles, err := getLibrary()
		if err != nil {
			return err
		}
		if _, err = handles.Get(h, handle.KindExternalVideoSource); err != nil {
			return err
		}
		obj, last, err := handles.Release(h)
		if err != nil {
			return err
		}
		if last {
			return obj.(*media.ExternalSource).Close(context.Background())
		}
		return nil
	})
}
