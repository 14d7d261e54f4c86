package interop

import (
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"

	"github.com/peerlink/interop/pkg/handle"
	"github.com/peerlink/interop/pkg/media"
	"github.com/peerlink/interop/pkg/rtc"
)

// Media kinds carried by track added/removed callbacks.
const (
	TrackKindAudio = int32(rtc.TrackKindAudio)
	TrackKindVideo = int32(rtc.TrackKindVideo)
)

// PeerConnectionCreate builds a new connection and returns its handle. The
// caller owns one reference and must release it with PeerConnectionClose.
func PeerConnectionCreate() (Handle, Result) {
	var h Handle
	res := guard(func() error {
		engine, handles, err := getLibrary()
		if err != nil {
			return err
		}
		conn, err := engine.NewConnection()
		if err != nil {
			return err
		}
		h = handles.Acquire(handle.KindPeerConnection, conn)
		return nil
	})
	return h, res
}

// PeerConnectionClose tears the connection down and invalidates its handle.
func PeerConnectionClose(h Handle) Result {
	return guard(func() error {
		_, handles, err := getLibrary()
		if err != nil {
			return err
		}
		if _, err = handles.Get(h, handle.KindPeerConnection); err != nil {
			return err
		}
		obj, last, err := handles.Release(h)
		if err != nil {
			return err
		}
		if last {
			obj.(*rtc.Connection).Close()
		}
		return nil
	})
}

// Callback registration. A nil callback clears the slot; the last writer
// wins. Events raised with no registered callback are dropped.

func PeerConnectionRegisterConnectedCallback(h Handle, cb func()) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		conn.OnConnected(cb)
		return nil
	})
}

func PeerConnectionRegisterLocalSdpReadyCallback(h Handle, cb func(sdpType, sdp string)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		conn.OnLocalDescription(cb)
		return nil
	})
}

func PeerConnectionRegisterIceCandidateReadyCallback(h Handle, cb func(candidate string, sdpMLineIndex int, sdpMid string)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		conn.OnIceCandidate(cb)
		return nil
	})
}

func PeerConnectionRegisterIceStateChangedCallback(h Handle, cb func(state int32)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		if cb == nil {
			conn.OnIceState(nil)
			return nil
		}
		conn.OnIceState(func(state webrtc.ICEConnectionState) {
			cb(int32(state))
		})
		return nil
	})
}

func PeerConnectionRegisterIceGatheringStateChangedCallback(h Handle, cb func(state int32)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		if cb == nil {
			conn.OnIceGatheringState(nil)
			return nil
		}
		conn.OnIceGatheringState(func(state webrtc.ICEGathererState) {
			cb(int32(state))
		})
		return nil
	})
}

func PeerConnectionRegisterRenegotiationNeededCallback(h Handle, cb func()) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		conn.OnRenegotiationNeeded(cb)
		return nil
	})
}

func PeerConnectionRegisterTrackAddedCallback(h Handle, cb func(kind int32)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		if cb == nil {
			conn.OnTrackAdded(nil)
			return nil
		}
		conn.OnTrackAdded(func(kind rtc.TrackKind) {
			cb(int32(kind))
		})
		return nil
	})
}

func PeerConnectionRegisterTrackRemovedCallback(h Handle, cb func(kind int32)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		if cb == nil {
			conn.OnTrackRemoved(nil)
			return nil
		}
		conn.OnTrackRemoved(func(kind rtc.TrackKind) {
			cb(int32(kind))
		})
		return nil
	})
}

// PeerConnectionRegisterDataChannelAddedCallback surfaces remotely opened
// channels. The callback receives the new channel's handle together with
// its per-channel binding token (the channel's opaque id string); the
// handle carries one reference the callback's owner must release.
func PeerConnectionRegisterDataChannelAddedCallback(h Handle, cb func(binding string, channel Handle)) Result {
	return guard(func() error {
		conn, handles, err := getConnection(h)
		if err != nil {
			return err
		}
		if cb == nil {
			conn.OnDataChannelAdded(nil)
			return nil
		}
		conn.OnDataChannelAdded(func(dc *rtc.DataChannel) {
			cb(dc.ID(), handles.Acquire(handle.KindDataChannel, dc))
		})
		return nil
	})
}

// PeerConnectionRegisterRemoteRtpPacketCallback observes every packet read
// off a remote track, before depacketizing. The payload slice is only
// borrowed for the duration of the call.
func PeerConnectionRegisterRemoteRtpPacketCallback(h Handle, cb func(kind int32, payloadType uint8, sequenceNumber uint16, timestamp uint32, payload []byte)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		if cb == nil {
			conn.OnRemoteRtpPacket(nil)
			return nil
		}
		conn.OnRemoteRtpPacket(func(kind rtc.TrackKind, packet *rtp.Packet) {
			cb(int32(kind), packet.PayloadType, packet.SequenceNumber, packet.Timestamp, packet.Payload)
		})
		return nil
	})
}

// PeerConnectionRegisterDataChannelRemovedCallback fires as a channel is
// torn down, carrying its binding token. The caller still owns any handle
// previously returned for the channel and must release it.
func PeerConnectionRegisterDataChannelRemovedCallback(h Handle, cb func(binding string)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		if cb == nil {
			conn.OnDataChannelRemoved(nil)
			return nil
		}
		conn.OnDataChannelRemoved(func(dc *rtc.DataChannel) {
			cb(dc.ID())
		})
		return nil
	})
}

// The two remote video frame registrations are independent slots selecting
// the delivery pixel layout.

func PeerConnectionRegisterI420ARemoteVideoFrameCallback(h Handle, cb func(frame *media.VideoFrame)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		conn.OnRemoteI420AFrame(cb)
		return nil
	})
}

func PeerConnectionRegisterArgb32RemoteVideoFrameCallback(h Handle, cb func(frame *media.VideoFrame)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		conn.OnRemoteArgb32Frame(cb)
		return nil
	})
}

func PeerConnectionRegisterRemoteAudioFrameCallback(h Handle, cb func(frame *media.AudioFrame)) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		conn.OnRemoteAudioFrame(cb)
		return nil
	})
}

// Session negotiation.

func PeerConnectionCreateOffer(h Handle) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		return conn.CreateOffer()
	})
}

func PeerConnectionCreateAnswer(h Handle) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		return conn.CreateAnswer()
	})
}

func PeerConnectionSetRemoteDescription(h Handle, sdpType, sdp string) Result {
	return guard(func() error {
		if sdpType == "" || sdp == "" {
			return ErrInvalidArgument
		}
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		return conn.SetRemoteDescription(sdpType, sdp)
	})
}

func PeerConnectionAddIceCandidate(h Handle, candidate string, sdpMLineIndex int, sdpMid string) Result {
	return guard(func() error {
		if candidate == "" {
			return ErrInvalidArgument
		}
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		return conn.AddIceCandidate(candidate, sdpMLineIndex, sdpMid)
	})
}

// PeerConnectionSetBitrate sets connection-wide encoder bitrate bounds in
// bits per second. Negative values leave the corresponding bound unset.
func PeerConnectionSetBitrate(h Handle, minBps, startBps, maxBps int64) Result {
	return guard(func() error {
		conn, _, err := getConnection(h)
		if err != nil {
			return err
		}
		return conn.SetBitrate(minBps, startBps, maxBps)
	})
}
