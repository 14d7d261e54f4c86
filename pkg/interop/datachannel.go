package interop

import (
	"github.com/pion/webrtc/v3"

	"github.com/peerlink/interop/pkg/handle"
	"github.com/peerlink/interop/pkg/rtc"
)

// PeerConnectionAddDataChannel opens a channel on the connection. A
// negative id requests in-band negotiation; a non-negative id pins the
// SCTP stream and must be mirrored by the remote peer. The returned handle
// carries one reference owned by the caller.
func PeerConnectionAddDataChannel(h Handle, id int, label string, ordered, reliable bool) (Handle, Result) {
	var ch Handle
	res := guard(func() error {
		conn, handles, err := getConnection(h)
		if err != nil {
			return err
		}
		channel, err := conn.AddDataChannel(rtc.DataChannelConfig{
			ID:       id,
			Label:    label,
			Ordered:  ordered,
			Reliable: reliable,
		})
		if err != nil {
			return err
		}
		ch = handles.Acquire(handle.KindDataChannel, channel)
		return nil
	})
	return ch, res
}

// PeerConnectionRemoveDataChannel closes the channel and releases the
// caller's reference.
func PeerConnectionRemoveDataChannel(h Handle, channel Handle) Result {
	return guard(func() error {
		conn, handles, err := getConnection(h)
		if err != nil {
			return err
		}
		obj, err := handles.Get(channel, handle.KindDataChannel)
		if err != nil {
			return err
		}
		if err = conn.RemoveDataChannel(obj.(*rtc.DataChannel)); err != nil {
			return err
		}
		_, _, err = handles.Release(channel)
		return err
	})
}

// DataChannelSend queues one message. Fails with InvalidOperation until the
// channel transitions to open.
func DataChannelSend(h Handle, data []byte) Result {
	return guard(func() error {
		if data == nil {
			return ErrInvalidArgument
		}
		ch, err := getDataChannel(h)
		if err != nil {
			return err
		}
		return ch.Send(data)
	})
}

// DataChannelRegisterCallbacks installs the channel's message, state and
// buffering observers in one shot. Nil entries clear the matching slot.
func DataChannelRegisterCallbacks(h Handle, onMessage func(data []byte), onState func(state int32), onBuffering func(previous, current, limit uint64)) Result {
	return guard(func() error {
		ch, err := getDataChannel(h)
		if err != nil {
			return err
		}
		ch.OnMessage(onMessage)
		if onState == nil {
			ch.OnStateChange(nil)
		} else {
			ch.OnStateChange(func(state webrtc.DataChannelState) {
				onState(int32(state))
			})
		}
		ch.OnBuffering(onBuffering)
		return nil
	})
}
