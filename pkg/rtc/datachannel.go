package rtc

import (
	"sync"

	"github.com/pion/webrtc/v3"

	"github.com/peerlink/interop/pkg/telemetry"
	"github.com/peerlink/interop/pkg/utils"
)

const dataChannelBufferLimit = 16 * 1024 * 1024

// DataChannelConfig describes a channel to open. A negative ID requests
// in-band negotiation; a non-negative ID pins the channel to that stream on
// both peers. Reliable channels retransmit until delivery, unreliable ones
// never retransmit.
type DataChannelConfig struct {
	ID       int
	Label    string
	Ordered  bool
	Reliable bool
}

type MessageHandler func(data []byte)

type ChannelStateHandler func(state webrtc.DataChannelState)

type BufferingHandler func(previous, current, limit uint64)

// DataChannel wraps a pion channel with the handler slots the embedding
// layer registers. Registering nil clears a slot.
type DataChannel struct {
	conn *Connection
	dc   *webrtc.DataChannel
	id   string

	lock        sync.RWMutex
	onMessage   MessageHandler
	onState     ChannelStateHandler
	onBuffering BufferingHandler
}

func newDataChannel(c *Connection, dc *webrtc.DataChannel) *DataChannel {
	ch := &DataChannel{
		conn: c,
		dc:   dc,
		id:   utils.NewGuid(utils.ChannelPrefix),
	}

	dc.OnOpen(func() {
		ch.fireState(webrtc.DataChannelStateOpen)
	})
	dc.OnClose(func() {
		ch.fireState(webrtc.DataChannelStateClosed)
		c.handleChannelClosed(ch)
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		telemetry.DataChannelBytes.WithLabelValues("in").Add(float64(len(msg.Data)))
		ch.lock.RLock()
		f := ch.onMessage
		ch.lock.RUnlock()
		if f != nil {
			f(msg.Data)
		}
	})

	return ch
}

func (ch *DataChannel) ID() string {
	return ch.id
}

func (ch *DataChannel) Label() string {
	return ch.dc.Label()
}

// StreamID returns the negotiated SCTP stream, or -1 before negotiation
// completes.
func (ch *DataChannel) StreamID() int {
	if id := ch.dc.ID(); id != nil {
		return int(*id)
	}
	return -1
}

func (ch *DataChannel) OnMessage(f MessageHandler) {
	ch.lock.Lock()
	ch.onMessage = f
	ch.lock.Unlock()
}

func (ch *DataChannel) OnStateChange(f ChannelStateHandler) {
	ch.lock.Lock()
	ch.onState = f
	ch.lock.Unlock()
}

func (ch *DataChannel) OnBuffering(f BufferingHandler) {
	ch.lock.Lock()
	ch.onBuffering = f
	ch.lock.Unlock()
}

func (ch *DataChannel) fireState(state webrtc.DataChannelState) {
	ch.lock.RLock()
	f := ch.onState
	ch.lock.RUnlock()
	if f != nil {
		f(state)
	}
}

// Send queues data for delivery. Fails when the channel is not open. The
// buffering handler observes the queued byte count before and after the
// send.
func (ch *DataChannel) Send(data []byte) error {
	if ch.dc.ReadyState() != webrtc.DataChannelStateOpen {
		return ErrDataChannelClosed
	}

	previous := ch.dc.BufferedAmount()
	if err := ch.dc.Send(data); err != nil {
		return err
	}
	telemetry.DataChannelBytes.WithLabelValues("out").Add(float64(len(data)))

	ch.lock.RLock()
	f := ch.onBuffering
	ch.lock.RUnlock()
	if f != nil {
		f(previous, ch.dc.BufferedAmount(), dataChannelBufferLimit)
	}
	return nil
}

func (ch *DataChannel) close() {
	if err := ch.dc.Close(); err != nil {
		ch.conn.logger.Warnw("error closing data channel", err, "label", ch.dc.Label())
	}
	ch.lock.Lock()
	ch.onMessage = nil
	ch.onState = nil
	ch.onBuffering = nil
	ch.lock.Unlock()
}

// AddDataChannel opens a channel with the requested ordering and
// reliability. Channels with a pinned ID skip in-band negotiation and must
// be created with the same ID on the remote peer.
func (c *Connection) AddDataChannel(conf DataChannelConfig) (*DataChannel, error) {
	if c.closed.IsBroken() {
		return nil, ErrConnectionClosed
	}

	init := &webrtc.DataChannelInit{
		Ordered: &conf.Ordered,
	}
	if !conf.Reliable {
		var zero uint16
		init.MaxRetransmits = &zero
	}
	if conf.ID >= 0 {
		negotiated := true
		id := uint16(conf.ID)
		init.Negotiated = &negotiated
		init.ID = &id
	}

	dc, err := c.pc.CreateDataChannel(conf.Label, init)
	if err != nil {
		return nil, err
	}

	channel := newDataChannel(c, dc)
	c.lock.Lock()
	c.dataChannels = append(c.dataChannels, channel)
	c.lock.Unlock()

	c.logger.Infow("data channel added", "label", conf.Label, "negotiated", conf.ID >= 0)
	return channel, nil
}

func (c *Connection) RemoveDataChannel(ch *DataChannel) error {
	if c.closed.IsBroken() {
		return ErrConnectionClosed
	}

	if !c.detachChannel(ch) {
		return ErrDataChannelNotFound
	}

	ch.close()
	c.fireDataChannelRemoved(ch)
	return nil
}

// detachChannel drops ch from the connection's channel list. Returns false
// when the channel was already detached, so the removal event fires at most
// once per channel.
func (c *Connection) detachChannel(ch *DataChannel) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	for i, cur := range c.dataChannels {
		if cur == ch {
			c.dataChannels = append(c.dataChannels[:i], c.dataChannels[i+1:]...)
			return true
		}
	}
	return false
}

// handleChannelClosed reacts to the transport closing a channel, remotely
// or otherwise, without a local RemoveDataChannel call.
func (c *Connection) handleChannelClosed(ch *DataChannel) {
	if !c.detachChannel(ch) {
		return
	}
	c.logger.Debugw("data channel closed by transport", "label", ch.Label())
	c.fireDataChannelRemoved(ch)
}
