package rtc

import (
	"strconv"
	"time"

	pionstats "github.com/pion/interceptor/pkg/stats"
	"github.com/pion/webrtc/v3"

	"github.com/peerlink/interop/pkg/stats"
	"github.com/peerlink/interop/pkg/telemetry"
)

// GetStats snapshots the connection into the flat record form consumed by
// the transcoder. Channel and transport counters come from the pion stats
// report, per-stream RTP counters from the stats interceptor keyed by the
// SSRCs of the attached senders and receivers.
func (c *Connection) GetStats() (*stats.Report, error) {
	if c.closed.IsBroken() {
		return nil, ErrConnectionClosed
	}

	report := stats.NewReport()
	for id, s := range c.pc.GetStats() {
		switch v := s.(type) {
		case webrtc.DataChannelStats:
			report.Add(stats.NewRecord(stats.TypeDataChannel, id, statsTimestampUS(v.Timestamp)).
				Set(stats.FieldDataChannelIdentifier, v.DataChannelIdentifier).
				Set(stats.FieldMessagesSent, v.MessagesSent).
				Set(stats.FieldBytesSent, v.BytesSent).
				Set(stats.FieldMessagesReceived, v.MessagesReceived).
				Set(stats.FieldBytesReceived, v.BytesReceived))
		case webrtc.TransportStats:
			report.Add(stats.NewRecord(stats.TypeTransport, id, statsTimestampUS(v.Timestamp)).
				Set(stats.FieldBytesSent, v.BytesSent).
				Set(stats.FieldBytesReceived, v.BytesReceived))
		}
	}

	if c.statsGetter != nil {
		now := time.Now().UnixMicro()
		c.collectSenderStats(report, now)
		c.collectReceiverStats(report, now)
	}

	telemetry.StatsQueries.Inc()
	return report, nil
}

func (c *Connection) collectSenderStats(report *stats.Report, timestampUS int64) {
	for _, sender := range c.pc.GetSenders() {
		track := sender.Track()
		if track == nil {
			continue
		}
		kind := track.Kind().String()
		for _, enc := range sender.GetParameters().Encodings {
			s := c.statsGetter.Get(uint32(enc.SSRC))
			if s == nil {
				continue
			}
			report.Add(outboundRTPRecord(track.ID(), kind, timestampUS, s.OutboundRTPStreamStats))
		}
		report.Add(trackRecord(track.ID(), kind, false, timestampUS))
	}
}

func (c *Connection) collectReceiverStats(report *stats.Report, timestampUS int64) {
	for _, receiver := range c.pc.GetReceivers() {
		track := receiver.Track()
		if track == nil {
			continue
		}
		s := c.statsGetter.Get(uint32(track.SSRC()))
		if s == nil {
			continue
		}
		trackID := track.ID()
		if trackID == "" {
			trackID = strconv.FormatUint(uint64(track.SSRC()), 10)
		}
		kind := track.Kind().String()
		report.Add(inboundRTPRecord(trackID, kind, timestampUS, s.InboundRTPStreamStats))
		report.Add(trackRecord(trackID, kind, true, timestampUS))
	}
}

func outboundRTPRecord(trackID, kind string, timestampUS int64, s pionstats.OutboundRTPStreamStats) *stats.Record {
	return stats.NewRecord(stats.TypeOutboundRTP, "outbound-rtp-"+trackID, timestampUS).
		Set(stats.FieldKind, kind).
		Set(stats.FieldTrackID, trackID).
		Set(stats.FieldPacketsSent, s.PacketsSent).
		Set(stats.FieldBytesSent, s.BytesSent)
}

func inboundRTPRecord(trackID, kind string, timestampUS int64, s pionstats.InboundRTPStreamStats) *stats.Record {
	return stats.NewRecord(stats.TypeInboundRTP, "inbound-rtp-"+trackID, timestampUS).
		Set(stats.FieldKind, kind).
		Set(stats.FieldTrackID, trackID).
		Set(stats.FieldPacketsReceived, s.PacketsReceived).
		Set(stats.FieldBytesReceived, s.BytesReceived)
}

func trackRecord(trackID, kind string, remote bool, timestampUS int64) *stats.Record {
	return stats.NewRecord(stats.TypeTrack, trackID, timestampUS).
		Set(stats.FieldKind, kind).
		Set(stats.FieldTrackIdentifier, trackID).
		Set(stats.FieldRemoteSource, remote)
}

// GetStatsAsync collects stats on the engine's job pool and hands the
// report to done. The callback runs exactly once, with a nil report on
// failure.
func (c *Connection) GetStatsAsync(done func(report *stats.Report, err error)) {
	c.engine.workers.Submit(func() {
		done(c.GetStats())
	})
}

func statsTimestampUS(ts webrtc.StatsTimestamp) int64 {
	return int64(float64(ts) * 1000)
}
