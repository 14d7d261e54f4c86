package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, report *Report, category string) []interface{} {
	t.Helper()
	var out []interface{}
	require.NoError(t, GetObjects(report, category, func(s interface{}) {
		out = append(out, s)
	}))
	return out
}

func TestUnknownCategoryIsNotAnError(t *testing.T) {
	report := NewReport()
	report.Add(NewRecord(TypeTransport, "T", 1).Set(FieldBytesSent, uint64(10)))

	out := collect(t, report, "BogusStats")
	require.Empty(t, out)
}

func TestDataChannelStats(t *testing.T) {
	report := NewReport()
	report.Add(NewRecord(TypeDataChannel, "DC1", 1000).
		Set(FieldDataChannelIdentifier, int64(3)).
		Set(FieldMessagesSent, uint32(7)).
		Set(FieldBytesSent, uint64(700)).
		Set(FieldMessagesReceived, uint32(5)).
		Set(FieldBytesReceived, uint64(500)))
	report.Add(NewRecord(TypeTransport, "T1", 1000))

	out := collect(t, report, CategoryDataChannel)
	require.Len(t, out, 1)
	dc := out[0].(*DataChannelStats)
	require.Equal(t, int64(1000), dc.TimestampUS)
	require.Equal(t, int64(3), dc.DataChannelID)
	require.Equal(t, uint32(7), dc.MessagesSent)
	require.Equal(t, uint64(700), dc.BytesSent)
	require.Equal(t, uint32(5), dc.MessagesReceived)
	require.Equal(t, uint64(500), dc.BytesReceived)
}

func TestTransportStats(t *testing.T) {
	report := NewReport()
	report.Add(NewRecord(TypeTransport, "T1", 42).
		Set(FieldBytesSent, uint64(1234)).
		Set(FieldBytesReceived, uint64(4321)))

	out := collect(t, report, CategoryTransport)
	require.Len(t, out, 1)
	tr := out[0].(*TransportStats)
	require.Equal(t, uint64(1234), tr.BytesSent)
	require.Equal(t, uint64(4321), tr.BytesReceived)
}

func TestVideoSenderJoin(t *testing.T) {
	report := NewReport()
	report.Add(NewRecord(TypeOutboundRTP, "OUT1", 2000).
		Set(FieldKind, "video").
		Set(FieldTrackID, "T1").
		Set(FieldPacketsSent, uint32(100)).
		Set(FieldBytesSent, uint64(9000)).
		Set(FieldFramesEncoded, uint32(10)))
	report.Add(NewRecord(TypeTrack, "T1", 2001).
		Set(FieldKind, "video").
		Set(FieldRemoteSource, false).
		Set(FieldTrackIdentifier, "video_track_0").
		Set(FieldFramesSent, uint32(9)))

	out := collect(t, report, CategoryVideoSender)
	require.Len(t, out, 1)
	vs := out[0].(*VideoSenderStats)
	require.Equal(t, int64(2000), vs.RTPStatsTimestampUS)
	require.Equal(t, uint32(100), vs.PacketsSent)
	require.Equal(t, uint64(9000), vs.BytesSent)
	require.Equal(t, uint32(10), vs.FramesEncoded)
	require.Equal(t, int64(2001), vs.TrackStatsTimestampUS)
	require.Equal(t, "video_track_0", vs.TrackIdentifier)
	require.Equal(t, uint32(9), vs.FramesSent)
	// not reported by the engine, defaults to zero
	require.Zero(t, vs.HugeFramesSent)
}

func TestVideoSenderSkipsTracklessRTP(t *testing.T) {
	report := NewReport()
	// a removed track leaves a trackless RTP stream behind
	report.Add(NewRecord(TypeOutboundRTP, "OUT1", 1).
		Set(FieldKind, "video").
		Set(FieldPacketsSent, uint32(50)))

	out := collect(t, report, CategoryVideoSender)
	require.Empty(t, out)
}

func TestVideoSenderIgnoresRemoteAndAudio(t *testing.T) {
	report := NewReport()
	report.Add(NewRecord(TypeTrack, "T1", 1).
		Set(FieldKind, "video").
		Set(FieldRemoteSource, true).
		Set(FieldFramesReceived, uint32(3)))
	report.Add(NewRecord(TypeOutboundRTP, "OUT1", 1).
		Set(FieldKind, "audio").
		Set(FieldTrackID, "T2"))

	out := collect(t, report, CategoryVideoSender)
	require.Empty(t, out)
}

func TestVideoReceiverTrackOnlyEntry(t *testing.T) {
	// pass two may insert entries pass one never saw
	report := NewReport()
	report.Add(NewRecord(TypeTrack, "T9", 5).
		Set(FieldKind, "video").
		Set(FieldRemoteSource, true).
		Set(FieldTrackIdentifier, "remote_video").
		Set(FieldFramesReceived, uint32(12)).
		Set(FieldFramesDropped, uint32(2)))

	out := collect(t, report, CategoryVideoReceiver)
	require.Len(t, out, 1)
	vr := out[0].(*VideoReceiverStats)
	require.Equal(t, "remote_video", vr.TrackIdentifier)
	require.Equal(t, uint32(12), vr.FramesReceived)
	require.Equal(t, uint32(2), vr.FramesDropped)
	require.Zero(t, vr.PacketsReceived)
}

func TestAudioReceiverZeroDefaults(t *testing.T) {
	report := NewReport()
	report.Add(NewRecord(TypeInboundRTP, "IN1", 10).
		Set(FieldKind, "audio").
		Set(FieldTrackID, "TA").
		Set(FieldPacketsReceived, uint32(42)).
		Set(FieldBytesReceived, uint64(4200)))
	// audioLevel deliberately not reported
	report.Add(NewRecord(TypeTrack, "TA", 11).
		Set(FieldKind, "audio").
		Set(FieldRemoteSource, true).
		Set(FieldTrackIdentifier, "remote_audio").
		Set(FieldTotalAudioEnergy, 1.5).
		Set(FieldTotalSamplesDuration, 3.25))

	out := collect(t, report, CategoryAudioReceiver)
	require.Len(t, out, 1)
	ar := out[0].(*AudioReceiverStats)
	require.Equal(t, uint32(42), ar.PacketsReceived)
	require.Equal(t, "remote_audio", ar.TrackIdentifier)
	require.Zero(t, ar.AudioLevel)
	require.Equal(t, 1.5, ar.TotalAudioEnergy)
	require.Equal(t, 3.25, ar.TotalSamplesDuration)
}

func TestAudioSenderFirstSeenOrder(t *testing.T) {
	report := NewReport()
	report.Add(NewRecord(TypeOutboundRTP, "OUT-B", 1).
		Set(FieldKind, "audio").
		Set(FieldTrackID, "TB").
		Set(FieldPacketsSent, uint32(2)))
	report.Add(NewRecord(TypeOutboundRTP, "OUT-A", 1).
		Set(FieldKind, "audio").
		Set(FieldTrackID, "TA").
		Set(FieldPacketsSent, uint32(1)))
	// track-only entry joins after the RTP-seeded ones
	report.Add(NewRecord(TypeTrack, "TC", 1).
		Set(FieldKind, "audio").
		Set(FieldRemoteSource, false).
		Set(FieldTrackIdentifier, "c"))
	report.Add(NewRecord(TypeTrack, "TA", 1).
		Set(FieldKind, "audio").
		Set(FieldRemoteSource, false).
		Set(FieldTrackIdentifier, "a"))

	out := collect(t, report, CategoryAudioSender)
	require.Len(t, out, 3)
	require.Equal(t, uint32(2), out[0].(*AudioSenderStats).PacketsSent)
	require.Equal(t, "a", out[1].(*AudioSenderStats).TrackIdentifier)
	require.Equal(t, "c", out[2].(*AudioSenderStats).TrackIdentifier)
}
