package rtc

import (
	"testing"
	"time"

	pionstats "github.com/pion/interceptor/pkg/stats"
	"github.com/stretchr/testify/require"

	"github.com/peerlink/interop/pkg/media"
	"github.com/peerlink/interop/pkg/stats"
)

func TestGetStatsSnapshot(t *testing.T) {
	conn := newTestConnection(t)

	report, err := conn.GetStats()
	require.NoError(t, err)
	require.NotNil(t, report)
	for _, rec := range report.Records() {
		require.NotEmpty(t, rec.Type)
		require.NotEmpty(t, rec.ID)
	}
}

func TestGetStatsAsyncDeliversOnce(t *testing.T) {
	conn := newTestConnection(t)

	done := make(chan *stats.Report, 1)
	conn.GetStatsAsync(func(report *stats.Report, err error) {
		require.NoError(t, err)
		done <- report
	})

	select {
	case report := <-done:
		require.NotNil(t, report)
	case <-time.After(5 * time.Second):
		t.Fatal("stats callback never ran")
	}
}

func TestGetStatsReportsLocalTracks(t *testing.T) {
	conn := newTestConnection(t)

	source := media.NewExternalSource()
	track, err := conn.AddLocalVideoTrack("camera", source)
	require.NoError(t, err)

	report, err := conn.GetStats()
	require.NoError(t, err)

	var tracks []*stats.Record
	for _, rec := range report.Records() {
		if rec.Type == stats.TypeTrack {
			tracks = append(tracks, rec)
		}
	}
	require.Len(t, tracks, 1)
	require.Equal(t, track.ID(), tracks[0].ID)

	// the sender track surfaces as a video sender snapshot even before
	// any RTP has flowed
	var senders []*stats.VideoSenderStats
	require.NoError(t, stats.GetObjects(report, stats.CategoryVideoSender, func(snapshot interface{}) {
		senders = append(senders, snapshot.(*stats.VideoSenderStats))
	}))
	require.Len(t, senders, 1)
	require.Equal(t, track.ID(), senders[0].TrackIdentifier)
}

func TestRTPRecordsJoinWithTracks(t *testing.T) {
	now := time.Now().UnixMicro()
	report := stats.NewReport()
	report.Add(outboundRTPRecord("tr-1", "video", now, pionstats.OutboundRTPStreamStats{
		SentRTPStreamStats: pionstats.SentRTPStreamStats{PacketsSent: 7, BytesSent: 900},
	}))
	report.Add(trackRecord("tr-1", "video", false, now))
	report.Add(inboundRTPRecord("tr-2", "audio", now, pionstats.InboundRTPStreamStats{
		ReceivedRTPStreamStats: pionstats.ReceivedRTPStreamStats{PacketsReceived: 3},
		BytesReceived:          240,
	}))
	report.Add(trackRecord("tr-2", "audio", true, now))

	var videoSenders []*stats.VideoSenderStats
	require.NoError(t, stats.GetObjects(report, stats.CategoryVideoSender, func(snapshot interface{}) {
		videoSenders = append(videoSenders, snapshot.(*stats.VideoSenderStats))
	}))
	require.Len(t, videoSenders, 1)
	require.EqualValues(t, 7, videoSenders[0].PacketsSent)
	require.EqualValues(t, 900, videoSenders[0].BytesSent)
	require.Equal(t, "tr-1", videoSenders[0].TrackIdentifier)

	var audioReceivers []*stats.AudioReceiverStats
	require.NoError(t, stats.GetObjects(report, stats.CategoryAudioReceiver, func(snapshot interface{}) {
		audioReceivers = append(audioReceivers, snapshot.(*stats.AudioReceiverStats))
	}))
	require.Len(t, audioReceivers, 1)
	require.EqualValues(t, 3, audioReceivers[0].PacketsReceived)
	require.EqualValues(t, 240, audioReceivers[0].BytesReceived)
	require.Equal(t, "tr-2", audioReceivers[0].TrackIdentifier)
}

func TestStatsTimestampConversion(t *testing.T) {
	// pion timestamps are milliseconds with fractional precision
	require.EqualValues(t, 1_500_000, statsTimestampUS(1500))
	require.EqualValues(t, 1_500_250, statsTimestampUS(1500.25))
	require.Zero(t, statsTimestampUS(0))
}
