package stats

import (
	"github.com/elliotchance/orderedmap/v2"
)

// VisitFunc receives one flat snapshot per matching entry. The concrete
// type matches the requested category.
type VisitFunc func(snapshot interface{})

// categories accepted by GetObjects
const (
	CategoryDataChannel   = "DataChannelStats"
	CategoryAudioSender   = "AudioSenderStats"
	CategoryAudioReceiver = "AudioReceiverStats"
	CategoryVideoSender   = "VideoSenderStats"
	CategoryVideoReceiver = "VideoReceiverStats"
	CategoryTransport     = "TransportStats"
)

// GetObjects flattens the report into snapshots of the requested category
// and delivers each to visit exactly once, in first-seen order. An
// unrecognized category yields zero visits and no error: this is a query
// facility, not a validation facility.
func GetObjects(report *Report, category string, visit VisitFunc) error {
	switch category {
	case CategoryDataChannel:
		for _, rec := range report.Records() {
			if rec.Type != TypeDataChannel {
				continue
			}
			visit(&DataChannelStats{
				TimestampUS:      rec.TimestampUS,
				DataChannelID:    rec.i64(FieldDataChannelIdentifier),
				MessagesSent:     rec.u32(FieldMessagesSent),
				BytesSent:        rec.u64(FieldBytesSent),
				MessagesReceived: rec.u32(FieldMessagesReceived),
				BytesReceived:    rec.u64(FieldBytesReceived),
			})
		}
	case CategoryAudioSender:
		transcodeAudioSender(report, visit)
	case CategoryAudioReceiver:
		transcodeAudioReceiver(report, visit)
	case CategoryVideoSender:
		transcodeVideoSender(report, visit)
	case CategoryVideoReceiver:
		transcodeVideoReceiver(report, visit)
	case CategoryTransport:
		for _, rec := range report.Records() {
			if rec.Type != TypeTransport {
				continue
			}
			visit(&TransportStats{
				TimestampUS:   rec.TimestampUS,
				BytesSent:     rec.u64(FieldBytesSent),
				BytesReceived: rec.u64(FieldBytesReceived),
			})
		}
	}
	return nil
}

func findOrInsert[T any](m *orderedmap.OrderedMap[string, *T], id string) *T {
	if v, ok := m.Get(id); ok {
		return v
	}
	v := new(T)
	m.Set(id, v)
	return v
}

// senders and receivers join outbound/inbound RTP records with track
// records of the same media kind. Pass one indexes RTP records by their
// associated track id; RTP records with no track belong to a removed track
// and are skipped. Pass two merges matching track records by their own id,
// inserting entries that pass one never saw. Every accumulated entry is
// delivered once, in first-seen order.

func transcodeAudioSender(report *Report, visit VisitFunc) {
	pending := orderedmap.NewOrderedMap[string, *AudioSenderStats]()
	for _, rec := range report.Records() {
		if rec.Type != TypeOutboundRTP || rec.str(FieldKind) != "audio" || !rec.Defined(FieldTrackID) {
			continue
		}
		dest := findOrInsert(pending, rec.str(FieldTrackID))
		dest.RTPStatsTimestampUS = rec.TimestampUS
		dest.PacketsSent = rec.u32(FieldPacketsSent)
		dest.BytesSent = rec.u64(FieldBytesSent)
	}
	for _, rec := range report.Records() {
		if rec.Type != TypeTrack || rec.str(FieldKind) != "audio" || rec.boolean(FieldRemoteSource) {
			continue
		}
		dest := findOrInsert(pending, rec.ID)
		dest.TrackStatsTimestampUS = rec.TimestampUS
		dest.TrackIdentifier = rec.str(FieldTrackIdentifier)
		dest.AudioLevel = rec.f64(FieldAudioLevel)
		dest.TotalAudioEnergy = rec.f64(FieldTotalAudioEnergy)
		dest.TotalSamplesDuration = rec.f64(FieldTotalSamplesDuration)
	}
	for el := pending.Front(); el != nil; el = el.Next() {
		visit(el.Value)
	}
}

func transcodeAudioReceiver(report *Report, visit VisitFunc) {
	pending := orderedmap.NewOrderedMap[string, *AudioReceiverStats]()
	for _, rec := range report.Records() {
		if rec.Type != TypeInboundRTP || rec.str(FieldKind) != "audio" || !rec.Defined(FieldTrackID) {
			continue
		}
		dest := findOrInsert(pending, rec.str(FieldTrackID))
		dest.RTPStatsTimestampUS = rec.TimestampUS
		dest.PacketsReceived = rec.u32(FieldPacketsReceived)
		dest.BytesReceived = rec.u64(FieldBytesReceived)
	}
	for _, rec := range report.Records() {
		if rec.Type != TypeTrack || rec.str(FieldKind) != "audio" || !rec.boolean(FieldRemoteSource) {
			continue
		}
		dest := findOrInsert(pending, rec.ID)
		dest.TrackStatsTimestampUS = rec.TimestampUS
		dest.TrackIdentifier = rec.str(FieldTrackIdentifier)
		// undefined in some not well specified cases, keep the zero default
		dest.AudioLevel = rec.f64(FieldAudioLevel)
		dest.TotalAudioEnergy = rec.f64(FieldTotalAudioEnergy)
		dest.TotalSamplesReceived = rec.u64(FieldTotalSamplesReceived)
		dest.TotalSamplesDuration = rec.f64(FieldTotalSamplesDuration)
	}
	for el := pending.Front(); el != nil; el = el.Next() {
		visit(el.Value)
	}
}

func transcodeVideoSender(report *Report, visit VisitFunc) {
	pending := orderedmap.NewOrderedMap[string, *VideoSenderStats]()
	for _, rec := range report.Records() {
		if rec.Type != TypeOutboundRTP || rec.str(FieldKind) != "video" || !rec.Defined(FieldTrackID) {
			continue
		}
		dest := findOrInsert(pending, rec.str(FieldTrackID))
		dest.RTPStatsTimestampUS = rec.TimestampUS
		dest.PacketsSent = rec.u32(FieldPacketsSent)
		dest.BytesSent = rec.u64(FieldBytesSent)
		dest.FramesEncoded = rec.u32(FieldFramesEncoded)
	}
	for _, rec := range report.Records() {
		if rec.Type != TypeTrack || rec.str(FieldKind) != "video" || rec.boolean(FieldRemoteSource) {
			continue
		}
		dest := findOrInsert(pending, rec.ID)
		dest.TrackStatsTimestampUS = rec.TimestampUS
		dest.TrackIdentifier = rec.str(FieldTrackIdentifier)
		dest.FramesSent = rec.u32(FieldFramesSent)
		dest.HugeFramesSent = rec.u32(FieldHugeFramesSent)
	}
	for el := pending.Front(); el != nil; el = el.Next() {
		visit(el.Value)
	}
}

func transcodeVideoReceiver(report *Report, visit VisitFunc) {
	pending := orderedmap.NewOrderedMap[string, *VideoReceiverStats]()
	for _, rec := range report.Records() {
		if rec.Type != TypeInboundRTP || rec.str(FieldKind) != "video" || !rec.Defined(FieldTrackID) {
			continue
		}
		dest := findOrInsert(pending, rec.str(FieldTrackID))
		dest.RTPStatsTimestampUS = rec.TimestampUS
		dest.PacketsReceived = rec.u32(FieldPacketsReceived)
		dest.BytesReceived = rec.u64(FieldBytesReceived)
		dest.FramesDecoded = rec.u32(FieldFramesDecoded)
	}
	for _, rec := range report.Records() {
		if rec.Type != TypeTrack || rec.str(FieldKind) != "video" || !rec.boolean(FieldRemoteSource) {
			continue
		}
		dest := findOrInsert(pending, rec.ID)
		dest.TrackStatsTimestampUS = rec.TimestampUS
		dest.TrackIdentifier = rec.str(FieldTrackIdentifier)
		dest.FramesReceived = rec.u32(FieldFramesReceived)
		dest.FramesDropped = rec.u32(FieldFramesDropped)
	}
	for el := pending.Front(); el != nil; el = el.Next() {
		visit(el.Value)
	}
}
