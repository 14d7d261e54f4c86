package stats

// Flat snapshot records assembled from a Report. Fields the engine did not
// report are zero.

type DataChannelStats struct {
	TimestampUS      int64
	DataChannelID    int64
	MessagesSent     uint32
	BytesSent        uint64
	MessagesReceived uint32
	BytesReceived    uint64
}

type AudioSenderStats struct {
	RTPStatsTimestampUS   int64
	PacketsSent           uint32
	BytesSent             uint64
	TrackStatsTimestampUS int64
	TrackIdentifier       string
	AudioLevel            float64
	TotalAudioEnergy      float64
	TotalSamplesDuration  float64
}

type AudioReceiverStats struct {
	RTPStatsTimestampUS   int64
	PacketsReceived       uint32
	BytesReceived         uint64
	TrackStatsTimestampUS int64
	TrackIdentifier       string
	AudioLevel            float64
	TotalAudioEnergy      float64
	TotalSamplesReceived  uint64
	TotalSamplesDuration  float64
}

type VideoSenderStats struct {
	RTPStatsTimestampUS   int64
	PacketsSent           uint32
	BytesSent             uint64
	FramesEncoded         uint32
	TrackStatsTimestampUS int64
	TrackIdentifier       string
	FramesSent            uint32
	HugeFramesSent        uint32
}

type VideoReceiverStats struct {
	RTPStatsTimestampUS   int64
	PacketsReceived       uint32
	BytesReceived         uint64
	FramesDecoded         uint32
	TrackStatsTimestampUS int64
	TrackIdentifier       string
	FramesReceived        uint32
	FramesDropped         uint32
}

type TransportStats struct {
	TimestampUS   int64
	BytesSent     uint64
	BytesReceived uint64
}
