package stats

// Record categories found in a report.
const (
	TypeOutboundRTP = "outbound-rtp"
	TypeInboundRTP  = "inbound-rtp"
	TypeTrack       = "track"
	TypeDataChannel = "data-channel"
	TypeTransport   = "transport"
)

// Well-known field names. A field may be absent on a given record; readers
// must treat absence as zero, never as garbage.
const (
	FieldKind                  = "kind"
	FieldTrackID               = "trackId"
	FieldTrackIdentifier       = "trackIdentifier"
	FieldRemoteSource          = "remoteSource"
	FieldPacketsSent           = "packetsSent"
	FieldBytesSent             = "bytesSent"
	FieldPacketsReceived       = "packetsReceived"
	FieldBytesReceived         = "bytesReceived"
	FieldFramesEncoded         = "framesEncoded"
	FieldFramesDecoded         = "framesDecoded"
	FieldFramesSent            = "framesSent"
	FieldHugeFramesSent        = "hugeFramesSent"
	FieldFramesReceived        = "framesReceived"
	FieldFramesDropped         = "framesDropped"
	FieldAudioLevel            = "audioLevel"
	FieldTotalAudioEnergy      = "totalAudioEnergy"
	FieldTotalSamplesReceived  = "totalSamplesReceived"
	FieldTotalSamplesDuration  = "totalSamplesDuration"
	FieldDataChannelIdentifier = "dataChannelIdentifier"
	FieldMessagesSent          = "messagesSent"
	FieldMessagesReceived      = "messagesReceived"
)

// Record is one self-describing telemetry record: a category, an id, a
// timestamp and a set of optionally-present named fields.
type Record struct {
	Type        string
	ID          string
	TimestampUS int64

	fields map[string]interface{}
}

func NewRecord(recordType, id string, timestampUS int64) *Record {
	return &Record{
		Type:        recordType,
		ID:          id,
		TimestampUS: timestampUS,
		fields:      make(map[string]interface{}),
	}
}

func (r *Record) Set(name string, value interface{}) *Record {
	r.fields[name] = value
	return r
}

func (r *Record) Defined(name string) bool {
	_, ok := r.fields[name]
	return ok
}

func (r *Record) str(name string) string {
	if v, ok := r.fields[name].(string); ok {
		return v
	}
	return ""
}

func (r *Record) boolean(name string) bool {
	if v, ok := r.fields[name].(bool); ok {
		return v
	}
	return false
}

func (r *Record) u32(name string) uint32 {
	switch v := r.fields[name].(type) {
	case uint32:
		return v
	case int:
		return uint32(v)
	case uint64:
		return uint32(v)
	case float64:
		return uint32(v)
	}
	return 0
}

func (r *Record) u64(name string) uint64 {
	switch v := r.fields[name].(type) {
	case uint64:
		return v
	case uint32:
		return uint64(v)
	case int:
		return uint64(v)
	case float64:
		return uint64(v)
	}
	return 0
}

func (r *Record) i64(name string) int64 {
	switch v := r.fields[name].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case uint16:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func (r *Record) f64(name string) float64 {
	switch v := r.fields[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Report is a point-in-time, read-only snapshot of telemetry records for
// one connection. Records are an unordered bag; only the transcoder's
// first-seen delivery order is specified.
type Report struct {
	records []*Record
}

func NewReport() *Report {
	return &Report{}
}

func (r *Report) Add(rec *Record) {
	r.records = append(r.records, rec)
}

func (r *Report) Records() []*Record {
	return r.records
}
