package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const interopNamespace = "interop"

var (
	FramesBroadcast      prometheus.Counter
	CaptureSourcesActive prometheus.Gauge
	DataChannelBytes     *prometheus.CounterVec
	StatsQueries         prometheus.Counter
	ConnectionsCurrent   prometheus.Gauge
)

func init() {
	FramesBroadcast = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: interopNamespace,
		Subsystem: "media",
		Name:      "frames_total",
	})
	CaptureSourcesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: interopNamespace,
		Subsystem: "media",
		Name:      "capture_sources_active",
	})
	DataChannelBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: interopNamespace,
		Subsystem: "data_channel",
		Name:      "bytes_total",
	}, []string{"direction"})
	StatsQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: interopNamespace,
		Subsystem: "stats",
		Name:      "queries_total",
	})
	ConnectionsCurrent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: interopNamespace,
		Subsystem: "rtc",
		Name:      "connections_current",
	})

	prometheus.MustRegister(FramesBroadcast)
	prometheus.MustRegister(CaptureSourcesActive)
	prometheus.MustRegister(DataChannelBytes)
	prometheus.MustRegister(StatsQueries)
	prometheus.MustRegister(ConnectionsCurrent)
}
