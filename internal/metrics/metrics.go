package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CompressRequests counts completed /api/compress requests by outcome.
	CompressRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagepress_compress_requests_total",
			Help: "Completed compression requests partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	// CompressFailures counts handled failures by error kind.
	CompressFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagepress_compress_failures_total",
			Help: "Handled compression failures partitioned by error kind.",
		},
		[]string{"kind"},
	)

	// BytesIn totals raw upload bytes accepted for compression.
	BytesIn = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "imagepress_upload_bytes_total",
		Help: "Raw uploaded image bytes accepted for compression.",
	})

	// BytesOut totals re-encoded bytes returned to callers.
	BytesOut = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "imagepress_compressed_bytes_total",
		Help: "Re-encoded image bytes returned to callers.",
	})

	// CompressDuration observes the full store-read-encode pipeline duration.
	CompressDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "imagepress_compress_duration_seconds",
		Help:    "Duration of the upload-to-compression pipeline.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		CompressRequests,
		CompressFailures,
		BytesIn,
		BytesOut,
		CompressDuration,
	)
}
