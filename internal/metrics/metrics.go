package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload outcomes.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalid       = "invalid"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeMediaFailed   = "media_failed"
	OutcomePersistFailed = "persist_failed"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediavault_uploads_total",
		Help: "Upload attempts by kind and outcome",
	}, []string{"kind", "outcome"}) // kind=video|image

	uploadBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediavault_upload_bytes_total",
		Help: "Bytes accepted from clients and stored remotely",
	}, []string{"stage"}) // stage=original|compressed

	mediaUploadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mediavault_media_upload_duration_seconds",
		Help:    "Latency of the remote media upload call",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"kind"})

	// Ассет загружен, но записи в каталоге нет
	orphanedAssetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediavault_orphaned_assets_total",
		Help: "Remote assets left without a catalog record after a persistence failure",
	})

	catalogListTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediavault_catalog_list_total",
		Help: "Catalog listing requests by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

// RecordUpload counts one upload attempt.
func RecordUpload(kind, outcome string) {
	uploadsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordUploadBytes adds accepted and stored sizes of a completed upload.
func RecordUploadBytes(original, compressed int64) {
	if original > 0 {
		uploadBytesTotal.WithLabelValues("original").Add(float64(original))
	}
	if compressed > 0 {
		uploadBytesTotal.WithLabelValues("compressed").Add(float64(compressed))
	}
}

func ObserveMediaUpload(kind string, d time.Duration) {
	mediaUploadDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func RecordOrphanedAsset() {
	orphanedAssetsTotal.Inc()
}

func RecordCatalogList(success bool) {
	if success {
		catalogListTotal.WithLabelValues(OutcomeSuccess).Inc()
		return
	}
	catalogListTotal.WithLabelValues("failure").Inc()
}
