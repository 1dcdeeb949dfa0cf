package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution sources.
const (
	SourceDefault  = "default"
	SourceCustom   = "custom"
	SourceFallback = "fallback"
)

// Recorder owns the process metrics. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	registry    *prometheus.Registry
	uploads     *prometheus.CounterVec
	deletes     prometheus.Counter
	resolutions *prometheus.CounterVec
	storageUsed prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotimg_uploads_total",
			Help: "Asset uploads by result.",
		}, []string{"result"}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slotimg_asset_deletes_total",
			Help: "Assets removed from the library.",
		}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotimg_resolutions_total",
			Help: "Slot resolutions by the source of the returned URL.",
		}, []string{"source"}),
		storageUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slotimg_storage_used_bytes",
			Help: "Bytes of rendition storage in use at the last quota check.",
		}),
	}
	r.registry.MustRegister(r.uploads, r.deletes, r.resolutions, r.storageUsed)
	return r
}

func (r *Recorder) Upload(result string) {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues(result).Inc()
}

func (r *Recorder) Delete() {
	if r == nil {
		return
	}
	r.deletes.Inc()
}

func (r *Recorder) Resolution(source string) {
	if r == nil {
		return
	}
	r.resolutions.WithLabelValues(source).Inc()
}

func (r *Recorder) StorageUsed(bytes int64) {
	if r == nil {
		return
	}
	r.storageUsed.Set(float64(bytes))
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Uploads and Resolutions expose the vectors for tests.
func (r *Recorder) Uploads() *prometheus.CounterVec     { return r.uploads }
func (r *Recorder) Resolutions() *prometheus.CounterVec { return r.resolutions }
