package segments

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	predictions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	loaded      prometheus.Gauge
	info        *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "segmenter_predictions_total",
				Help: "Predictions served by assigned cluster.",
			},
			[]string{"cluster"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "segmenter_prediction_failures_total",
				Help: "Rejected or failed predictions by reason.",
			},
			[]string{"reason"},
		),
		loaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "segmenter_model_loaded",
				Help: "1 when a model artifact is loaded, 0 otherwise.",
			},
		),
		info: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "segmenter_model_info",
				Help: "Loaded model version and cluster count.",
			},
			[]string{"version", "k"},
		),
	}
}

func (m *metrics) observe(cluster int) {
	m.predictions.WithLabelValues(strconv.Itoa(cluster)).Inc()
}

func (m *metrics) fail(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}
