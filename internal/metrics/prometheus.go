package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	signIns       *prometheus.CounterVec
	signOuts      *prometheus.CounterVec
	keysGenerated prometheus.Counter
	keysDeleted   prometheus.Counter
	keysLoaded    prometheus.Counter
	loadFailures  prometheus.Counter
	renderedKeys  prometheus.Gauge
}

// NewPrometheus creates a Recorder registering collectors with the
// default Prometheus registry.
func NewPrometheus() *PrometheusRecorder {
	return &PrometheusRecorder{
		signIns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keydock_sign_ins_total",
				Help: "Total number of sign-in attempts",
			},
			[]string{"result"},
		),
		signOuts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keydock_sign_outs_total",
				Help: "Total number of sign-out attempts",
			},
			[]string{"result"},
		),
		keysGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keydock_keys_generated_total",
			Help: "Total number of API keys generated",
		}),
		keysDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keydock_keys_deleted_total",
			Help: "Total number of API keys deleted",
		}),
		keysLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keydock_key_list_loads_total",
			Help: "Total number of successful key list loads",
		}),
		loadFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keydock_key_list_load_failures_total",
			Help: "Total number of failed key list loads",
		}),
		renderedKeys: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "keydock_rendered_keys",
			Help: "Number of keys in the rendered list",
		}),
	}
}

// IncSignIn increments the sign-in counter for the given result.
func (p *PrometheusRecorder) IncSignIn(result string) {
	p.signIns.WithLabelValues(result).Inc()
}

// IncSignOut increments the sign-out counter for the given result.
func (p *PrometheusRecorder) IncSignOut(result string) {
	p.signOuts.WithLabelValues(result).Inc()
}

// IncKeyGenerated increments the generated-keys counter.
func (p *PrometheusRecorder) IncKeyGenerated() {
	p.keysGenerated.Inc()
}

// IncKeyDeleted increments the deleted-keys counter.
func (p *PrometheusRecorder) IncKeyDeleted() {
	p.keysDeleted.Inc()
}

// IncKeysLoaded increments the successful-load counter.
func (p *PrometheusRecorder) IncKeysLoaded() {
	p.keysLoaded.Inc()
}

// IncLoadFailed increments the failed-load counter.
func (p *PrometheusRecorder) IncLoadFailed() {
	p.loadFailures.Inc()
}

// SetRenderedKeys sets the rendered-list size gauge.
func (p *PrometheusRecorder) SetRenderedKeys(count int) {
	p.renderedKeys.Set(float64(count))
}
