package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics коллекторы Prometheus цикла мониторинга
type Metrics struct {
	Ticks          prometheus.Counter
	Inferences     prometheus.Counter
	Detections     *prometheus.CounterVec
	Triggers       *prometheus.CounterVec
	FrameErrors    *prometheus.CounterVec
	Actions        *prometheus.CounterVec
	DispatchErrors *prometheus.CounterVec
	FailureCount   prometheus.Gauge
	TickDuration   prometheus.Histogram

	registry *prometheus.Registry
}

// New создаёт метрики в собственном реестре.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "printguard_ticks_total",
			Help: "Total monitor loop iterations",
		}),
		Inferences: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "printguard_inferences_total",
			Help: "Total detector invocations",
		}),
		Detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "printguard_detections_total",
			Help: "Detections above the detect threshold",
		}, []string{"camera", "category"}),
		Triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "printguard_triggers_total",
			Help: "Detections above the trigger threshold",
		}, []string{"camera", "category"}),
		FrameErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "printguard_frame_errors_total",
			Help: "Camera fetch or decode failures",
		}, []string{"camera"}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "printguard_actions_total",
			Help: "Commands sent to the printer controller",
		}, []string{"action"}),
		DispatchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "printguard_dispatch_errors_total",
			Help: "Failed printer controller or notifier calls",
		}, []string{"action"}),
		FailureCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "printguard_failure_count",
			Help: "Current hysteresis counter value",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "printguard_tick_duration_seconds",
			Help:    "Monitor loop iteration duration",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.Ticks, m.Inferences, m.Detections, m.Triggers, m.FrameErrors,
		m.Actions, m.DispatchErrors, m.FailureCount, m.TickDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Camera метка камеры.
func Camera(id int) string {
	return strconv.Itoa(id)
}

// ObserveTick учитывает итерацию цикла.
func (m *Metrics) ObserveTick(d time.Duration) {
	m.Ticks.Inc()
	m.TickDuration.Observe(d.Seconds())
}

// Registry возвращает реестр (для тестов).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler возвращает HTTP-обработчик Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
