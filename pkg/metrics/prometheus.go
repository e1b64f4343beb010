package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder пишет события движка сигналов в Prometheus.
type Recorder struct {
	signalsTotal     *prometheus.CounterVec
	outcomesTotal    *prometheus.CounterVec
	retriesTotal     prometheus.Counter
	dataUnavailable  *prometheus.CounterVec
	deliveryFailures *prometheus.CounterVec
	summariesTotal   prometheus.Counter
	queueLength      prometheus.Gauge
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		signalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_bot_signals_total",
				Help: "Signals queued for evaluation",
			},
			[]string{"symbol", "pattern"},
		),
		outcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_bot_outcomes_total",
				Help: "Finalised signal outcomes",
			},
			[]string{"result"},
		),
		retriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "signal_bot_martingale_retries_total",
				Help: "Martingale re-evaluations started",
			},
		),
		dataUnavailable: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_bot_data_unavailable_total",
				Help: "Market data fetches that returned nothing",
			},
			[]string{"stage"},
		),
		deliveryFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_bot_delivery_failures_total",
				Help: "Messages the notifier failed to deliver",
			},
			[]string{"kind"},
		),
		summariesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "signal_bot_session_summaries_total",
				Help: "Session summaries emitted",
			},
		),
		queueLength: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "signal_bot_queue_length",
				Help: "Signals waiting for evaluation",
			},
		),
	}
	reg.MustRegister(
		r.signalsTotal,
		r.outcomesTotal,
		r.retriesTotal,
		r.dataUnavailable,
		r.deliveryFailures,
		r.summariesTotal,
		r.queueLength,
	)
	return r
}

func (r *Recorder) RecordSignal(symbol, pattern string) {
	r.signalsTotal.WithLabelValues(symbol, pattern).Inc()
}

func (r *Recorder) RecordOutcome(result string) {
	r.outcomesTotal.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordRetry() { r.retriesTotal.Inc() }

// RecordDataUnavailable: stage = "scan" | "evaluate".
func (r *Recorder) RecordDataUnavailable(stage string) {
	r.dataUnavailable.WithLabelValues(stage).Inc()
}

func (r *Recorder) RecordDeliveryFailure(kind string) {
	r.deliveryFailures.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordSummary() { r.summariesTotal.Inc() }

func (r *Recorder) SetQueueLength(n int) { r.queueLength.Set(float64(n)) }
