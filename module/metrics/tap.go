package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tapnet/tap-core/module"
)

type TapCollector struct {
	receiptsSubmitted   prometheus.Counter     // total receipts entering the Checking state
	receiptsChecked     *prometheus.CounterVec // checked receipts by outcome and failed check
	checkDuration       prometheus.Histogram   // duration of the initial checks of one receipt
	receiptsReserved    prometheus.Counter     // total receipts reaching Reserved
	trackedReceipts     prometheus.Gauge       // receipts held by the receipt pool
	ravRequests         prometheus.Counter     // total aggregation cycles
	ravReceipts         *prometheus.CounterVec // receipts partitioned by aggregation, by outcome
	aggregationDuration prometheus.Histogram   // duration of one aggregation cycle
	ravsStored          prometheus.Counter     // total countersigned RAVs stored
	overflows           prometheus.Counter     // aggregation cycles aborted on value overflow
}

var _ module.TapMetrics = (*TapCollector)(nil)

func NewTapCollector(registerer prometheus.Registerer) *TapCollector {
	tc := &TapCollector{
		receiptsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "submitted_total",
			Namespace: namespaceTap,
			Subsystem: subsystemReceipts,
			Help:      "total number of receipts submitted for checking",
		}),
		receiptsChecked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "checked_total",
			Namespace: namespaceTap,
			Subsystem: subsystemReceipts,
			Help:      "total number of receipts checked, by outcome and failed check",
		}, []string{LabelOutcome, LabelCheck}),
		checkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:      "check_duration_seconds",
			Namespace: namespaceTap,
			Subsystem: subsystemReceipts,
			Help:      "duration of the initial checks of a receipt",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		receiptsReserved: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "reserved_total",
			Namespace: namespaceTap,
			Subsystem: subsystemReceipts,
			Help:      "total number of receipts whose value was reserved from escrow",
		}),
		trackedReceipts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "tracked",
			Namespace: namespaceTap,
			Subsystem: subsystemReceipts,
			Help:      "number of receipts held by the receipt pool",
		}),
		ravRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "requests_total",
			Namespace: namespaceTap,
			Subsystem: subsystemAggregation,
			Help:      "total number of RAV requests built",
		}),
		ravReceipts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "receipts_total",
			Namespace: namespaceTap,
			Subsystem: subsystemAggregation,
			Help:      "total number of receipts partitioned by aggregation, by outcome",
		}, []string{LabelOutcome}),
		aggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:      "duration_seconds",
			Namespace: namespaceTap,
			Subsystem: subsystemAggregation,
			Help:      "duration of an aggregation cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		ravsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "ravs_stored_total",
			Namespace: namespaceTap,
			Subsystem: subsystemAggregation,
			Help:      "total number of countersigned RAVs stored",
		}),
		overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "overflows_total",
			Namespace: namespaceTap,
			Subsystem: subsystemAggregation,
			Help:      "total number of aggregation cycles aborted on value overflow",
		}),
	}

	registerer.MustRegister(
		tc.receiptsSubmitted,
		tc.receiptsChecked,
		tc.checkDuration,
		tc.receiptsReserved,
		tc.trackedReceipts,
		tc.ravRequests,
		tc.ravReceipts,
		tc.aggregationDuration,
		tc.ravsStored,
		tc.overflows,
	)

	return tc
}

func (tc *TapCollector) ReceiptSubmitted() {
	tc.receiptsSubmitted.Inc()
}

func (tc *TapCollector) ReceiptChecked(failedCheck string, duration time.Duration) {
	outcome := OutcomeAccepted
	if failedCheck != "" {
		outcome = OutcomeRejected
	}
	tc.receiptsChecked.WithLabelValues(outcome, failedCheck).Inc()
	tc.checkDuration.Observe(duration.Seconds())
}

func (tc *TapCollector) ReceiptReserved() {
	tc.receiptsReserved.Inc()
}

func (tc *TapCollector) RAVRequested(valid int, invalid int, duration time.Duration) {
	tc.ravRequests.Inc()
	tc.ravReceipts.WithLabelValues(OutcomeAccepted).Add(float64(valid))
	tc.ravReceipts.WithLabelValues(OutcomeRejected).Add(float64(invalid))
	tc.aggregationDuration.Observe(duration.Seconds())
}

func (tc *TapCollector) RAVStored() {
	tc.ravsStored.Inc()
}

func (tc *TapCollector) AggregationOverflow() {
	tc.overflows.Inc()
}

func (tc *TapCollector) TrackedReceipts(size uint) {
	tc.trackedReceipts.Set(float64(size))
}
