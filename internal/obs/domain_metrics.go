package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentsRecordedTotal counts payments accepted into bill ledgers.
	PaymentsRecordedTotal *prometheus.CounterVec
	// PaymentsRejectedTotal counts payment submissions rejected by validation.
	PaymentsRejectedTotal *prometheus.CounterVec
	// DiscountsAppliedTotal counts discount applications against bills.
	DiscountsAppliedTotal *prometheus.CounterVec
	// BillsSettledTotal counts bills reaching the fully paid state.
	BillsSettledTotal prometheus.Counter
	// WaiterCallsTotal counts waiter calls by outcome.
	WaiterCallsTotal *prometheus.CounterVec
	// PaymentAmountMinor observes accepted payment amounts in minor units.
	PaymentAmountMinor *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentsRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Count of payments accepted into bill ledgers by method.",
		}, []string{"method"})
		PaymentsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_rejected_total",
			Help:      "Count of payment submissions rejected by ledger validation.",
		}, []string{"reason"})
		DiscountsAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discounts_applied_total",
			Help:      "Count of discount applications by kind.",
		}, []string{"kind"})
		BillsSettledTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_settled_total",
			Help:      "Number of bills fully settled.",
		})
		WaiterCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waiter_calls_total",
			Help:      "Count of waiter call lifecycle transitions.",
		}, []string{"status"})
		PaymentAmountMinor = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_amount_minor",
			Help:      "Accepted payment amounts in minor currency units.",
			Buckets:   []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 100000},
		}, []string{"method"})

		registerOrReuse(reg, PaymentsRecordedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PaymentsRecordedTotal = v
			}
		})
		registerOrReuse(reg, PaymentsRejectedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PaymentsRejectedTotal = v
			}
		})
		registerOrReuse(reg, DiscountsAppliedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DiscountsAppliedTotal = v
			}
		})
		registerOrReuse(reg, BillsSettledTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				BillsSettledTotal = v
			}
		})
		registerOrReuse(reg, WaiterCallsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				WaiterCallsTotal = v
			}
		})
		registerOrReuse(reg, PaymentAmountMinor, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				PaymentAmountMinor = v
			}
		})
	})
}
