package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records the settlement subsystem's operational counters.
type PaymentMetrics struct {
	initiations     *prometheus.CounterVec
	verifications   *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	initiations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_initiations_total",
		Help: "Payment initiation attempts by booking kind and result.",
	}, []string{"kind", "result"})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verifications_total",
		Help: "Payment verification attempts by result.",
	}, []string{"result"})
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_gateway_request_duration_seconds",
		Help:    "Duration of payment gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(initiations, verifications, gatewayDuration)
	return &PaymentMetrics{
		initiations:     initiations,
		verifications:   verifications,
		gatewayDuration: gatewayDuration,
	}
}

// IncInitiation increments the initiation counter for a kind/result pair.
func (p *PaymentMetrics) IncInitiation(kind, result string) {
	if p == nil || p.initiations == nil {
		return
	}
	p.initiations.WithLabelValues(normalizeLabel(kind), normalizeLabel(result)).Inc()
}

// IncVerification increments the verification counter for a result.
func (p *PaymentMetrics) IncVerification(result string) {
	if p == nil || p.verifications == nil {
		return
	}
	p.verifications.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveGatewayDuration records how long one gateway call took.
func (p *PaymentMetrics) ObserveGatewayDuration(operation string, duration time.Duration) {
	if p == nil || p.gatewayDuration == nil {
		return
	}
	p.gatewayDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
