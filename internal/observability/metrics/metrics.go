package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flows.
type BookingMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	channelTotal       *prometheus.CounterVec
	confirmationsTotal *prometheus.CounterVec
	sendLatency        *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carwash",
			Subsystem: "bookings",
			Name:      "submissions_total",
			Help:      "Total booking submissions by outcome path",
		}, []string{"path"}),
		channelTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carwash",
			Subsystem: "notify",
			Name:      "channel_total",
			Help:      "Notification attempts by channel and status",
		}, []string{"channel", "status"}),
		confirmationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carwash",
			Subsystem: "bookings",
			Name:      "confirmations_total",
			Help:      "Confirmation requests by result",
		}, []string{"result"}),
		sendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carwash",
			Subsystem: "notify",
			Name:      "send_latency_seconds",
			Help:      "Latency of outbound notification sends",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.channelTotal, m.confirmationsTotal, m.sendLatency)
	return m
}

func (m *BookingMetrics) ObserveSubmission(path string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(path).Inc()
}

func (m *BookingMetrics) ObserveChannel(channel, status string) {
	if m == nil {
		return
	}
	m.channelTotal.WithLabelValues(channel, status).Inc()
}

func (m *BookingMetrics) ObserveConfirmation(result string) {
	if m == nil {
		return
	}
	m.confirmationsTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveSendLatency(channel string, seconds float64) {
	if m == nil {
		return
	}
	m.sendLatency.WithLabelValues(channel).Observe(seconds)
}
