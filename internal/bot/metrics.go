package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics метрики Prometheus бота
type Metrics struct {
	MessagesProcessed    prometheus.Counter
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	AppointmentsCreated  *prometheus.CounterVec
	AppointmentsCanceled prometheus.Counter
	NotificationsSent    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_messages_processed_total",
			Help: "Total number of processed updates",
		}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of handler errors and panics",
		}),

		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		AppointmentsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_appointments_created_total",
			Help: "Total number of appointments created",
		}, []string{"service"}),

		AppointmentsCanceled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_appointments_canceled_total",
			Help: "Total number of appointments canceled",
		}),

		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_notifications_sent_total",
			Help: "Total number of fan-out notifications sent",
		}, []string{"target"}),
	}
}
