package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SchedulesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_schedules_generated_total",
			Help: "Total number of repayment schedules derived",
		},
		[]string{"frequency"},
	)

	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_payments_recorded_total",
			Help: "Total number of installment payments recorded",
		},
		[]string{"method", "status"},
	)

	PaymentsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_payments_refused_total",
			Help: "Total number of payment submissions refused before recording",
		},
		[]string{"error_code"},
	)

	OverdueInstallments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_overdue_installments",
			Help: "Overdue installments across approved loans at the last sweep",
		},
	)

	OverduePenalties = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_overdue_penalties_amount",
			Help: "Sum of quoted late penalties across approved loans at the last sweep",
		},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "loan_scheduler_job_duration_seconds",
			Help: "Duration of scheduler jobs in seconds",
		},
		[]string{"job"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "loan_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "status"},
	)
)

// ObserveHTTPRequest records one served request in HTTPRequestDuration.
func ObserveHTTPRequest(r *http.Request, statusCode int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(r.Method, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}
