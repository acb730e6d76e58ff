package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	CustomersCreatedTotal prometheus.Counter
	CustomersDeletedTotal prometheus.Counter
	CreditsCreatedTotal   prometheus.Counter
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_api_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		CustomersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_api_customers_created_total",
				Help: "Total number of customers successfully created.",
			},
		),
		CustomersDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_api_customers_deleted_total",
				Help: "Total number of customers deleted.",
			},
		),
		CreditsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_api_credits_created_total",
				Help: "Total number of credits successfully created.",
			},
		),
	}
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

// ObserveDBQuery records the duration since start, labelled by whether err is nil.
func ObserveDBQuery(queryName string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	RecordDBQuery(queryName, status, time.Since(start))
}

func RecordCustomerCreated() {
	Business.CustomersCreatedTotal.Inc()
}

func RecordCustomerDeleted() {
	Business.CustomersDeletedTotal.Inc()
}

func RecordCreditCreated() {
	Business.CreditsCreatedTotal.Inc()
}
