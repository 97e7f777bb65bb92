package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type CacheMetrics struct {
	Lookups *prometheus.CounterVec
}

type BusinessMetrics struct {
	LoanAssessmentsTotal *prometheus.CounterVec
	CustomerEventsTotal  *prometheus.CounterVec
	RefreshedCustomers   prometheus.Counter
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_management_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Cache = CacheMetrics{
		Lookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_management_cache_lookups_total",
				Help: "Customer cache lookups by result.",
			},
			[]string{"result"},
		),
	}

	Business = BusinessMetrics{
		LoanAssessmentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_loan_assessments_total",
				Help: "Total number of loan assessments computed before a customer write.",
			},
			[]string{"eligible"},
		),
		CustomerEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_events_published_total",
				Help: "Customer lifecycle events handed to the publisher, by routing key and status.",
			},
			[]string{"routing_key", "status"},
		),
		RefreshedCustomers: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_assessment_refresh_updated_total",
				Help: "Customers whose derived loan fields were rewritten by the refresh job.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordCacheLookup(result string) {
	Cache.Lookups.WithLabelValues(result).Inc()
}

func RecordLoanAssessment(eligible bool) {
	Business.LoanAssessmentsTotal.WithLabelValues(strconv.FormatBool(eligible)).Inc()
}

func RecordCustomerEvent(routingKey, status string) {
	Business.CustomerEventsTotal.WithLabelValues(routingKey, status).Inc()
}

func RecordRefreshedCustomer() {
	Business.RefreshedCustomers.Inc()
}
