package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLoanAssessment(t *testing.T) {
	Business.LoanAssessmentsTotal.Reset()

	RecordLoanAssessment(true)
	RecordLoanAssessment(true)
	RecordLoanAssessment(false)

	assert.Equal(t, float64(2), testutil.ToFloat64(Business.LoanAssessmentsTotal.WithLabelValues("true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(Business.LoanAssessmentsTotal.WithLabelValues("false")))
}

func TestRecordCustomerEvent(t *testing.T) {
	Business.CustomerEventsTotal.Reset()

	RecordCustomerEvent("customer.created", "success")
	RecordCustomerEvent("customer.created", "error")

	assert.Equal(t, float64(1), testutil.ToFloat64(Business.CustomerEventsTotal.WithLabelValues("customer.created", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(Business.CustomerEventsTotal.WithLabelValues("customer.created", "error")))
}

func TestRecordCacheLookup(t *testing.T) {
	Cache.Lookups.Reset()

	RecordCacheLookup("hit")
	RecordCacheLookup("miss")
	RecordCacheLookup("miss")

	assert.Equal(t, float64(1), testutil.ToFloat64(Cache.Lookups.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(Cache.Lookups.WithLabelValues("miss")))
}

func TestRecordDBQuery(t *testing.T) {
	DB.QueryDuration.Reset()

	RecordDBQuery("FindCustomerByID", "success", 3*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(DB.QueryDuration))
}
