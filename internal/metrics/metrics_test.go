package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQuery(t *testing.T) {
	before := testutil.ToFloat64(queriesTotal.WithLabelValues("sqlite", "success"))
	ObserveQuery("sqlite", "success", 120*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(queriesTotal.WithLabelValues("sqlite", "success")))
}

func TestTableCorrected(t *testing.T) {
	before := testutil.ToFloat64(tableCorrectionsTotal)
	TableCorrected()
	assert.Equal(t, before+1, testutil.ToFloat64(tableCorrectionsTotal))
}

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/query", "200"))
	ObserveHTTP("POST", "/query", "200", time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/query", "200")))
}
