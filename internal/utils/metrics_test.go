package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	mc := NewMetricsCollector()
	mc.IncrementRequests()
	mc.IncrementRequests()
	mc.IncrementErrors()
	mc.AddOperationLatency("subcategory_listing", 5*time.Millisecond)

	requests, errorCount, uptime := mc.Snapshot()
	assert.Equal(t, uint64(2), requests)
	assert.Equal(t, uint64(1), errorCount)
	assert.GreaterOrEqual(t, uptime, time.Duration(0))
}
