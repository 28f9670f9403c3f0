package assistantService

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyExecutionError(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    ErrorCategory
	}{
		{"indonesian incomplete data", "data penjualan tidak lengkap", CategoryDataInsufficient},
		{"english incomplete data", "incomplete dataset for period", CategoryDataInsufficient},
		{"no rows", "no data for the requested range", CategoryDataInsufficient},
		{"invalid param", "parameter line_id invalid", CategoryParamInvalid},
		{"missing param", "missing required parameter: line_id", CategoryParamInvalid},
		{"timeout", "context deadline exceeded", CategoryTimeout},
		{"indonesian timeout", "waktu habis saat menunggu respon", CategoryTimeout},
		{"permission", "permission denied for this factory", CategoryPermissionDenied},
		{"indonesian permission", "akses tidak diizinkan", CategoryPermissionDenied},
		{"unavailable", "connection refused", CategoryServiceUnavailable},
		{"unknown", "sesuatu yang aneh terjadi", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyExecutionError(tt.message))
		})
	}
}

func TestStrategyForCategory(t *testing.T) {
	assert.Equal(t, StrategyReRetrieve, strategyForCategory(CategoryDataInsufficient))
	assert.Equal(t, StrategyReExtractParam, strategyForCategory(CategoryParamInvalid))
	assert.Equal(t, StrategyRetryBackoff, strategyForCategory(CategoryTimeout))
	assert.Equal(t, StrategyRetryBackoff, strategyForCategory(CategoryServiceUnavailable))
	assert.Equal(t, StrategyEscalate, strategyForCategory(CategoryPermissionDenied))
	assert.Equal(t, StrategyManualReview, strategyForCategory(CategoryUnknown))
}

func TestShouldRetryIsStrict(t *testing.T) {
	assert.True(t, shouldRetry(0))
	assert.True(t, shouldRetry(1))
	assert.True(t, shouldRetry(2))
	assert.False(t, shouldRetry(3))
	assert.False(t, shouldRetry(4))
}

func TestRemainingRetries(t *testing.T) {
	assert.Equal(t, 3, remainingRetries(0))
	assert.Equal(t, 2, remainingRetries(1))
	assert.Equal(t, 1, remainingRetries(2))
	assert.Equal(t, 0, remainingRetries(3))
	assert.Equal(t, 0, remainingRetries(5))
}

func TestStrategyRetriesInPlace(t *testing.T) {
	assert.True(t, strategyRetriesInPlace(StrategyReRetrieve))
	assert.True(t, strategyRetriesInPlace(StrategyReExtractParam))
	assert.True(t, strategyRetriesInPlace(StrategyRetryBackoff))
	assert.False(t, strategyRetriesInPlace(StrategyEscalate))
	assert.False(t, strategyRetriesInPlace(StrategyManualReview))
	assert.False(t, strategyRetriesInPlace(StrategyNone))
}
