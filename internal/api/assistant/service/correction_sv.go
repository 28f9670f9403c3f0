package assistantService

import "strings"

type ErrorCategory string

const (
	CategoryDataInsufficient   ErrorCategory = "DATA_INSUFFICIENT"
	CategoryParamInvalid       ErrorCategory = "PARAM_INVALID"
	CategoryTimeout            ErrorCategory = "TIMEOUT"
	CategoryPermissionDenied   ErrorCategory = "PERMISSION_DENIED"
	CategoryServiceUnavailable ErrorCategory = "SERVICE_UNAVAILABLE"
	CategoryUnknown            ErrorCategory = "UNKNOWN"
)

type CorrectionStrategy string

const (
	StrategyReRetrieve     CorrectionStrategy = "RE_RETRIEVE"
	StrategyReExtractParam CorrectionStrategy = "RE_EXTRACT_PARAMS"
	StrategyRetryBackoff   CorrectionStrategy = "RETRY_BACKOFF"
	StrategyEscalate       CorrectionStrategy = "ESCALATE"
	StrategyManualReview   CorrectionStrategy = "MANUAL_REVIEW"
	StrategyNone           CorrectionStrategy = "NONE"
)

const maxCorrectionRounds = 3

// classifyExecutionError buckets a tool failure message into a category that
// picks the retry strategy. Matching is keyword based over the mixed
// Indonesian and English messages the tools produce.
func classifyExecutionError(message string) ErrorCategory {
	msg := strings.ToLower(message)

	switch {
	case strings.Contains(msg, "tidak lengkap"),
		strings.Contains(msg, "incomplete"),
		strings.Contains(msg, "insufficient"),
		strings.Contains(msg, "data kosong"),
		strings.Contains(msg, "no data"):
		return CategoryDataInsufficient
	case strings.Contains(msg, "invalid"),
		strings.Contains(msg, "tidak valid"),
		strings.Contains(msg, "missing required parameter"),
		strings.Contains(msg, "parameter salah"):
		return CategoryParamInvalid
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "waktu habis"):
		return CategoryTimeout
	case strings.Contains(msg, "permission"),
		strings.Contains(msg, "forbidden"),
		strings.Contains(msg, "tidak diizinkan"),
		strings.Contains(msg, "unauthorized"):
		return CategoryPermissionDenied
	case strings.Contains(msg, "unavailable"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "tidak tersedia"):
		return CategoryServiceUnavailable
	default:
		return CategoryUnknown
	}
}

// strategyForCategory is the static correction policy. Permission problems
// never retry; parameter problems re-extract before re-running the tool.
func strategyForCategory(category ErrorCategory) CorrectionStrategy {
	switch category {
	case CategoryDataInsufficient:
		return StrategyReRetrieve
	case CategoryParamInvalid:
		return StrategyReExtractParam
	case CategoryTimeout, CategoryServiceUnavailable:
		return StrategyRetryBackoff
	case CategoryPermissionDenied:
		return StrategyEscalate
	default:
		return StrategyManualReview
	}
}

// shouldRetry is strict: the third completed round exhausts the budget.
func shouldRetry(completedRounds int) bool {
	return completedRounds < maxCorrectionRounds
}

func remainingRetries(completedRounds int) int {
	remaining := maxCorrectionRounds - completedRounds
	if remaining < 0 {
		return 0
	}
	return remaining
}

func strategyRetriesInPlace(strategy CorrectionStrategy) bool {
	switch strategy {
	case StrategyReRetrieve, StrategyReExtractParam, StrategyRetryBackoff:
		return true
	default:
		return false
	}
}
