package assistantService

import (
	assistantRepository "PabrikGolang/internal/api/assistant/repository"
	"PabrikGolang/internal/entity"
	contextPkg "PabrikGolang/pkg/context"
	"PabrikGolang/pkg/semantic"
	"PabrikGolang/pkg/toolkit"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// defaultToolMapping binds intent codes to registered tools when the catalog
// row carries no explicit binding.
var defaultToolMapping = map[string]string{
	"QUALITY_CHECK_QUERY":     "quality.inspections",
	"QUALITY_ANOMALY":         "quality.inspections",
	"QUALITY_STATS":           "quality.stats",
	"SCALE_STATUS_QUERY":      "scale.status",
	"PRODUCTION_STATUS_QUERY": "production.status",
	"START_PRODUCTION":        "production.start",
	"STOP_PRODUCTION":         "production.stop",
	"CUSTOMER_QUERY":          "customer.orders",
	"SUPPLIER_QUERY":          "supplier.deliveries",
	"DATA_QUERY":              "data.summary",
}

type executionOutcome struct {
	Result    toolkit.ToolResult
	FromCache bool
}

// executeToolCall runs one tool invocation end to end: redundancy check,
// dispatch, self-correction retries and audit records. The returned result is
// always populated; errors surface only through it.
func (s *assistantService) executeToolCall(ctx context.Context, client assistantRepository.Client, sessionID, factoryID string, match semantic.SingleIntentMatch, toolName string, critical bool) executionOutcome {
	requestID := contextPkg.GetRequestID(ctx)
	paramsHash := toolkit.HashParams(match.Params)

	cached, duplicate := s.lookupCachedResult(ctx, client, sessionID, toolName, paramsHash)
	if cached != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"tool":       toolName,
		}).Info("Duplicate tool call served from cache")
		return executionOutcome{Result: *cached, FromCache: true}
	}
	if duplicate {
		return executionOutcome{
			Result: toolkit.ToolResult{
				ToolName: toolName,
				Success:  true,
				Data:     map[string]interface{}{"duplicate": true},
			},
			FromCache: true,
		}
	}

	callID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		callID = paramsHash
	}

	call := toolkit.ToolCall{
		ID:        callID,
		ToolName:  toolName,
		FactoryID: factoryID,
		SessionID: sessionID,
		Params:    match.Params,
		Critical:  critical,
	}

	result := s.registry.Invoke(ctx, call)

	rounds := 0
	for !result.Success && shouldRetry(rounds) {
		// The correction records are authoritative for the budget; the local
		// counter is the floor so a failed audit write cannot loop forever.
		if recorded, countErr := client.ToolCalls.CountCorrectionRounds(ctx, callID); countErr == nil && recorded > rounds {
			rounds = recorded
			if !shouldRetry(rounds) {
				break
			}
		}

		category := classifyExecutionError(result.ErrorMessage)
		strategy := strategyForCategory(category)
		if !strategyRetriesInPlace(strategy) {
			s.recordCorrection(ctx, client, callID, category, strategy, rounds+1, false)
			break
		}

		rounds++
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"tool":       toolName,
			"category":   category,
			"strategy":   strategy,
			"round":      rounds,
			"remaining":  remainingRetries(rounds),
		}).Warn("Tool call failed, applying correction")

		if strategy == StrategyRetryBackoff {
			select {
			case <-ctx.Done():
				s.recordCorrection(ctx, client, callID, category, strategy, rounds, false)
				return s.finishToolCall(ctx, client, sessionID, toolName, paramsHash, callID, result)
			case <-time.After(time.Duration(rounds) * 500 * time.Millisecond):
			}
		}

		result = s.registry.Invoke(ctx, call)
		s.recordCorrection(ctx, client, callID, category, strategy, rounds, result.Success)
	}

	return s.finishToolCall(ctx, client, sessionID, toolName, paramsHash, callID, result)
}

func (s *assistantService) finishToolCall(ctx context.Context, client assistantRepository.Client, sessionID, toolName, paramsHash, callID string, result toolkit.ToolResult) executionOutcome {
	record := entity.ToolCallRecord{
		ID:         callID,
		SessionID:  sessionID,
		ToolName:   toolName,
		ParamsHash: paramsHash,
		Success:    result.Success,
		ErrorMsg:   result.ErrorMessage,
		CreatedAt:  time.Now(),
	}
	if err := client.ToolCalls.CreateToolCallRecord(ctx, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"tool":  toolName,
			"error": err.Error(),
		}).Warn("Tool call audit record err")
	}

	s.cacheResult(ctx, sessionID, toolName, paramsHash, result)
	return executionOutcome{Result: result}
}

func (s *assistantService) recordCorrection(ctx context.Context, client assistantRepository.Client, toolCallID string, category ErrorCategory, strategy CorrectionStrategy, round int, success bool) {
	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return
	}

	record := entity.CorrectionRecord{
		ID:              id,
		ToolCallID:      toolCallID,
		ErrorCategory:   string(category),
		Strategy:        string(strategy),
		CorrectionRound: round,
		Success:         success,
		CreatedAt:       time.Now(),
	}
	if err := client.ToolCalls.CreateCorrectionRecord(ctx, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"tool_call_id": toolCallID,
			"error":        err.Error(),
		}).Warn("Correction record err")
	}
}
