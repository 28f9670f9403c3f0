package assistantService

import (
	"PabrikGolang/internal/api/assistant"
	assistantRepository "PabrikGolang/internal/api/assistant/repository"
	contextPkg "PabrikGolang/pkg/context"
	"PabrikGolang/pkg/semantic"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// executePlan dispatches a resolved multi-intent plan and merges the per
// intent outcomes into one envelope. Parallel plans join all members before
// merging; sequential plans abort the remainder when a required intent fails.
func (s *assistantService) executePlan(ctx context.Context, client assistantRepository.Client, sessionID, factoryID string, plan semantic.MultiIntentResult) *assistant.CommandResponse {
	requestID := contextPkg.GetRequestID(ctx)
	executions := make([]assistant.IntentExecution, len(plan.Intents))

	if plan.Strategy == semantic.StrategyParallel && len(plan.Intents) > 1 {
		g, gCtx := errgroup.WithContext(ctx)
		for i, intent := range plan.Intents {
			i, intent := i, intent
			g.Go(func() error {
				executions[i] = s.executeIntent(gCtx, client, sessionID, factoryID, intent)
				return nil
			})
		}
		g.Wait()
	} else {
		aborted := false
		for i, intent := range plan.Intents {
			if aborted {
				executions[i] = assistant.IntentExecution{
					IntentCode: intent.IntentCode,
					IntentName: s.intentName(intent.IntentCode),
					Order:      intent.ExecutionOrder,
					Skipped:    true,
					Message:    "Dilewati karena perintah sebelumnya gagal",
				}
				continue
			}

			executions[i] = s.executeIntent(ctx, client, sessionID, factoryID, intent)

			if !executions[i].Success && intent.Priority >= semantic.RequiredPriority {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"intent":     intent.IntentCode,
					"priority":   intent.Priority,
				}).Error("Required intent failed, aborting remaining sequence")
				s.alertRequiredFailure(ctx, factoryID, intent.IntentCode, executions[i].Message)
				aborted = true
			}
		}
	}

	return s.mergeExecutions(sessionID, plan, executions)
}

func (s *assistantService) executeIntent(ctx context.Context, client assistantRepository.Client, sessionID, factoryID string, intent semantic.SingleIntentMatch) assistant.IntentExecution {
	name := s.intentName(intent.IntentCode)

	toolName, ok := s.toolNameFor(intent.IntentCode)
	if !ok {
		return assistant.IntentExecution{
			IntentCode: intent.IntentCode,
			IntentName: name,
			Order:      intent.ExecutionOrder,
			ErrorCode:  "TOOL_NOT_REGISTERED",
			Message:    fmt.Sprintf("Tidak ada tool untuk perintah %s", intent.IntentCode),
		}
	}

	critical := intent.Priority >= semantic.RequiredPriority
	outcome := s.executeToolCall(ctx, client, sessionID, factoryID, intent, toolName, critical)

	execution := assistant.IntentExecution{
		IntentCode: intent.IntentCode,
		IntentName: name,
		Order:      intent.ExecutionOrder,
		Success:    outcome.Result.Success,
		Cached:     outcome.FromCache,
		Data:       outcome.Result.Data,
	}

	switch {
	case !outcome.Result.Success:
		execution.ErrorCode = "EXECUTION_FAILED"
		execution.Message = outcome.Result.ErrorMessage
	case outcome.FromCache:
		execution.Message = "Hasil dari permintaan yang sama beberapa saat lalu"
	default:
		execution.Message = fmt.Sprintf("%s berhasil dijalankan", name)
	}
	return execution
}

func (s *assistantService) mergeExecutions(sessionID string, plan semantic.MultiIntentResult, executions []assistant.IntentExecution) *assistant.CommandResponse {
	successCount := 0
	allCached := len(executions) > 0
	for _, execution := range executions {
		if execution.Success {
			successCount++
		}
		if !execution.Cached {
			allCached = false
		}
	}

	allSuccess := successCount == len(executions)
	message := "Semua perintah berhasil dijalankan"
	if !allSuccess {
		message = fmt.Sprintf("%d dari %d perintah berhasil", successCount, len(executions))
	}

	responseType := assistant.ResponseTypeExecution
	if allSuccess && allCached {
		responseType = assistant.ResponseTypeCached
	}

	response := &assistant.CommandResponse{
		Success:      allSuccess,
		Message:      message,
		ResponseType: responseType,
		Confidence:   plan.OverallConfidence,
		SessionID:    sessionID,
		Results:      executions,
		TotalCount:   len(executions),
		SuccessCount: successCount,
	}

	if len(executions) == 1 {
		only := executions[0]
		response.IntentCode = only.IntentCode
		response.IntentName = only.IntentName
		response.Data = only.Data
		response.Message = only.Message
		if !only.Success {
			response.ErrorCode = only.ErrorCode
			response.ResponseType = assistant.ResponseTypeError
		}
	}

	return response
}

// alertRequiredFailure pushes a WhatsApp notification to the operations
// contact when a required intent fails terminally. Alerting is best effort.
func (s *assistantService) alertRequiredFailure(ctx context.Context, factoryID, intentCode, detail string) {
	if s.whatsapp == nil || s.alertPhone == "" {
		return
	}

	message := fmt.Sprintf(
		"⚠️ Pabrik AI: perintah kritis %s gagal di pabrik %s.\nDetail: %s",
		intentCode, factoryID, detail,
	)
	if err := s.whatsapp.SendMessage(ctx, s.alertPhone, message); err != nil {
		s.log.WithFields(logrus.Fields{
			"intent": intentCode,
			"error":  err.Error(),
		}).Warn("Ops alert send err")
	}
}
