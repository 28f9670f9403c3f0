package assistantRepository

import (
	"PabrikGolang/internal/entity"
	contextPkg "PabrikGolang/pkg/context"
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *toolCallRepository) CreateToolCallRecord(ctx context.Context, record entity.ToolCallRecord) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":          record.ID,
		"session_id":  record.SessionID,
		"tool_name":   record.ToolName,
		"params_hash": record.ParamsHash,
		"success":     record.Success,
		"error_msg":   record.ErrorMsg,
		"created_at":  record.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateToolCallRecord, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateToolCallRecord named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating tool call record")
		return err
	}

	return nil
}

func (r *toolCallRepository) CountRecentCalls(ctx context.Context, sessionID, toolName, paramsHash string, window time.Duration) (int, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"session_id":  sessionID,
		"tool_name":   toolName,
		"params_hash": paramsHash,
		"cutoff_time": time.Now().Add(-window),
	}

	query, args, err := sqlx.Named(queryCountRecentCalls, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountRecentCalls named query preparation err")
		return 0, err
	}
	query = r.q.Rebind(query)

	var count int
	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&count); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountRecentCalls execution err")
		return 0, err
	}

	return count, nil
}

func (r *toolCallRepository) CreateCorrectionRecord(ctx context.Context, record entity.CorrectionRecord) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":               record.ID,
		"tool_call_id":     record.ToolCallID,
		"error_category":   record.ErrorCategory,
		"strategy":         record.Strategy,
		"correction_round": record.CorrectionRound,
		"success":          record.Success,
		"created_at":       record.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateCorrectionRecord, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateCorrectionRecord named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating correction record")
		return err
	}

	return nil
}

func (r *toolCallRepository) CountCorrectionRounds(ctx context.Context, toolCallID string) (int, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"tool_call_id": toolCallID,
	}

	query, args, err := sqlx.Named(queryCountCorrectionRounds, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountCorrectionRounds named query preparation err")
		return 0, err
	}
	query = r.q.Rebind(query)

	var count int
	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&count); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountCorrectionRounds execution err")
		return 0, err
	}

	return count, nil
}

func (r *toolCallRepository) CleanupOldToolCalls(ctx context.Context) error {
	requestID := contextPkg.GetRequestID(ctx)
	cutoffTime := time.Now().Add(-7 * 24 * time.Hour)

	argsKV := map[string]interface{}{
		"cutoff_time": cutoffTime,
	}

	query, args, err := sqlx.Named(queryDeleteOldToolCalls, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CleanupOldToolCalls named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CleanupOldToolCalls execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil {
		r.log.WithFields(logrus.Fields{
			"request_id":    requestID,
			"rows_affected": rowsAffected,
		}).Info("Cleaned up old tool call records")
	}

	return err
}
