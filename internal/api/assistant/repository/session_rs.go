package assistantRepository

import (
	"PabrikGolang/internal/api/assistant"
	"PabrikGolang/internal/entity"
	contextPkg "PabrikGolang/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type AssistantSessionDB struct {
	ID                  sql.NullString `db:"id"`
	UserID              sql.NullString `db:"user_id"`
	FactoryID           sql.NullString `db:"factory_id"`
	PendingConfirmation sql.NullBool   `db:"pending_confirmation"`
	PendingPlan         sql.NullString `db:"pending_plan"`
	Context             sql.NullString `db:"context"`
	CreatedAt           time.Time      `db:"created_at"`
	LastActivity        time.Time      `db:"last_activity"`
}

func (r *sessionRepository) CreateSession(ctx context.Context, session entity.AssistantSession) error {
	requestID := contextPkg.GetRequestID(ctx)

	contextJSON, err := json.Marshal(session.Context)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal session context")
		return err
	}

	argsKV := map[string]interface{}{
		"id":                   session.ID,
		"user_id":              session.UserID,
		"factory_id":           session.FactoryID,
		"pending_confirmation": session.PendingConfirmation,
		"pending_plan":         session.PendingPlan,
		"context":              string(contextJSON),
		"created_at":           session.CreatedAt,
		"last_activity":        session.LastActivity,
	}

	query, args, err := sqlx.Named(queryCreateSession, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateSession named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating session")
		return err
	}

	return nil
}

func (r *sessionRepository) GetSessionByUserID(ctx context.Context, userID string) (entity.AssistantSession, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var sessionDB AssistantSessionDB

	cutoffTime := time.Now().Add(-24 * time.Hour)

	argsKV := map[string]interface{}{
		"user_id":     userID,
		"cutoff_time": cutoffTime,
	}

	query, args, err := sqlx.Named(queryGetSessionByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSessionByUserID named query preparation err")
		return entity.AssistantSession{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&sessionDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    userID,
			}).Debug("GetSessionByUserID no active session found")
			return entity.AssistantSession{}, assistant.ErrSessionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSessionByUserID execution err")
		return entity.AssistantSession{}, err
	}

	return r.makeAssistantSession(sessionDB), nil
}

func (r *sessionRepository) UpdateSession(ctx context.Context, session entity.AssistantSession) error {
	requestID := contextPkg.GetRequestID(ctx)

	contextJSON, err := json.Marshal(session.Context)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal session context")
		return err
	}

	argsKV := map[string]interface{}{
		"id":                   session.ID,
		"pending_confirmation": session.PendingConfirmation,
		"pending_plan":         session.PendingPlan,
		"context":              string(contextJSON),
		"last_activity":        time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateSession, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateSession named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateSession execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         session.ID,
		}).Warn("UpdateSession no rows affected")
		return assistant.ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepository) CleanupOldSessions(ctx context.Context) error {
	requestID := contextPkg.GetRequestID(ctx)
	cutoffTime := time.Now().Add(-24 * time.Hour)

	argsKV := map[string]interface{}{
		"cutoff_time": cutoffTime,
	}

	query, args, err := sqlx.Named(queryDeleteOldSessions, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CleanupOldSessions named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CleanupOldSessions execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil {
		r.log.WithFields(logrus.Fields{
			"request_id":    requestID,
			"rows_affected": rowsAffected,
		}).Info("Cleaned up old sessions")
	}

	return err
}

func (r *sessionRepository) makeAssistantSession(sessionDB AssistantSessionDB) entity.AssistantSession {
	var sessionContext map[string]interface{}
	if sessionDB.Context.Valid && sessionDB.Context.String != "" {
		json.Unmarshal([]byte(sessionDB.Context.String), &sessionContext)
	}

	return entity.AssistantSession{
		ID:                  sessionDB.ID.String,
		UserID:              sessionDB.UserID.String,
		FactoryID:           sessionDB.FactoryID.String,
		PendingConfirmation: sessionDB.PendingConfirmation.Bool,
		PendingPlan:         sessionDB.PendingPlan.String,
		Context:             sessionContext,
		CreatedAt:           sessionDB.CreatedAt,
		LastActivity:        sessionDB.LastActivity,
	}
}
