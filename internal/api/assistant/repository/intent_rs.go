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

type IntentDefinitionDB struct {
	Code        sql.NullString `db:"code"`
	Name        sql.NullString `db:"name"`
	Description sql.NullString `db:"description"`
	ToolName    sql.NullString `db:"tool_name"`
	Keywords    sql.NullString `db:"keywords"`
	Patterns    sql.NullString `db:"patterns"`
	Examples    sql.NullString `db:"examples"`
	Embedding   sql.NullString `db:"embedding"`
	Priority    sql.NullInt64  `db:"priority"`
	Verified    sql.NullBool   `db:"verified"`
	IsActive    sql.NullBool   `db:"is_active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type LearnedExpressionDB struct {
	ID         sql.NullString `db:"id"`
	IntentCode sql.NullString `db:"intent_code"`
	Expression sql.NullString `db:"expression"`
	Embedding  sql.NullString `db:"embedding"`
	HitCount   sql.NullInt64  `db:"hit_count"`
	CreatedAt  time.Time      `db:"created_at"`
	LastHitAt  time.Time      `db:"last_hit_at"`
}

func (r *intentRepository) GetActiveIntents(ctx context.Context) ([]entity.IntentDefinition, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []IntentDefinitionDB

	query := r.q.Rebind(queryGetActiveIntents)
	if err := r.q.SelectContext(ctx, &rows, query); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActiveIntents execution err")
		return nil, err
	}

	intents := make([]entity.IntentDefinition, 0, len(rows))
	for _, row := range rows {
		intents = append(intents, r.makeIntentDefinition(row))
	}
	return intents, nil
}

func (r *intentRepository) GetIntentByCode(ctx context.Context, code string) (entity.IntentDefinition, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row IntentDefinitionDB

	argsKV := map[string]interface{}{
		"code": code,
	}

	query, args, err := sqlx.Named(queryGetIntentByCode, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetIntentByCode named query preparation err")
		return entity.IntentDefinition{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.IntentDefinition{}, assistant.ErrIntentNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetIntentByCode execution err")
		return entity.IntentDefinition{}, err
	}

	return r.makeIntentDefinition(row), nil
}

func (r *intentRepository) CreateIntent(ctx context.Context, intent entity.IntentDefinition) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV, err := r.intentArgs(intent)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal intent columns")
		return err
	}

	query, args, err := sqlx.Named(queryCreateIntent, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateIntent named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating intent")
		return err
	}

	return nil
}

func (r *intentRepository) UpdateIntent(ctx context.Context, intent entity.IntentDefinition) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV, err := r.intentArgs(intent)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal intent columns")
		return err
	}

	query, args, err := sqlx.Named(queryUpdateIntent, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateIntent named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateIntent execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"code":       intent.Code,
		}).Warn("UpdateIntent no rows affected")
		return assistant.ErrIntentNotFound
	}

	return nil
}

func (r *intentRepository) GetLearnedExpressions(ctx context.Context) ([]entity.LearnedExpression, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []LearnedExpressionDB

	query := r.q.Rebind(queryGetLearnedExpressions)
	if err := r.q.SelectContext(ctx, &rows, query); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetLearnedExpressions execution err")
		return nil, err
	}

	expressions := make([]entity.LearnedExpression, 0, len(rows))
	for _, row := range rows {
		var embedding []float32
		if row.Embedding.Valid && row.Embedding.String != "" {
			json.Unmarshal([]byte(row.Embedding.String), &embedding)
		}
		expressions = append(expressions, entity.LearnedExpression{
			ID:         row.ID.String,
			IntentCode: row.IntentCode.String,
			Expression: row.Expression.String,
			Embedding:  embedding,
			HitCount:   int(row.HitCount.Int64),
			CreatedAt:  row.CreatedAt,
			LastHitAt:  row.LastHitAt,
		})
	}
	return expressions, nil
}

func (r *intentRepository) GetLearnedExpressionByText(ctx context.Context, intentCode, expression string) (entity.LearnedExpression, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row LearnedExpressionDB

	argsKV := map[string]interface{}{
		"intent_code": intentCode,
		"expression":  expression,
	}

	query, args, err := sqlx.Named(queryGetLearnedExpressionByText, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetLearnedExpressionByText named query preparation err")
		return entity.LearnedExpression{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.LearnedExpression{}, assistant.ErrExpressionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetLearnedExpressionByText execution err")
		return entity.LearnedExpression{}, err
	}

	var embedding []float32
	if row.Embedding.Valid && row.Embedding.String != "" {
		json.Unmarshal([]byte(row.Embedding.String), &embedding)
	}

	return entity.LearnedExpression{
		ID:         row.ID.String,
		IntentCode: row.IntentCode.String,
		Expression: row.Expression.String,
		Embedding:  embedding,
		HitCount:   int(row.HitCount.Int64),
		CreatedAt:  row.CreatedAt,
		LastHitAt:  row.LastHitAt,
	}, nil
}

func (r *intentRepository) CreateLearnedExpression(ctx context.Context, expr entity.LearnedExpression) error {
	requestID := contextPkg.GetRequestID(ctx)

	embeddingJSON, err := json.Marshal(expr.Embedding)
	if err != nil {
		return err
	}

	argsKV := map[string]interface{}{
		"id":          expr.ID,
		"intent_code": expr.IntentCode,
		"expression":  expr.Expression,
		"embedding":   string(embeddingJSON),
		"hit_count":   expr.HitCount,
		"created_at":  expr.CreatedAt,
		"last_hit_at": expr.LastHitAt,
	}

	query, args, err := sqlx.Named(queryCreateLearnedExpression, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateLearnedExpression named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating learned expression")
		return err
	}

	return nil
}

func (r *intentRepository) IncrementExpressionHit(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":          id,
		"last_hit_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryIncrementExpressionHit, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("IncrementExpressionHit named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("IncrementExpressionHit execution err")
		return err
	}

	return nil
}

func (r *intentRepository) intentArgs(intent entity.IntentDefinition) (map[string]interface{}, error) {
	keywordsJSON, err := json.Marshal(intent.Keywords)
	if err != nil {
		return nil, err
	}
	patternsJSON, err := json.Marshal(intent.Patterns)
	if err != nil {
		return nil, err
	}
	examplesJSON, err := json.Marshal(intent.Examples)
	if err != nil {
		return nil, err
	}
	embeddingJSON, err := json.Marshal(intent.Embedding)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"code":        intent.Code,
		"name":        intent.Name,
		"description": intent.Description,
		"tool_name":   intent.ToolName,
		"keywords":    string(keywordsJSON),
		"patterns":    string(patternsJSON),
		"examples":    string(examplesJSON),
		"embedding":   string(embeddingJSON),
		"priority":    intent.Priority,
		"verified":    intent.Verified,
		"is_active":   intent.IsActive,
		"created_at":  intent.CreatedAt,
		"updated_at":  intent.UpdatedAt,
	}, nil
}

func (r *intentRepository) makeIntentDefinition(row IntentDefinitionDB) entity.IntentDefinition {
	var keywords, patterns, examples []string
	var embedding []float32

	if row.Keywords.Valid && row.Keywords.String != "" {
		json.Unmarshal([]byte(row.Keywords.String), &keywords)
	}
	if row.Patterns.Valid && row.Patterns.String != "" {
		json.Unmarshal([]byte(row.Patterns.String), &patterns)
	}
	if row.Examples.Valid && row.Examples.String != "" {
		json.Unmarshal([]byte(row.Examples.String), &examples)
	}
	if row.Embedding.Valid && row.Embedding.String != "" {
		json.Unmarshal([]byte(row.Embedding.String), &embedding)
	}

	return entity.IntentDefinition{
		Code:        row.Code.String,
		Name:        row.Name.String,
		Description: row.Description.String,
		ToolName:    row.ToolName.String,
		Keywords:    keywords,
		Patterns:    patterns,
		Examples:    examples,
		Embedding:   embedding,
		Priority:    int(row.Priority.Int64),
		Verified:    row.Verified.Bool,
		IsActive:    row.IsActive.Bool,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
