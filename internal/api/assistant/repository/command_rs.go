package assistantRepository

import (
	"PabrikGolang/internal/entity"
	contextPkg "PabrikGolang/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type CommandLogDB struct {
	ID          sql.NullString  `db:"id"`
	UserID      sql.NullString  `db:"user_id"`
	FactoryID   sql.NullString  `db:"factory_id"`
	Input       sql.NullString  `db:"input"`
	RouteType   sql.NullString  `db:"route_type"`
	IntentCodes sql.NullString  `db:"intent_codes"`
	Response    sql.NullString  `db:"response"`
	Success     sql.NullBool    `db:"success"`
	Confidence  sql.NullFloat64 `db:"confidence"`
	Metadata    sql.NullString  `db:"metadata"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (r *commandRepository) CreateCommandLog(ctx context.Context, cmd entity.CommandLog) error {
	requestID := contextPkg.GetRequestID(ctx)

	intentCodesJSON, err := json.Marshal(cmd.IntentCodes)
	if err != nil {
		return err
	}
	metadataJSON, err := json.Marshal(cmd.Metadata)
	if err != nil {
		return err
	}

	argsKV := map[string]interface{}{
		"id":           cmd.ID,
		"user_id":      cmd.UserID,
		"factory_id":   cmd.FactoryID,
		"input":        cmd.Input,
		"route_type":   cmd.RouteType,
		"intent_codes": string(intentCodesJSON),
		"response":     cmd.Response,
		"success":      cmd.Success,
		"confidence":   cmd.Confidence,
		"metadata":     string(metadataJSON),
		"created_at":   cmd.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateCommandLog, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateCommandLog named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating command log")
		return err
	}

	return nil
}

func (r *commandRepository) GetCommandsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.CommandLog, int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []CommandLogDB

	argsKV := map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
		"offset":  offset,
	}

	query, args, err := sqlx.Named(queryGetCommandsByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCommandsByUserID named query preparation err")
		return nil, 0, err
	}
	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCommandsByUserID execution err")
		return nil, 0, err
	}

	countQuery, countArgs, err := sqlx.Named(queryCountCommandsByUserID, map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		return nil, 0, err
	}
	countQuery = r.q.Rebind(countQuery)

	var total int
	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCommandsByUserID count err")
		return nil, 0, err
	}

	commands := make([]entity.CommandLog, 0, len(rows))
	for _, row := range rows {
		commands = append(commands, r.makeCommandLog(row))
	}
	return commands, total, nil
}

func (r *commandRepository) GetAnalyticsRows(ctx context.Context, factoryID string, since time.Time) ([]entity.CommandLog, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []CommandLogDB

	argsKV := map[string]interface{}{
		"factory_id": factoryID,
		"start_date": since,
	}

	query, args, err := sqlx.Named(queryGetAnalyticsRows, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAnalyticsRows named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAnalyticsRows execution err")
		return nil, err
	}

	commands := make([]entity.CommandLog, 0, len(rows))
	for _, row := range rows {
		commands = append(commands, r.makeCommandLog(row))
	}
	return commands, nil
}

func (r *commandRepository) makeCommandLog(row CommandLogDB) entity.CommandLog {
	var intentCodes []string
	var metadata map[string]interface{}

	if row.IntentCodes.Valid && row.IntentCodes.String != "" {
		json.Unmarshal([]byte(row.IntentCodes.String), &intentCodes)
	}
	if row.Metadata.Valid && row.Metadata.String != "" {
		json.Unmarshal([]byte(row.Metadata.String), &metadata)
	}

	return entity.CommandLog{
		ID:          row.ID.String,
		UserID:      row.UserID.String,
		FactoryID:   row.FactoryID.String,
		Input:       row.Input.String,
		RouteType:   row.RouteType.String,
		IntentCodes: intentCodes,
		Response:    row.Response.String,
		Success:     row.Success.Bool,
		Confidence:  row.Confidence.Float64,
		Metadata:    metadata,
		CreatedAt:   row.CreatedAt,
	}
}
