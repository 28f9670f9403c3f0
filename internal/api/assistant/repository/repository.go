package assistantRepository

import (
	"PabrikGolang/internal/entity"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Intents:   &intentRepository{q: sqlExecutor, log: r.log},
		Sessions:  &sessionRepository{q: sqlExecutor, log: r.log},
		Commands:  &commandRepository{q: sqlExecutor, log: r.log},
		ToolCalls: &toolCallRepository{q: sqlExecutor, log: r.log},
		Commit:    commitFunc,
		Rollback:  rollbackFunc,
	}, nil
}

type Client struct {
	Intents interface {
		GetActiveIntents(ctx context.Context) ([]entity.IntentDefinition, error)
		GetIntentByCode(ctx context.Context, code string) (entity.IntentDefinition, error)
		CreateIntent(ctx context.Context, intent entity.IntentDefinition) error
		UpdateIntent(ctx context.Context, intent entity.IntentDefinition) error
		GetLearnedExpressions(ctx context.Context) ([]entity.LearnedExpression, error)
		GetLearnedExpressionByText(ctx context.Context, intentCode, expression string) (entity.LearnedExpression, error)
		CreateLearnedExpression(ctx context.Context, expr entity.LearnedExpression) error
		IncrementExpressionHit(ctx context.Context, id string) error
	}

	Sessions interface {
		CreateSession(ctx context.Context, session entity.AssistantSession) error
		GetSessionByUserID(ctx context.Context, userID string) (entity.AssistantSession, error)
		UpdateSession(ctx context.Context, session entity.AssistantSession) error
		CleanupOldSessions(ctx context.Context) error
	}

	Commands interface {
		CreateCommandLog(ctx context.Context, cmd entity.CommandLog) error
		GetCommandsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.CommandLog, int, error)
		GetAnalyticsRows(ctx context.Context, factoryID string, since time.Time) ([]entity.CommandLog, error)
	}

	ToolCalls interface {
		CreateToolCallRecord(ctx context.Context, record entity.ToolCallRecord) error
		// CountRecentCalls counts successful identical calls inside the
		// window. Failed records never count: retrying a failure is not a
		// duplicate.
		CountRecentCalls(ctx context.Context, sessionID, toolName, paramsHash string, window time.Duration) (int, error)
		CreateCorrectionRecord(ctx context.Context, record entity.CorrectionRecord) error
		CountCorrectionRounds(ctx context.Context, toolCallID string) (int, error)
		CleanupOldToolCalls(ctx context.Context) error
	}

	Commit   func() error
	Rollback func() error
}

type intentRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type sessionRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type commandRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type toolCallRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
