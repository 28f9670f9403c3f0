package assistantService

import (
	"PabrikGolang/internal/api/assistant"
	assistantRepository "PabrikGolang/internal/api/assistant/repository"
	"PabrikGolang/internal/entity"
	redisPkg "PabrikGolang/pkg/redis"
	"PabrikGolang/pkg/semantic"
	"PabrikGolang/pkg/toolkit"
	"PabrikGolang/pkg/utils"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	client assistantRepository.Client
}

func (f *fakeRepository) NewClient(tx bool) (assistantRepository.Client, error) {
	return f.client, nil
}

type fakeIntentStore struct{}

func (f *fakeIntentStore) GetActiveIntents(ctx context.Context) ([]entity.IntentDefinition, error) {
	return nil, nil
}

func (f *fakeIntentStore) GetIntentByCode(ctx context.Context, code string) (entity.IntentDefinition, error) {
	return entity.IntentDefinition{}, assistant.ErrIntentNotFound
}

func (f *fakeIntentStore) CreateIntent(ctx context.Context, intent entity.IntentDefinition) error {
	return nil
}

func (f *fakeIntentStore) UpdateIntent(ctx context.Context, intent entity.IntentDefinition) error {
	return nil
}

func (f *fakeIntentStore) GetLearnedExpressions(ctx context.Context) ([]entity.LearnedExpression, error) {
	return nil, nil
}

func (f *fakeIntentStore) GetLearnedExpressionByText(ctx context.Context, intentCode, expression string) (entity.LearnedExpression, error) {
	return entity.LearnedExpression{}, assistant.ErrExpressionNotFound
}

func (f *fakeIntentStore) CreateLearnedExpression(ctx context.Context, expr entity.LearnedExpression) error {
	return nil
}

func (f *fakeIntentStore) IncrementExpressionHit(ctx context.Context, id string) error {
	return nil
}

type fakeSessionStore struct{}

func (f *fakeSessionStore) CreateSession(ctx context.Context, session entity.AssistantSession) error {
	return nil
}

func (f *fakeSessionStore) GetSessionByUserID(ctx context.Context, userID string) (entity.AssistantSession, error) {
	return entity.AssistantSession{}, assistant.ErrSessionNotFound
}

func (f *fakeSessionStore) UpdateSession(ctx context.Context, session entity.AssistantSession) error {
	return nil
}

func (f *fakeSessionStore) CleanupOldSessions(ctx context.Context) error {
	return nil
}

type fakeCommandStore struct{}

func (f *fakeCommandStore) CreateCommandLog(ctx context.Context, cmd entity.CommandLog) error {
	return nil
}

func (f *fakeCommandStore) GetCommandsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.CommandLog, int, error) {
	return nil, 0, nil
}

func (f *fakeCommandStore) GetAnalyticsRows(ctx context.Context, factoryID string, since time.Time) ([]entity.CommandLog, error) {
	return nil, nil
}

type fakeToolCallStore struct {
	mu          sync.Mutex
	records     []entity.ToolCallRecord
	corrections []entity.CorrectionRecord
	priorRounds int
}

func (f *fakeToolCallStore) CreateToolCallRecord(ctx context.Context, record entity.ToolCallRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeToolCallStore) CountRecentCalls(ctx context.Context, sessionID, toolName, paramsHash string, window time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cutoff := time.Now().Add(-window)
	count := 0
	for _, record := range f.records {
		if record.SessionID == sessionID && record.ToolName == toolName &&
			record.ParamsHash == paramsHash && record.Success && record.CreatedAt.After(cutoff) {
			count++
		}
	}
	return count, nil
}

func (f *fakeToolCallStore) CreateCorrectionRecord(ctx context.Context, record entity.CorrectionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrections = append(f.corrections, record)
	return nil
}

func (f *fakeToolCallStore) CountCorrectionRounds(ctx context.Context, toolCallID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := f.priorRounds
	for _, correction := range f.corrections {
		if correction.ToolCallID == toolCallID {
			count++
		}
	}
	return count, nil
}

func (f *fakeToolCallStore) CleanupOldToolCalls(ctx context.Context) error {
	return nil
}

type fakeRedisStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{entries: make(map[string]string)}
}

func (f *fakeRedisStore) SetToolResult(ctx context.Context, key string, payload string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = payload
	return nil
}

func (f *fakeRedisStore) GetToolResult(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payload, ok := f.entries[key]; ok {
		return payload, nil
	}
	return "", redisPkg.ErrCacheMiss
}

func (f *fakeRedisStore) ExtendToolResult(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (f *fakeRedisStore) DeleteToolResult(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func newTestService(t *testing.T, registry toolkit.IRegistry) (*assistantService, assistantRepository.Client, *fakeToolCallStore) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	toolCalls := &fakeToolCallStore{}
	client := assistantRepository.Client{
		Intents:   &fakeIntentStore{},
		Sessions:  &fakeSessionStore{},
		Commands:  &fakeCommandStore{},
		ToolCalls: toolCalls,
		Commit:    func() error { return nil },
		Rollback:  func() error { return nil },
	}

	service := &assistantService{
		log:           log,
		repo:          &fakeRepository{client: client},
		registry:      registry,
		redis:         newFakeRedisStore(),
		utils:         utils.New(),
		resolver:      semantic.NewCompositionResolver(semantic.DefaultCompositionRules()),
		planner:       semantic.NewPlanner(semantic.DefaultPlannerConfig()),
		catalog:       make(map[string]entity.IntentDefinition),
		cacheTTL:      5 * time.Minute,
		recencyWindow: 30 * time.Second,
	}
	return service, client, toolCalls
}

func registerStubTool(t *testing.T, registry toolkit.IRegistry, name string, execute toolkit.ExecuteFunc) {
	t.Helper()
	require.NoError(t, registry.Register(&toolkit.Tool{
		Name:    name,
		Execute: execute,
	}))
}

func TestExecutePlanSequentialAbortsAfterRequiredFailure(t *testing.T) {
	registry := toolkit.NewRegistry()
	registerStubTool(t, registry, "production.start", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		return nil, errors.New("akses tidak diizinkan")
	})

	queryInvoked := false
	registerStubTool(t, registry, "quality.inspections", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		queryInvoked = true
		return map[string]interface{}{"rows": 3}, nil
	})

	service, client, _ := newTestService(t, registry)

	plan := semantic.MultiIntentResult{
		Intents: []semantic.SingleIntentMatch{
			{IntentCode: "START_PRODUCTION", Priority: 95, ExecutionOrder: 1, Confidence: 0.9},
			{IntentCode: "QUALITY_CHECK_QUERY", Priority: 85, ExecutionOrder: 2, Confidence: 0.9},
		},
		Strategy:          semantic.StrategySequential,
		OverallConfidence: 0.9,
	}

	response := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)

	assert.False(t, response.Success)
	assert.Equal(t, 2, response.TotalCount)
	assert.Equal(t, 0, response.SuccessCount)
	require.Len(t, response.Results, 2)

	assert.False(t, response.Results[0].Success)
	assert.Equal(t, "EXECUTION_FAILED", response.Results[0].ErrorCode)

	assert.True(t, response.Results[1].Skipped)
	assert.Equal(t, "Dilewati karena perintah sebelumnya gagal", response.Results[1].Message)
	assert.False(t, queryInvoked)
}

func TestExecutePlanSequentialContinuesAfterNonRequiredFailure(t *testing.T) {
	registry := toolkit.NewRegistry()
	registerStubTool(t, registry, "quality.inspections", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		return nil, errors.New("akses tidak diizinkan")
	})
	registerStubTool(t, registry, "scale.status", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"scales": 2}, nil
	})

	service, client, _ := newTestService(t, registry)

	plan := semantic.MultiIntentResult{
		Intents: []semantic.SingleIntentMatch{
			{IntentCode: "QUALITY_CHECK_QUERY", Priority: 85, ExecutionOrder: 1, Confidence: 0.9},
			{IntentCode: "SCALE_STATUS_QUERY", Priority: 80, ExecutionOrder: 2, Confidence: 0.9},
		},
		Strategy:          semantic.StrategySequential,
		OverallConfidence: 0.9,
	}

	response := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)

	assert.False(t, response.Success)
	assert.Equal(t, 1, response.SuccessCount)
	require.Len(t, response.Results, 2)
	assert.False(t, response.Results[0].Success)
	assert.False(t, response.Results[1].Skipped)
	assert.True(t, response.Results[1].Success)
}

func TestExecutePlanParallelPreservesOrder(t *testing.T) {
	registry := toolkit.NewRegistry()
	registerStubTool(t, registry, "quality.inspections", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"rows": 5}, nil
	})
	registerStubTool(t, registry, "scale.status", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"scales": 2}, nil
	})

	service, client, toolCalls := newTestService(t, registry)

	plan := semantic.MultiIntentResult{
		Intents: []semantic.SingleIntentMatch{
			{IntentCode: "QUALITY_CHECK_QUERY", Priority: 85, ExecutionOrder: 1, Confidence: 0.95},
			{IntentCode: "SCALE_STATUS_QUERY", Priority: 80, ExecutionOrder: 2, Confidence: 0.95},
		},
		Strategy:          semantic.StrategyParallel,
		OverallConfidence: 0.95,
	}

	response := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)

	assert.True(t, response.Success)
	assert.Equal(t, "Semua perintah berhasil dijalankan", response.Message)
	assert.Equal(t, 2, response.SuccessCount)
	require.Len(t, response.Results, 2)
	assert.Equal(t, "QUALITY_CHECK_QUERY", response.Results[0].IntentCode)
	assert.Equal(t, "SCALE_STATUS_QUERY", response.Results[1].IntentCode)
	assert.Len(t, toolCalls.records, 2)
}

func TestExecutePlanServesRepeatedCallFromCache(t *testing.T) {
	registry := toolkit.NewRegistry()
	invocations := 0
	registerStubTool(t, registry, "quality.inspections", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		invocations++
		return map[string]interface{}{"rows": 5}, nil
	})

	service, client, _ := newTestService(t, registry)

	plan := semantic.MultiIntentResult{
		Intents: []semantic.SingleIntentMatch{
			{IntentCode: "QUALITY_CHECK_QUERY", Priority: 85, ExecutionOrder: 1, Confidence: 0.95, Params: map[string]interface{}{"days": float64(7)}},
		},
		Strategy:          semantic.StrategySequential,
		OverallConfidence: 0.95,
	}

	first := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)
	assert.True(t, first.Success)
	assert.Equal(t, "QUALITY_CHECK_QUERY berhasil dijalankan", first.Message)

	second := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)
	assert.True(t, second.Success)
	assert.Equal(t, assistant.ResponseTypeCached, second.ResponseType)
	assert.Equal(t, "Hasil dari permintaan yang sama beberapa saat lalu", second.Message)
	assert.Equal(t, 1, invocations)

	// A different session never sees the cached payload.
	third := service.executePlan(context.Background(), client, "session-2", "factory-1", plan)
	assert.True(t, third.Success)
	assert.Equal(t, 2, invocations)
}

func TestExecutePlanRetriesInPlaceUntilBudgetExhausted(t *testing.T) {
	registry := toolkit.NewRegistry()
	invocations := 0
	registerStubTool(t, registry, "quality.inspections", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		invocations++
		return nil, errors.New("data inspeksi tidak lengkap")
	})

	service, client, toolCalls := newTestService(t, registry)

	plan := semantic.MultiIntentResult{
		Intents: []semantic.SingleIntentMatch{
			{IntentCode: "QUALITY_CHECK_QUERY", Priority: 85, ExecutionOrder: 1, Confidence: 0.95},
		},
		Strategy:          semantic.StrategySequential,
		OverallConfidence: 0.95,
	}

	response := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)

	assert.False(t, response.Success)
	assert.Equal(t, "EXECUTION_FAILED", response.ErrorCode)
	assert.Equal(t, 4, invocations)
	assert.Len(t, toolCalls.corrections, 3)
	for _, correction := range toolCalls.corrections {
		assert.Equal(t, string(CategoryDataInsufficient), correction.ErrorCategory)
		assert.Equal(t, string(StrategyReRetrieve), correction.Strategy)
		assert.False(t, correction.Success)
	}
}

func TestExecutePlanRecoversOnSecondAttempt(t *testing.T) {
	registry := toolkit.NewRegistry()
	invocations := 0
	registerStubTool(t, registry, "quality.inspections", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		invocations++
		if invocations == 1 {
			return nil, errors.New("data inspeksi tidak lengkap")
		}
		return map[string]interface{}{"rows": 5}, nil
	})

	service, client, toolCalls := newTestService(t, registry)

	plan := semantic.MultiIntentResult{
		Intents: []semantic.SingleIntentMatch{
			{IntentCode: "QUALITY_CHECK_QUERY", Priority: 85, ExecutionOrder: 1, Confidence: 0.95},
		},
		Strategy:          semantic.StrategySequential,
		OverallConfidence: 0.95,
	}

	response := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)

	assert.True(t, response.Success)
	assert.Equal(t, 2, invocations)
	require.Len(t, toolCalls.corrections, 1)
	assert.True(t, toolCalls.corrections[0].Success)
	assert.Equal(t, 1, toolCalls.corrections[0].CorrectionRound)
}

func TestExecutePlanRetriesAfterRecentFailedCall(t *testing.T) {
	registry := toolkit.NewRegistry()
	invocations := 0
	registerStubTool(t, registry, "production.start", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		invocations++
		return nil, errors.New("akses tidak diizinkan")
	})

	service, client, _ := newTestService(t, registry)

	plan := semantic.MultiIntentResult{
		Intents: []semantic.SingleIntentMatch{
			{IntentCode: "START_PRODUCTION", Priority: 95, ExecutionOrder: 1, Confidence: 0.95, Params: map[string]interface{}{"line_id": "3"}},
		},
		Strategy:          semantic.StrategySequential,
		OverallConfidence: 0.95,
	}

	first := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)
	assert.False(t, first.Success)
	assert.Equal(t, 1, invocations)

	// A failed call is not a duplicate: the immediate retry must reach the
	// tool again and report the real outcome, not a cached success.
	second := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)
	assert.False(t, second.Success)
	assert.Equal(t, "EXECUTION_FAILED", second.ErrorCode)
	assert.Equal(t, "akses tidak diizinkan", second.Message)
	assert.Equal(t, 2, invocations)
}

func TestExecutePlanReportsDuplicateAfterCacheEviction(t *testing.T) {
	registry := toolkit.NewRegistry()
	invocations := 0
	registerStubTool(t, registry, "quality.inspections", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		invocations++
		return map[string]interface{}{"rows": 5}, nil
	})

	service, client, _ := newTestService(t, registry)

	plan := semantic.MultiIntentResult{
		Intents: []semantic.SingleIntentMatch{
			{IntentCode: "QUALITY_CHECK_QUERY", Priority: 85, ExecutionOrder: 1, Confidence: 0.95},
		},
		Strategy:          semantic.StrategySequential,
		OverallConfidence: 0.95,
	}

	first := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)
	require.True(t, first.Success)

	// Drop the Redis payload; the tool call record still marks the repeat.
	redis := service.redis.(*fakeRedisStore)
	redis.mu.Lock()
	redis.entries = make(map[string]string)
	redis.mu.Unlock()

	second := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)
	assert.True(t, second.Success)
	assert.Equal(t, assistant.ResponseTypeCached, second.ResponseType)
	assert.Equal(t, map[string]interface{}{"duplicate": true}, second.Data)
	assert.Equal(t, 1, invocations)
}

func TestExecutePlanHonorsRecordedCorrectionBudget(t *testing.T) {
	registry := toolkit.NewRegistry()
	invocations := 0
	registerStubTool(t, registry, "quality.inspections", func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
		invocations++
		return nil, errors.New("data inspeksi tidak lengkap")
	})

	service, client, toolCalls := newTestService(t, registry)
	toolCalls.priorRounds = 3

	plan := semantic.MultiIntentResult{
		Intents: []semantic.SingleIntentMatch{
			{IntentCode: "QUALITY_CHECK_QUERY", Priority: 85, ExecutionOrder: 1, Confidence: 0.95},
		},
		Strategy:          semantic.StrategySequential,
		OverallConfidence: 0.95,
	}

	response := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)

	assert.False(t, response.Success)
	assert.Equal(t, "EXECUTION_FAILED", response.ErrorCode)
	assert.Equal(t, 1, invocations)
	assert.Empty(t, toolCalls.corrections)
}

func TestExecutePlanUnmappedIntentFailsWithoutInvoking(t *testing.T) {
	registry := toolkit.NewRegistry()
	service, client, _ := newTestService(t, registry)

	plan := semantic.MultiIntentResult{
		Intents: []semantic.SingleIntentMatch{
			{IntentCode: "NOT_A_REAL_INTENT", Priority: 50, ExecutionOrder: 1, Confidence: 0.95},
		},
		Strategy:          semantic.StrategySequential,
		OverallConfidence: 0.95,
	}

	response := service.executePlan(context.Background(), client, "session-1", "factory-1", plan)

	assert.False(t, response.Success)
	assert.Equal(t, "TOOL_NOT_REGISTERED", response.ErrorCode)
	assert.Equal(t, assistant.ResponseTypeError, response.ResponseType)
}
