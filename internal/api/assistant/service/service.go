package assistantService

import (
	"PabrikGolang/internal/api/assistant"
	assistantRepository "PabrikGolang/internal/api/assistant/repository"
	"PabrikGolang/internal/entity"
	"PabrikGolang/pkg/gemini"
	chatGPT "PabrikGolang/pkg/openai"
	redisPkg "PabrikGolang/pkg/redis"
	"PabrikGolang/pkg/semantic"
	"PabrikGolang/pkg/toolkit"
	"PabrikGolang/pkg/utils"
	"PabrikGolang/pkg/whatsapp"
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type IAssistantService interface {
	ProcessCommand(ctx context.Context, user entity.UserLoginData, req assistant.ProcessCommandRequest) (*assistant.CommandResponse, error)
	ProcessConfirmation(ctx context.Context, user entity.UserLoginData, req assistant.ConfirmRequest) (*assistant.CommandResponse, error)
	TestRoute(ctx context.Context, req assistant.RouteTestRequest) (*assistant.RouteTestResponse, error)

	GetCommandHistory(ctx context.Context, userID string, page, limit int) (*assistant.HistoryResponse, error)
	GetAnalytics(ctx context.Context, factoryID string) (*assistant.AnalyticsResponse, error)
	GetSuggestions(ctx context.Context, userID string) (*assistant.SuggestionsResponse, error)

	GetIntents(ctx context.Context) ([]entity.IntentDefinition, error)
	CreateIntent(ctx context.Context, req assistant.CreateIntentRequest) error
	UpdateIntent(ctx context.Context, code string, req assistant.UpdateIntentRequest) error

	RunHousekeeping(ctx context.Context)
}

type assistantService struct {
	log        *logrus.Logger
	repo       assistantRepository.Repository
	registry   toolkit.IRegistry
	redis      redisPkg.IRedis
	chatGPT    chatGPT.IChatGPT
	embedder   gemini.IGemini
	utils      utils.IUtils
	whatsapp   whatsapp.IWhatsappSender
	alertPhone string

	resolver *semantic.CompositionResolver
	planner  *semantic.Planner

	// Routing state is rebuilt whenever the intent catalog changes.
	mu      sync.RWMutex
	router  *semantic.Router
	catalog map[string]entity.IntentDefinition

	cacheTTL      time.Duration
	recencyWindow time.Duration
}

func New(
	log *logrus.Logger,
	repo assistantRepository.Repository,
	registry toolkit.IRegistry,
	redisClient redisPkg.IRedis,
	chatClient chatGPT.IChatGPT,
	embedder gemini.IGemini,
	utilsPkg utils.IUtils,
	whatsappSender whatsapp.IWhatsappSender,
	alertPhone string,
) IAssistantService {
	s := &assistantService{
		log:           log,
		repo:          repo,
		registry:      registry,
		redis:         redisClient,
		chatGPT:       chatClient,
		embedder:      embedder,
		utils:         utilsPkg,
		whatsapp:      whatsappSender,
		alertPhone:    alertPhone,
		resolver:      semantic.NewCompositionResolver(semantic.DefaultCompositionRules()),
		planner:       semantic.NewPlanner(semantic.DefaultPlannerConfig()),
		catalog:       make(map[string]entity.IntentDefinition),
		cacheTTL:      5 * time.Minute,
		recencyWindow: 30 * time.Second,
	}

	if err := s.reloadRouting(context.Background()); err != nil {
		log.WithField("error", err.Error()).Warn("Intent catalog unavailable, routing on built-in defaults")
	}

	return s
}

// reloadRouting rebuilds the matcher and router from the stored catalog plus
// learned expressions. When the database is unreachable the built-in catalog
// keeps routing alive.
func (s *assistantService) reloadRouting(ctx context.Context) error {
	entries := semantic.DefaultCatalog()
	catalog := make(map[string]entity.IntentDefinition)

	client, err := s.repo.NewClient(false)
	if err == nil {
		intents, loadErr := client.Intents.GetActiveIntents(ctx)
		if loadErr == nil && len(intents) > 0 {
			entries = entries[:0]
			for _, intent := range intents {
				catalog[intent.Code] = intent
				entries = append(entries, semantic.CatalogEntry{
					Code:      intent.Code,
					Name:      intent.Name,
					Keywords:  intent.Keywords,
					Patterns:  intent.Patterns,
					Examples:  intent.Examples,
					Embedding: intent.Embedding,
					Priority:  intent.Priority,
					Verified:  intent.Verified,
					Source:    semantic.SourceCurated,
				})
			}
		} else {
			err = loadErr
		}

		if expressions, exprErr := client.Intents.GetLearnedExpressions(ctx); exprErr == nil {
			for _, expr := range expressions {
				entries = append(entries, semantic.CatalogEntry{
					Code:      expr.IntentCode,
					Name:      expr.IntentCode,
					Examples:  []string{expr.Expression},
					Embedding: expr.Embedding,
					Source:    semantic.SourceLearned,
					HitCount:  expr.HitCount,
				})
			}
		}
	}

	matcher := semantic.NewMatcher(entries, s.embedder)
	scorer := semantic.NewCompositeScorer(semantic.NewRuleParser(), s.resolver, matcher, entries)

	s.mu.Lock()
	s.router = semantic.NewRouter(scorer)
	s.catalog = catalog
	s.mu.Unlock()

	return err
}

func (s *assistantService) currentRouter() *semantic.Router {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.router
}

func (s *assistantService) intentName(code string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if intent, ok := s.catalog[code]; ok {
		return intent.Name
	}
	return code
}

// toolNameFor maps an intent code to its registered tool, preferring the
// catalog binding over the static defaults.
func (s *assistantService) toolNameFor(code string) (string, bool) {
	s.mu.RLock()
	intent, ok := s.catalog[code]
	s.mu.RUnlock()
	if ok && intent.ToolName != "" {
		return intent.ToolName, true
	}
	name, ok := defaultToolMapping[code]
	return name, ok
}

// RunHousekeeping blocks until the context is cancelled, clearing expired
// sessions and stale tool call records on a fixed interval.
func (s *assistantService) RunHousekeeping(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client, err := s.repo.NewClient(false)
			if err != nil {
				s.log.WithField("error", err.Error()).Error("Housekeeping client err")
				continue
			}
			if err := client.Sessions.CleanupOldSessions(ctx); err != nil {
				s.log.WithField("error", err.Error()).Error("Session cleanup err")
			}
			if err := client.ToolCalls.CleanupOldToolCalls(ctx); err != nil {
				s.log.WithField("error", err.Error()).Error("Tool call cleanup err")
			}
		}
	}
}
