package assistantService

import (
	"PabrikGolang/internal/api/assistant"
	assistantRepository "PabrikGolang/internal/api/assistant/repository"
	"PabrikGolang/internal/entity"
	contextPkg "PabrikGolang/pkg/context"
	chatGPT "PabrikGolang/pkg/openai"
	"PabrikGolang/pkg/semantic"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const maxCommandLength = 500

func (s *assistantService) ProcessCommand(ctx context.Context, user entity.UserLoginData, req assistant.ProcessCommandRequest) (*assistant.CommandResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, assistant.ErrEmptyCommand
	}
	if utf8.RuneCountInString(input) > maxCommandLength {
		return nil, assistant.ErrCommandTooLong
	}

	client, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}

	session, err := s.getOrCreateSession(ctx, client, user.ID, req.FactoryID)
	if err != nil {
		return nil, err
	}

	// A fresh command supersedes whatever plan was waiting for confirmation.
	if session.PendingConfirmation {
		session.PendingConfirmation = false
		session.PendingPlan = ""
	}

	decision := s.currentRouter().Route(ctx, input)
	routeType := string(decision.Type())

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"route":      routeType,
		"score":      decision.TopScore(),
		"latency_ms": decision.Latency().Milliseconds(),
	}).Info("Command routed")

	history := s.sessionHistory(session)

	intents, interrupt, err := s.resolveIntents(ctx, decision, input, req.Context, history)
	if err != nil {
		return nil, err
	}
	if interrupt != nil {
		interrupt.SessionID = session.ID
		if interrupt.ResponseType == assistant.ResponseTypeChat {
			appendHistory(&session, input, interrupt.Message)
		}
		s.persistTurn(ctx, user, req, routeType, nil, interrupt)
		s.touchSession(ctx, client, session)
		return interrupt, nil
	}

	plan := s.planner.Plan(intents)

	if plan.RequiresConfirmation() {
		planJSON, marshalErr := json.Marshal(plan)
		if marshalErr != nil {
			return nil, marshalErr
		}
		session.PendingConfirmation = true
		session.PendingPlan = string(planJSON)
		if updateErr := client.Sessions.UpdateSession(ctx, session); updateErr != nil {
			return nil, updateErr
		}

		response := s.buildConfirmResponse(session.ID, plan)
		s.persistTurn(ctx, user, req, routeType, plan.Intents, response)
		return response, nil
	}

	response := s.executePlan(ctx, client, session.ID, req.FactoryID, plan)
	response.SessionID = session.ID

	if response.Success && len(plan.Intents) == 1 && decision.Type() != semantic.RouteDirectExecute {
		s.recordLearnedExpression(ctx, client, input, plan.Intents[0].IntentCode)
	}

	s.persistTurn(ctx, user, req, routeType, plan.Intents, response)
	s.touchSession(ctx, client, session)

	return response, nil
}

func (s *assistantService) ProcessConfirmation(ctx context.Context, user entity.UserLoginData, req assistant.ConfirmRequest) (*assistant.CommandResponse, error) {
	client, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}

	session, err := client.Sessions.GetSessionByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !session.PendingConfirmation || session.PendingPlan == "" {
		return nil, assistant.ErrNoPendingPlan
	}

	pendingPlan := session.PendingPlan
	session.PendingConfirmation = false
	session.PendingPlan = ""
	if err := client.Sessions.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	if !req.Approve {
		return &assistant.CommandResponse{
			Success:      true,
			Message:      "Baik, perintah dibatalkan",
			ResponseType: assistant.ResponseTypeChat,
			SessionID:    session.ID,
		}, nil
	}

	var plan semantic.MultiIntentResult
	if err := json.Unmarshal([]byte(pendingPlan), &plan); err != nil {
		return nil, assistant.ErrNoPendingPlan
	}

	response := s.executePlan(ctx, client, session.ID, req.FactoryID, plan)
	response.SessionID = session.ID

	logReq := assistant.ProcessCommandRequest{Input: "[confirmation]", FactoryID: req.FactoryID}
	s.persistTurn(ctx, user, logReq, "CONFIRMED", plan.Intents, response)

	return response, nil
}

func (s *assistantService) TestRoute(ctx context.Context, req assistant.RouteTestRequest) (*assistant.RouteTestResponse, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, assistant.ErrEmptyCommand
	}

	decision := s.currentRouter().Route(ctx, input)

	var candidates []semantic.Candidate
	rulePath := ""
	switch d := decision.(type) {
	case semantic.DirectExecute:
		candidates = []semantic.Candidate{d.Intent}
		if d.Semantics != nil {
			rulePath = d.Semantics.Path()
		}
	case semantic.NeedReranking:
		candidates = d.Candidates
	case semantic.NeedFullLLM:
		candidates = d.Candidates
	}

	return &assistant.RouteTestResponse{
		Input:      input,
		RouteType:  decision.Type(),
		TopScore:   decision.TopScore(),
		LatencyMs:  decision.Latency().Milliseconds(),
		RulePath:   rulePath,
		Candidates: candidates,
	}, nil
}

// resolveIntents turns a route decision into the concrete intent list. A
// non-nil interrupt response short-circuits the turn (clarification or plain
// conversation) without touching the planner.
func (s *assistantService) resolveIntents(ctx context.Context, decision semantic.RouteDecision, input string, reqContext map[string]interface{}, history []chatGPT.ConversationMessage) ([]semantic.SingleIntentMatch, *assistant.CommandResponse, error) {
	switch d := decision.(type) {
	case semantic.DirectExecute:
		return []semantic.SingleIntentMatch{{
			IntentCode: d.Intent.Code,
			Confidence: d.Score,
			Params:     constraintParams(d.Semantics, reqContext),
			Priority:   s.planner.Priority(d.Intent.Code),
		}}, nil, nil

	case semantic.NeedReranking:
		if match, ok := s.rerank(ctx, input, d.Candidates, reqContext); ok {
			return []semantic.SingleIntentMatch{match}, nil, nil
		}
		// Reranker unavailable or undecided: pay the full classification cost.
		return s.classifyWithLLM(ctx, input, reqContext, history)

	default:
		return s.classifyWithLLM(ctx, input, reqContext, history)
	}
}

const rerankCandidateLimit = 5

func (s *assistantService) rerank(ctx context.Context, input string, candidates []semantic.Candidate, reqContext map[string]interface{}) (semantic.SingleIntentMatch, bool) {
	limit := len(candidates)
	if limit > rerankCandidateLimit {
		limit = rerankCandidateLimit
	}

	options := make([]chatGPT.IntentInfo, 0, limit)
	valid := make(map[string]bool, limit)
	for _, candidate := range candidates[:limit] {
		options = append(options, chatGPT.IntentInfo{Code: candidate.Code, Name: candidate.Name})
		valid[candidate.Code] = true
	}

	result, err := s.chatGPT.RerankCandidates(ctx, input, options)
	if err != nil {
		s.log.WithField("error", err.Error()).Warn("Rerank err, falling back to full classification")
		return semantic.SingleIntentMatch{}, false
	}
	if !valid[result.Code] {
		return semantic.SingleIntentMatch{}, false
	}

	return semantic.SingleIntentMatch{
		IntentCode: result.Code,
		Confidence: result.Confidence,
		Params:     reqContext,
		Priority:   s.planner.Priority(result.Code),
	}, true
}

func (s *assistantService) classifyWithLLM(ctx context.Context, input string, reqContext map[string]interface{}, history []chatGPT.ConversationMessage) ([]semantic.SingleIntentMatch, *assistant.CommandResponse, error) {
	result, err := s.chatGPT.ClassifyIntent(ctx, input, s.knownIntentInfo())
	if err != nil {
		s.log.WithField("error", err.Error()).Warn("Classification err, degrading to conversation")
		return s.conversationFallback(ctx, input, history)
	}

	if result.NeedsClarification {
		question := result.ClarificationQuestion
		if question == "" {
			question = "Bisa dijelaskan lebih detail maksud perintahnya?"
		}
		return nil, &assistant.CommandResponse{
			Success:      true,
			Message:      question,
			ResponseType: assistant.ResponseTypeClarify,
			Confidence:   result.Confidence,
		}, nil
	}

	if len(result.Intents) == 0 {
		return s.conversationFallback(ctx, input, history)
	}

	intents := make([]semantic.SingleIntentMatch, 0, len(result.Intents))
	for _, detected := range result.Intents {
		params := make(map[string]interface{}, len(detected.Params)+len(reqContext))
		for k, v := range reqContext {
			params[k] = v
		}
		for k, v := range detected.Params {
			params[k] = v
		}
		intents = append(intents, semantic.SingleIntentMatch{
			IntentCode: detected.Code,
			Confidence: detected.Confidence,
			Params:     params,
			Priority:   s.planner.Priority(detected.Code),
		})
	}
	return intents, nil, nil
}

// constraintParams folds rule-extracted equality constraints into the tool
// params. Explicit request context wins on key collision.
func constraintParams(sem *semantic.IntentSemantics, reqContext map[string]interface{}) map[string]interface{} {
	if sem == nil || len(sem.Constraints) == 0 {
		return reqContext
	}

	params := make(map[string]interface{}, len(sem.Constraints)+len(reqContext))
	for _, constraint := range sem.Constraints {
		if constraint.Condition != semantic.ConditionEquals {
			continue
		}
		params[constraint.Field] = constraint.Value
	}
	for k, v := range reqContext {
		params[k] = v
	}
	return params
}

func (s *assistantService) conversationFallback(ctx context.Context, input string, history []chatGPT.ConversationMessage) ([]semantic.SingleIntentMatch, *assistant.CommandResponse, error) {
	reply, err := s.chatGPT.ProcessConversation(ctx, input, history)
	if err != nil {
		return nil, nil, assistant.ErrClassificationFailed
	}
	return nil, &assistant.CommandResponse{
		Success:      true,
		Message:      reply,
		ResponseType: assistant.ResponseTypeChat,
	}, nil
}

const sessionHistoryLimit = 10

// sessionHistory rebuilds the conversational context stored on the session.
// The stored shape is the JSON round-trip of appendHistory's entries.
func (s *assistantService) sessionHistory(session entity.AssistantSession) []chatGPT.ConversationMessage {
	raw, ok := session.Context["history"].([]interface{})
	if !ok {
		return nil
	}

	history := make([]chatGPT.ConversationMessage, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		role, _ := entry["role"].(string)
		content, _ := entry["content"].(string)
		if role == "" || content == "" {
			continue
		}
		history = append(history, chatGPT.ConversationMessage{Role: role, Content: content})
	}
	return history
}

func appendHistory(session *entity.AssistantSession, input, reply string) {
	if session.Context == nil {
		session.Context = map[string]interface{}{}
	}

	raw, _ := session.Context["history"].([]interface{})
	raw = append(raw,
		map[string]interface{}{"role": "user", "content": input},
		map[string]interface{}{"role": "assistant", "content": reply},
	)
	if len(raw) > sessionHistoryLimit {
		raw = raw[len(raw)-sessionHistoryLimit:]
	}
	session.Context["history"] = raw
}

func (s *assistantService) buildConfirmResponse(sessionID string, plan semantic.MultiIntentResult) *assistant.CommandResponse {
	candidates := make([]assistant.CandidateOption, 0, len(plan.Intents))
	names := make([]string, 0, len(plan.Intents))
	for _, intent := range plan.Intents {
		name := s.intentName(intent.IntentCode)
		candidates = append(candidates, assistant.CandidateOption{
			Code:       intent.IntentCode,
			Name:       name,
			Confidence: intent.Confidence,
		})
		names = append(names, name)
	}

	message := "Saya akan menjalankan: " + strings.Join(names, ", ") + ". Lanjutkan?"
	if plan.Strategy == semantic.StrategyUserConfirm {
		message = "Perintah ini saling bertentangan: " + strings.Join(names, ", ") + ". Yakin ingin melanjutkan?"
	}

	return &assistant.CommandResponse{
		Success:              true,
		Message:              message,
		ResponseType:         assistant.ResponseTypeConfirm,
		RequiresConfirmation: true,
		Confidence:           plan.OverallConfidence,
		SessionID:            sessionID,
		Candidates:           candidates,
	}
}

func (s *assistantService) getOrCreateSession(ctx context.Context, client assistantRepository.Client, userID, factoryID string) (entity.AssistantSession, error) {
	session, err := client.Sessions.GetSessionByUserID(ctx, userID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, assistant.ErrSessionNotFound) {
		return entity.AssistantSession{}, err
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return entity.AssistantSession{}, err
	}

	session = entity.AssistantSession{
		ID:           id,
		UserID:       userID,
		FactoryID:    factoryID,
		Context:      map[string]interface{}{},
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
	}
	if err := client.Sessions.CreateSession(ctx, session); err != nil {
		return entity.AssistantSession{}, err
	}
	return session, nil
}

func (s *assistantService) touchSession(ctx context.Context, client assistantRepository.Client, session entity.AssistantSession) {
	if err := client.Sessions.UpdateSession(ctx, session); err != nil {
		s.log.WithFields(logrus.Fields{
			"session_id": session.ID,
			"error":      err.Error(),
		}).Warn("Session update err")
	}
}

// recordLearnedExpression stores a confirmed phrasing so future matching can
// resolve it without the LLM. A phrasing seen before accumulates hits instead
// of duplicating. Best effort: a failure never surfaces to the user.
func (s *assistantService) recordLearnedExpression(ctx context.Context, client assistantRepository.Client, input, intentCode string) {
	if existing, err := client.Intents.GetLearnedExpressionByText(ctx, intentCode, input); err == nil {
		if hitErr := client.Intents.IncrementExpressionHit(ctx, existing.ID); hitErr != nil {
			s.log.WithFields(logrus.Fields{
				"intent": intentCode,
				"error":  hitErr.Error(),
			}).Debug("Expression hit increment err")
		}
		return
	} else if !errors.Is(err, assistant.ErrExpressionNotFound) {
		return
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return
	}

	var embedding []float32
	if s.embedder != nil {
		if vec, embedErr := s.embedder.Embed(ctx, input); embedErr == nil {
			embedding = vec
		}
	}

	expr := entity.LearnedExpression{
		ID:         id,
		IntentCode: intentCode,
		Expression: input,
		Embedding:  embedding,
		HitCount:   1,
		CreatedAt:  time.Now(),
		LastHitAt:  time.Now(),
	}
	if err := client.Intents.CreateLearnedExpression(ctx, expr); err != nil {
		s.log.WithFields(logrus.Fields{
			"intent": intentCode,
			"error":  err.Error(),
		}).Debug("Learned expression store err")
	}
}

func (s *assistantService) knownIntentInfo() []chatGPT.IntentInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.catalog) > 0 {
		infos := make([]chatGPT.IntentInfo, 0, len(s.catalog))
		for _, intent := range s.catalog {
			infos = append(infos, chatGPT.IntentInfo{
				Code:        intent.Code,
				Name:        intent.Name,
				Description: intent.Description,
			})
		}
		return infos
	}

	defaults := semantic.DefaultCatalog()
	infos := make([]chatGPT.IntentInfo, 0, len(defaults))
	for _, entry := range defaults {
		infos = append(infos, chatGPT.IntentInfo{Code: entry.Code, Name: entry.Name})
	}
	return infos
}

// persistTurn writes the command log in its own transaction so an audit
// failure cannot undo an already executed plan.
func (s *assistantService) persistTurn(ctx context.Context, user entity.UserLoginData, req assistant.ProcessCommandRequest, routeType string, intents []semantic.SingleIntentMatch, response *assistant.CommandResponse) {
	txClient, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithField("error", err.Error()).Warn("Command log client err")
		return
	}
	defer txClient.Rollback()

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return
	}

	codes := make([]string, 0, len(intents))
	for _, intent := range intents {
		codes = append(codes, intent.IntentCode)
	}

	cmd := entity.CommandLog{
		ID:          id,
		UserID:      user.ID,
		FactoryID:   req.FactoryID,
		Input:       req.Input,
		RouteType:   routeType,
		IntentCodes: codes,
		Response:    response.Message,
		Success:     response.Success,
		Confidence:  response.Confidence,
		Metadata: map[string]interface{}{
			"response_type": response.ResponseType,
			"total_count":   response.TotalCount,
			"success_count": response.SuccessCount,
		},
		CreatedAt: time.Now(),
	}

	if err := txClient.Commands.CreateCommandLog(ctx, cmd); err != nil {
		s.log.WithField("error", err.Error()).Warn("Command log write err")
		return
	}
	if err := txClient.Commit(); err != nil {
		s.log.WithField("error", err.Error()).Warn("Command log commit err")
	}
}
