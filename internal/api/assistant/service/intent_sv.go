package assistantService

import (
	"PabrikGolang/internal/api/assistant"
	"PabrikGolang/internal/entity"
	"context"
	"errors"
	"strings"
	"time"
)

func (s *assistantService) GetIntents(ctx context.Context) ([]entity.IntentDefinition, error) {
	client, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}
	return client.Intents.GetActiveIntents(ctx)
}

func (s *assistantService) CreateIntent(ctx context.Context, req assistant.CreateIntentRequest) error {
	client, err := s.repo.NewClient(true)
	if err != nil {
		return err
	}
	defer client.Rollback()

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	_, err = client.Intents.GetIntentByCode(ctx, code)
	if err == nil {
		return assistant.ErrIntentAlreadyExists
	}
	if !errors.Is(err, assistant.ErrIntentNotFound) {
		return err
	}

	intent := entity.IntentDefinition{
		Code:        code,
		Name:        req.Name,
		Description: req.Description,
		ToolName:    req.ToolName,
		Keywords:    req.Keywords,
		Patterns:    req.Patterns,
		Examples:    req.Examples,
		Embedding:   s.embedExamples(ctx, req.Examples),
		Priority:    req.Priority,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := client.Intents.CreateIntent(ctx, intent); err != nil {
		return err
	}
	if err := client.Commit(); err != nil {
		return err
	}

	if err := s.reloadRouting(ctx); err != nil {
		s.log.WithField("error", err.Error()).Warn("Routing reload err after intent create")
	}
	return nil
}

func (s *assistantService) UpdateIntent(ctx context.Context, code string, req assistant.UpdateIntentRequest) error {
	client, err := s.repo.NewClient(true)
	if err != nil {
		return err
	}
	defer client.Rollback()

	intent, err := client.Intents.GetIntentByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return err
	}

	if req.Name != "" {
		intent.Name = req.Name
	}
	if req.Description != "" {
		intent.Description = req.Description
	}
	if req.ToolName != "" {
		intent.ToolName = req.ToolName
	}
	if req.Keywords != nil {
		intent.Keywords = req.Keywords
	}
	if req.Patterns != nil {
		intent.Patterns = req.Patterns
	}
	if req.Examples != nil {
		intent.Examples = req.Examples
		intent.Embedding = s.embedExamples(ctx, req.Examples)
	}
	if req.Priority > 0 {
		intent.Priority = req.Priority
	}
	if req.IsActive != nil {
		intent.IsActive = *req.IsActive
	}
	intent.UpdatedAt = time.Now()

	if err := client.Intents.UpdateIntent(ctx, intent); err != nil {
		return err
	}
	if err := client.Commit(); err != nil {
		return err
	}

	if err := s.reloadRouting(ctx); err != nil {
		s.log.WithField("error", err.Error()).Warn("Routing reload err after intent update")
	}
	return nil
}

// embedExamples derives one representative embedding from the first example.
// Embeddings are optional; any failure leaves the intent without one.
func (s *assistantService) embedExamples(ctx context.Context, examples []string) []float32 {
	if s.embedder == nil || len(examples) == 0 {
		return nil
	}
	vec, err := s.embedder.Embed(ctx, examples[0])
	if err != nil {
		s.log.WithField("error", err.Error()).Debug("Example embedding err")
		return nil
	}
	return vec
}
