package semantic

import (
	"context"
	"time"
)

const (
	DirectExecuteThreshold = 0.92
	RerankThreshold        = 0.75
)

// Scorer is the routing input: it turns free text into a ranked match result.
type Scorer interface {
	Score(ctx context.Context, input string) (IntentMatchResult, error)
}

// Router maps a match score onto one of the three routing tiers. A scoring
// failure never blocks the turn: it degrades to the full-LLM tier with score
// zero and the cost shifts to the fallback path.
type Router struct {
	scorer Scorer
}

func NewRouter(scorer Scorer) *Router {
	return &Router{scorer: scorer}
}

func (r *Router) Route(ctx context.Context, input string) RouteDecision {
	start := time.Now()

	result, err := r.scorer.Score(ctx, input)
	if err != nil || ctx.Err() != nil {
		return NeedFullLLM{Score: 0, Took: time.Since(start)}
	}

	topScore := result.Confidence()
	took := time.Since(start)

	switch {
	case topScore >= DirectExecuteThreshold && result.Best != nil:
		return DirectExecute{Intent: *result.Best, Semantics: result.Semantics, Score: topScore, Took: took}
	case topScore >= RerankThreshold:
		return NeedReranking{Candidates: result.Candidates, Score: topScore, Took: took}
	default:
		return NeedFullLLM{Candidates: result.Candidates, Score: topScore, Took: took}
	}
}
