package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScorer struct {
	result IntentMatchResult
	err    error
}

func (s stubScorer) Score(ctx context.Context, input string) (IntentMatchResult, error) {
	return s.result, s.err
}

func resultWithScore(score float64) IntentMatchResult {
	best := Candidate{Code: "QUALITY_STATS", Confidence: score}
	return IntentMatchResult{Best: &best, Candidates: []Candidate{best}}
}

func TestRouterThresholds(t *testing.T) {
	tests := []struct {
		name     string
		topScore float64
		want     RouteType
	}{
		{"well below rerank threshold", 0.5, RouteNeedFullLLM},
		{"just below rerank threshold", 0.749, RouteNeedFullLLM},
		{"exactly rerank threshold", 0.75, RouteNeedReranking},
		{"just below direct threshold", 0.919, RouteNeedReranking},
		{"exactly direct threshold", 0.92, RouteDirectExecute},
		{"above direct threshold", 0.97, RouteDirectExecute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(stubScorer{result: resultWithScore(tt.topScore)})
			decision := router.Route(context.Background(), "cek kualitas")

			assert.Equal(t, tt.want, decision.Type())
			assert.InDelta(t, tt.topScore, decision.TopScore(), 1e-9)
		})
	}
}

func TestRouterDirectExecuteCarriesIntent(t *testing.T) {
	result := resultWithScore(0.95)
	result.Semantics = &IntentSemantics{
		Domain:    DomainQuality,
		Action:    ActionQuery,
		Object:    Object(ModifierStats),
		Method:    ParseMethodRule,
		Modifiers: []Modifier{ModifierStats},
	}
	router := NewRouter(stubScorer{result: result})

	decision := router.Route(context.Background(), "statistik kualitas")
	direct, ok := decision.(DirectExecute)
	if !ok {
		t.Fatalf("expected DirectExecute, got %T", decision)
	}
	assert.Equal(t, "QUALITY_STATS", direct.Intent.Code)
	require.NotNil(t, direct.Semantics)
	assert.Equal(t, "QUALITY.QUERY.STATS", direct.Semantics.Path())
}

func TestRouterDegradesOnScorerError(t *testing.T) {
	router := NewRouter(stubScorer{err: errors.New("embedding backend down")})

	decision := router.Route(context.Background(), "cek kualitas")

	assert.Equal(t, RouteNeedFullLLM, decision.Type())
	assert.Zero(t, decision.TopScore())
}

func TestRouterDegradesOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	router := NewRouter(stubScorer{result: resultWithScore(0.95)})
	decision := router.Route(ctx, "cek kualitas")

	assert.Equal(t, RouteNeedFullLLM, decision.Type())
	assert.Zero(t, decision.TopScore())
}
