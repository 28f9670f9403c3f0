package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlanner() *Planner {
	return NewPlanner(PlannerConfig{
		Dependencies: map[string][]string{
			"DATA_EXPORT":  {"DATA_QUERY"},
			"DATA_REPORT":  {"DATA_EXPORT"},
			"CYCLE_A":      {"CYCLE_B"},
			"CYCLE_B":      {"CYCLE_A"},
		},
		MutexGroups: [][]string{
			{"START_PRODUCTION", "STOP_PRODUCTION"},
		},
		Priorities: map[string]int{
			"START_PRODUCTION": 95,
			"STOP_PRODUCTION":  95,
			"DATA_QUERY":       60,
		},
	})
}

func matches(codes ...string) []SingleIntentMatch {
	intents := make([]SingleIntentMatch, 0, len(codes))
	for _, code := range codes {
		intents = append(intents, SingleIntentMatch{IntentCode: code, Confidence: 0.9})
	}
	return intents
}

func orderOf(intents []SingleIntentMatch) []string {
	codes := make([]string, 0, len(intents))
	for _, intent := range intents {
		codes = append(codes, intent.IntentCode)
	}
	return codes
}

func TestOrderByDependenciesMovesPrerequisiteFirst(t *testing.T) {
	planner := testPlanner()

	ordered, unresolved := planner.OrderByDependencies(matches("DATA_EXPORT", "DATA_QUERY"))

	assert.Equal(t, []string{"DATA_QUERY", "DATA_EXPORT"}, orderOf(ordered))
	assert.Zero(t, unresolved)
	for i, intent := range ordered {
		assert.Equal(t, i, intent.ExecutionOrder)
	}
}

func TestOrderByDependenciesKeepsInputOrderWhenIndependent(t *testing.T) {
	planner := testPlanner()

	ordered, unresolved := planner.OrderByDependencies(matches("STOP_PRODUCTION", "DATA_QUERY"))

	assert.Equal(t, []string{"STOP_PRODUCTION", "DATA_QUERY"}, orderOf(ordered))
	assert.Zero(t, unresolved)
}

func TestOrderByDependenciesAbsentPrerequisiteIsIgnored(t *testing.T) {
	planner := testPlanner()

	// DATA_QUERY not part of the turn, so DATA_EXPORT has nothing to wait for.
	ordered, unresolved := planner.OrderByDependencies(matches("DATA_EXPORT"))

	assert.Equal(t, []string{"DATA_EXPORT"}, orderOf(ordered))
	assert.Zero(t, unresolved)
}

func TestOrderByDependenciesCycleLandsInDeferredTail(t *testing.T) {
	planner := testPlanner()

	ordered, unresolved := planner.OrderByDependencies(matches("CYCLE_A", "CYCLE_B", "DATA_QUERY"))

	require.Len(t, ordered, 3)
	assert.Equal(t, "DATA_QUERY", ordered[0].IntentCode)
	assert.Equal(t, 1, unresolved)
}

func TestOrderByDependenciesFillsPriority(t *testing.T) {
	planner := testPlanner()

	ordered, _ := planner.OrderByDependencies(matches("START_PRODUCTION"))

	require.Len(t, ordered, 1)
	assert.Equal(t, 95, ordered[0].Priority)
}

func TestHasMutexConflict(t *testing.T) {
	planner := testPlanner()

	assert.True(t, planner.HasMutexConflict([]string{"START_PRODUCTION", "STOP_PRODUCTION"}))
	assert.False(t, planner.HasMutexConflict([]string{"START_PRODUCTION", "DATA_QUERY"}))
	assert.False(t, planner.HasMutexConflict(nil))
}

func TestCanExecuteInParallel(t *testing.T) {
	planner := testPlanner()

	assert.True(t, planner.CanExecuteInParallel(matches("DATA_QUERY", "STOP_PRODUCTION")))
	assert.False(t, planner.CanExecuteInParallel(matches("DATA_QUERY", "DATA_EXPORT")))
	assert.False(t, planner.CanExecuteInParallel(matches("START_PRODUCTION", "STOP_PRODUCTION")))
	assert.True(t, planner.CanExecuteInParallel(matches("DATA_QUERY")))
}

func TestPlanStrategySelection(t *testing.T) {
	planner := testPlanner()

	parallel := planner.Plan(matches("DATA_QUERY", "STOP_PRODUCTION"))
	assert.Equal(t, StrategyParallel, parallel.Strategy)

	sequential := planner.Plan(matches("DATA_QUERY", "DATA_EXPORT"))
	assert.Equal(t, StrategySequential, sequential.Strategy)
	assert.Equal(t, []string{"DATA_QUERY", "DATA_EXPORT"}, orderOf(sequential.Intents))

	conflicted := planner.Plan(matches("START_PRODUCTION", "STOP_PRODUCTION"))
	assert.Equal(t, StrategyUserConfirm, conflicted.Strategy)
	assert.True(t, conflicted.RequiresConfirmation())
}

func TestPlanOverallConfidenceIsMean(t *testing.T) {
	planner := testPlanner()

	plan := planner.Plan([]SingleIntentMatch{
		{IntentCode: "DATA_QUERY", Confidence: 0.8},
		{IntentCode: "STOP_PRODUCTION", Confidence: 0.6},
	})

	assert.InDelta(t, 0.7, plan.OverallConfidence, 1e-9)
}

func TestRequiresConfirmation(t *testing.T) {
	lowConfidence := MultiIntentResult{
		Intents:           matches("DATA_QUERY"),
		Strategy:          StrategySequential,
		OverallConfidence: 0.6,
	}
	assert.True(t, lowConfidence.RequiresConfirmation())

	tooMany := MultiIntentResult{
		Intents:           matches("A", "B", "C", "D"),
		Strategy:          StrategyParallel,
		OverallConfidence: 0.95,
	}
	assert.True(t, tooMany.RequiresConfirmation())

	fine := MultiIntentResult{
		Intents:           matches("A", "B", "C"),
		Strategy:          StrategyParallel,
		OverallConfidence: 0.95,
	}
	assert.False(t, fine.RequiresConfirmation())
}
