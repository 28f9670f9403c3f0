package semantic

// PlannerConfig carries the static orchestration tables. They are injected at
// startup so tests can run with alternate configurations.
type PlannerConfig struct {
	// Dependencies maps an intent code to its prerequisite codes.
	Dependencies map[string][]string
	// MutexGroups lists intent-code sets that must not co-occur in one turn.
	MutexGroups [][]string
	// Priorities assigns the execution priority per intent code. Intents with
	// priority >= RequiredPriority abort the remaining sequence on failure.
	Priorities map[string]int
}

const RequiredPriority = 90

type Planner struct {
	cfg PlannerConfig
}

func NewPlanner(cfg PlannerConfig) *Planner {
	return &Planner{cfg: cfg}
}

func (p *Planner) Priority(code string) int {
	return p.cfg.Priorities[code]
}

// OrderByDependencies performs a stable single forward partition: intents
// whose prerequisites are absent from the turn or already placed are emitted
// first in input order; the rest are appended afterward, also in input order.
// This is not a full topological sort; a dependency cycle leaves its members
// in the deferred tail, each appended exactly once. The second return value
// reports how many intents could not be placed by their prerequisites.
func (p *Planner) OrderByDependencies(intents []SingleIntentMatch) ([]SingleIntentMatch, int) {
	present := make(map[string]bool, len(intents))
	for _, intent := range intents {
		present[intent.IntentCode] = true
	}

	placed := make(map[string]bool, len(intents))
	ordered := make([]SingleIntentMatch, 0, len(intents))
	var deferred []SingleIntentMatch

	for _, intent := range intents {
		satisfied := true
		for _, prereq := range p.cfg.Dependencies[intent.IntentCode] {
			if present[prereq] && !placed[prereq] {
				satisfied = false
				break
			}
		}
		if satisfied {
			placed[intent.IntentCode] = true
			ordered = append(ordered, intent)
		} else {
			deferred = append(deferred, intent)
		}
	}

	unresolved := 0
	for _, intent := range deferred {
		satisfied := true
		for _, prereq := range p.cfg.Dependencies[intent.IntentCode] {
			if present[prereq] && !placed[prereq] {
				satisfied = false
				break
			}
		}
		if !satisfied {
			unresolved++
		}
		placed[intent.IntentCode] = true
		ordered = append(ordered, intent)
	}

	for i := range ordered {
		ordered[i].ExecutionOrder = i
		if ordered[i].Priority == 0 {
			ordered[i].Priority = p.cfg.Priorities[ordered[i].IntentCode]
		}
	}
	return ordered, unresolved
}

// HasMutexConflict reports whether any mutual-exclusion group has two or more
// members among the given codes.
func (p *Planner) HasMutexConflict(codes []string) bool {
	present := make(map[string]bool, len(codes))
	for _, code := range codes {
		present[code] = true
	}
	for _, group := range p.cfg.MutexGroups {
		hits := 0
		for _, member := range group {
			if present[member] {
				hits++
			}
		}
		if hits >= 2 {
			return true
		}
	}
	return false
}

// CanExecuteInParallel is false when a mutex group co-occurs or when any
// intent's prerequisites intersect the other intents of the turn: a
// dependency implies ordering, which implies non-parallelism.
func (p *Planner) CanExecuteInParallel(intents []SingleIntentMatch) bool {
	if len(intents) < 2 {
		return true
	}

	codes := make([]string, 0, len(intents))
	present := make(map[string]bool, len(intents))
	for _, intent := range intents {
		codes = append(codes, intent.IntentCode)
		present[intent.IntentCode] = true
	}

	if p.HasMutexConflict(codes) {
		return false
	}

	for _, intent := range intents {
		for _, prereq := range p.cfg.Dependencies[intent.IntentCode] {
			if present[prereq] {
				return false
			}
		}
	}
	return true
}

// Plan resolves ordering and strategy for one turn's matched intents.
// Mutually exclusive intents cannot be auto-resolved, so the plan asks the
// user to confirm which one they meant.
func (p *Planner) Plan(intents []SingleIntentMatch) MultiIntentResult {
	overall := 0.0
	if len(intents) > 0 {
		sum := 0.0
		for _, intent := range intents {
			sum += intent.Confidence
		}
		overall = sum / float64(len(intents))
	}

	ordered, _ := p.OrderByDependencies(intents)

	codes := make([]string, 0, len(ordered))
	for _, intent := range ordered {
		codes = append(codes, intent.IntentCode)
	}

	strategy := StrategySequential
	switch {
	case p.HasMutexConflict(codes):
		strategy = StrategyUserConfirm
	case p.CanExecuteInParallel(ordered):
		strategy = StrategyParallel
	}

	return MultiIntentResult{
		Intents:           ordered,
		Strategy:          strategy,
		OverallConfidence: overall,
	}
}
