package semantic

import (
	"fmt"
	"time"
)

type Domain string

const (
	DomainData       Domain = "DATA"
	DomainQuality    Domain = "QUALITY"
	DomainScale      Domain = "SCALE"
	DomainProduction Domain = "PRODUCTION"
	DomainCustomer   Domain = "CUSTOMER"
	DomainSupplier   Domain = "SUPPLIER"
	DomainSystem     Domain = "SYSTEM"
	DomainUnknown    Domain = "UNKNOWN"
)

type Action string

const (
	ActionQuery   Action = "QUERY"
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionStart   Action = "START"
	ActionStop    Action = "STOP"
	ActionAnalyze Action = "ANALYZE"
	ActionUnknown Action = "UNKNOWN"
)

type Object string

// ObjectGeneral marks a command whose tokens carried no object-narrowing
// modifier.
const ObjectGeneral Object = "GENERAL"

type Modifier string

const (
	ModifierNegation    Modifier = "NEGATION"
	ModifierRanking     Modifier = "RANKING"
	ModifierComparison  Modifier = "COMPARISON"
	ModifierMoM         Modifier = "MOM"
	ModifierYoY         Modifier = "YOY"
	ModifierQoQ         Modifier = "QOQ"
	ModifierAnomaly     Modifier = "ANOMALY"
	ModifierStats       Modifier = "STATS"
	ModifierAggregation Modifier = "AGGREGATION"
	ModifierPersonal    Modifier = "PERSONAL"
	ModifierMonthly     Modifier = "MONTHLY"
	ModifierFuture      Modifier = "FUTURE"
	ModifierCritical    Modifier = "CRITICAL"
)

// modifierPriority is the fixed precedence used by the composition resolver.
// Earlier entries win when several modifiers map for the same domain/action.
var modifierPriority = []Modifier{
	ModifierNegation,
	ModifierRanking,
	ModifierComparison,
	ModifierMoM,
	ModifierYoY,
	ModifierQoQ,
	ModifierAnomaly,
	ModifierStats,
	ModifierAggregation,
	ModifierPersonal,
	ModifierMonthly,
	ModifierFuture,
	ModifierCritical,
}

type ConditionType string

const (
	ConditionEquals      ConditionType = "EQ"
	ConditionGreaterThan ConditionType = "GT"
	ConditionLessThan    ConditionType = "LT"
	ConditionLike        ConditionType = "LIKE"
	ConditionBetween     ConditionType = "BETWEEN"
)

type Constraint struct {
	Field     string        `json:"field"`
	Value     string        `json:"value"`
	Condition ConditionType `json:"condition"`
}

type ParseMethod string

const (
	ParseMethodRule     ParseMethod = "rule"
	ParseMethodSemantic ParseMethod = "semantic"
	ParseMethodLLM      ParseMethod = "llm"
)

// IntentSemantics is one parsed command. Constraints are appended during
// parsing only; the struct is treated as immutable once handed to execution.
type IntentSemantics struct {
	Domain           Domain       `json:"domain"`
	Action           Action       `json:"action"`
	Object           Object       `json:"object"`
	ObjectID         string       `json:"object_id,omitempty"`
	ObjectIdentifier string       `json:"object_identifier,omitempty"`
	Modifiers        []Modifier   `json:"modifiers,omitempty"`
	Constraints      []Constraint `json:"constraints,omitempty"`
	Confidence       float64      `json:"confidence"`
	Method           ParseMethod  `json:"method"`
}

// Path is the semantic lookup key, e.g. "QUALITY.QUERY.CHECK".
func (s IntentSemantics) Path() string {
	return fmt.Sprintf("%s.%s.%s", s.Domain, s.Action, s.Object)
}

type MatchMethod string

const (
	MatchMethodExact     MatchMethod = "exact"
	MatchMethodRule      MatchMethod = "rule"
	MatchMethodRegex     MatchMethod = "regex"
	MatchMethodKeyword   MatchMethod = "keyword"
	MatchMethodEmbedding MatchMethod = "embedding"
	MatchMethodLLM       MatchMethod = "llm"
)

type CandidateSource string

const (
	SourceCurated CandidateSource = "curated"
	SourceLearned CandidateSource = "learned"
)

type Candidate struct {
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Confidence      float64         `json:"confidence"`
	Method          MatchMethod     `json:"method"`
	MatchedKeywords []string        `json:"matched_keywords,omitempty"`
	Source          CandidateSource `json:"source"`
	Verified        bool            `json:"verified"`
	HitCount        int             `json:"hit_count"`
	Priority        int             `json:"priority"`
}

const (
	strongSignalKeywordMin  = 3
	strongSignalGapMin      = 0.3
	strongSignalPriorityMin = 80

	fallbackConfidenceMin = 0.3
	selectionGapMax       = 0.2
	confirmConfidenceMin  = 0.7
)

// IntentMatchResult is one classification attempt. Candidates are sorted best
// first. Semantics is set when the rule path parsed the input. Created per
// user turn and discarded after it.
type IntentMatchResult struct {
	Best       *Candidate       `json:"best,omitempty"`
	Candidates []Candidate      `json:"candidates"`
	Semantics  *IntentSemantics `json:"semantics,omitempty"`
}

func (r IntentMatchResult) Confidence() float64 {
	if r.Best == nil {
		return 0
	}
	return r.Best.Confidence
}

// gap is the confidence distance between the top two candidates. With a single
// candidate there is no competitor, so the full confidence counts as the gap.
func (r IntentMatchResult) gap() float64 {
	if len(r.Candidates) < 2 {
		return r.Confidence()
	}
	return r.Candidates[0].Confidence - r.Candidates[1].Confidence
}

func (r IntentMatchResult) IsStrongSignal() bool {
	if r.Best == nil {
		return false
	}
	return len(r.Best.MatchedKeywords) >= strongSignalKeywordMin &&
		r.gap() > strongSignalGapMin &&
		r.Best.Priority >= strongSignalPriorityMin
}

func (r IntentMatchResult) NeedsLLMFallback() bool {
	return r.Best == nil || r.Confidence() < fallbackConfidenceMin
}

func (r IntentMatchResult) NeedsCandidateSelection() bool {
	if len(r.Candidates) < 2 {
		return false
	}
	return r.Candidates[0].Confidence-r.Candidates[1].Confidence < selectionGapMax
}

func (r IntentMatchResult) RequiresConfirmation() bool {
	if r.Best == nil {
		return false
	}
	if r.IsStrongSignal() {
		return false
	}
	return r.NeedsCandidateSelection() || r.Confidence() < confirmConfidenceMin
}

type RouteType string

const (
	RouteDirectExecute RouteType = "DIRECT_EXECUTE"
	RouteNeedReranking RouteType = "NEED_RERANKING"
	RouteNeedFullLLM   RouteType = "NEED_FULL_LLM"
)

// RouteDecision is a tagged union over the three routing outcomes. Each turn
// ends in exactly one of DirectExecute, NeedReranking or NeedFullLLM; a direct
// execution always carries its intent by construction.
type RouteDecision interface {
	Type() RouteType
	TopScore() float64
	Latency() time.Duration
}

type DirectExecute struct {
	Intent    Candidate        `json:"intent"`
	Semantics *IntentSemantics `json:"semantics,omitempty"`
	Score     float64          `json:"score"`
	Took      time.Duration    `json:"took"`
}

func (d DirectExecute) Type() RouteType        { return RouteDirectExecute }
func (d DirectExecute) TopScore() float64      { return d.Score }
func (d DirectExecute) Latency() time.Duration { return d.Took }

type NeedReranking struct {
	Candidates []Candidate   `json:"candidates"`
	Score      float64       `json:"score"`
	Took       time.Duration `json:"took"`
}

func (d NeedReranking) Type() RouteType        { return RouteNeedReranking }
func (d NeedReranking) TopScore() float64      { return d.Score }
func (d NeedReranking) Latency() time.Duration { return d.Took }

type NeedFullLLM struct {
	Candidates []Candidate   `json:"candidates"`
	Score      float64       `json:"score"`
	Took       time.Duration `json:"took"`
}

func (d NeedFullLLM) Type() RouteType        { return RouteNeedFullLLM }
func (d NeedFullLLM) TopScore() float64      { return d.Score }
func (d NeedFullLLM) Latency() time.Duration { return d.Took }

type ExecutionStrategy string

const (
	StrategyParallel    ExecutionStrategy = "PARALLEL"
	StrategySequential  ExecutionStrategy = "SEQUENTIAL"
	StrategyUserConfirm ExecutionStrategy = "USER_CONFIRM"
)

type SingleIntentMatch struct {
	IntentCode     string                 `json:"intent_code"`
	Confidence     float64                `json:"confidence"`
	Params         map[string]interface{} `json:"params,omitempty"`
	ExecutionOrder int                    `json:"execution_order"`
	Priority       int                    `json:"priority"`
}

const maxIntentsWithoutConfirm = 3

type MultiIntentResult struct {
	Intents           []SingleIntentMatch `json:"intents"`
	Strategy          ExecutionStrategy   `json:"strategy"`
	OverallConfidence float64             `json:"overall_confidence"`
}

func (r MultiIntentResult) RequiresConfirmation() bool {
	return r.Strategy == StrategyUserConfirm ||
		r.OverallConfidence < confirmConfidenceMin ||
		len(r.Intents) > maxIntentsWithoutConfirm
}
