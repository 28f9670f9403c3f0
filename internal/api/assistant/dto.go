package assistant

import (
	"time"

	"PabrikGolang/pkg/semantic"
)

type ProcessCommandRequest struct {
	Input     string                 `json:"input" validate:"required,min=1,max=500"`
	FactoryID string                 `json:"factory_id" validate:"required"`
	SessionID string                 `json:"session_id,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

type ConfirmRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	FactoryID string `json:"factory_id" validate:"required"`
	Approve   bool   `json:"approve"`
}

// Response types carried in the uniform envelope.
const (
	ResponseTypeExecution = "execution"
	ResponseTypeConfirm   = "confirm"
	ResponseTypeClarify   = "clarify"
	ResponseTypeChat      = "chat"
	ResponseTypeCached    = "cached"
	ResponseTypeError     = "error"
)

// CommandResponse is the uniform envelope populated by every path, success or
// failure.
type CommandResponse struct {
	Success              bool              `json:"success"`
	IntentCode           string            `json:"intent_code,omitempty"`
	IntentName           string            `json:"intent_name,omitempty"`
	Data                 interface{}       `json:"data,omitempty"`
	Message              string            `json:"message"`
	ResponseType         string            `json:"response_type"`
	ErrorCode            string            `json:"error_code,omitempty"`
	RequiresConfirmation bool              `json:"requires_confirmation,omitempty"`
	Confidence           float64           `json:"confidence,omitempty"`
	SessionID            string            `json:"session_id,omitempty"`
	Candidates           []CandidateOption `json:"candidates,omitempty"`
	Results              []IntentExecution `json:"results,omitempty"`
	TotalCount           int               `json:"total_count,omitempty"`
	SuccessCount         int               `json:"success_count,omitempty"`
}

type CandidateOption struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// IntentExecution is one member of a merged multi-intent response, reported in
// resolved execution order.
type IntentExecution struct {
	IntentCode string                 `json:"intent_code"`
	IntentName string                 `json:"intent_name"`
	Order      int                    `json:"order"`
	Success    bool                   `json:"success"`
	Skipped    bool                   `json:"skipped,omitempty"`
	Cached     bool                   `json:"cached,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Message    string                 `json:"message,omitempty"`
	ErrorCode  string                 `json:"error_code,omitempty"`
}

type RouteTestRequest struct {
	Input string `json:"input" validate:"required,min=1,max=500"`
}

type RouteTestResponse struct {
	Input      string               `json:"input"`
	RouteType  semantic.RouteType   `json:"route_type"`
	TopScore   float64              `json:"top_score"`
	LatencyMs  int64                `json:"latency_ms"`
	RulePath   string               `json:"rule_path,omitempty"`
	Candidates []semantic.Candidate `json:"candidates"`
}

type CommandHistoryItem struct {
	ID          string    `json:"id"`
	Input       string    `json:"input"`
	RouteType   string    `json:"route_type"`
	IntentCodes []string  `json:"intent_codes"`
	Response    string    `json:"response"`
	Success     bool      `json:"success"`
	Confidence  float64   `json:"confidence"`
	CreatedAt   time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Items []CommandHistoryItem `json:"items"`
	Total int                  `json:"total"`
}

type AnalyticsResponse struct {
	TotalCommands     int                `json:"total_commands"`
	SuccessRate       float64            `json:"success_rate"`
	TopIntents        map[string]int     `json:"top_intents"`
	ConfidenceStats   map[string]float64 `json:"confidence_stats"`
	UsageByHour       map[string]int     `json:"usage_by_hour"`
	RouteDistribution map[string]int     `json:"route_distribution"`
}

type Suggestion struct {
	Text        string `json:"text"`
	IntentCode  string `json:"intent_code"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

type CreateIntentRequest struct {
	Code        string   `json:"code" validate:"required,min=2,max=64"`
	Name        string   `json:"name" validate:"required,min=2,max=128"`
	Description string   `json:"description,omitempty"`
	ToolName    string   `json:"tool_name" validate:"required"`
	Keywords    []string `json:"keywords,omitempty"`
	Patterns    []string `json:"patterns,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	Priority    int      `json:"priority" validate:"gte=0,lte=100"`
}

type UpdateIntentRequest struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	ToolName    string   `json:"tool_name,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Patterns    []string `json:"patterns,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}
