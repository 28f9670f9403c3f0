package entity

import "time"

// AssistantSession keeps one user's conversational state, including a pending
// multi-intent plan awaiting confirmation.
type AssistantSession struct {
	ID                  string                 `json:"id"`
	UserID              string                 `json:"user_id"`
	FactoryID           string                 `json:"factory_id"`
	PendingConfirmation bool                   `json:"pending_confirmation"`
	PendingPlan         string                 `json:"pending_plan"`
	Context             map[string]interface{} `json:"context"`
	CreatedAt           time.Time              `json:"created_at"`
	LastActivity        time.Time              `json:"last_activity"`
}

// CommandLog records one processed turn end to end.
type CommandLog struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	FactoryID   string                 `json:"factory_id"`
	Input       string                 `json:"input"`
	RouteType   string                 `json:"route_type"`
	IntentCodes []string               `json:"intent_codes"`
	Response    string                 `json:"response"`
	Success     bool                   `json:"success"`
	Confidence  float64                `json:"confidence"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ToolCallRecord is one tool invocation. Besides auditing, recent records back
// the second, cache-independent redundancy check.
type ToolCallRecord struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	ToolName   string    `json:"tool_name"`
	ParamsHash string    `json:"params_hash"`
	Success    bool      `json:"success"`
	ErrorMsg   string    `json:"error_msg"`
	CreatedAt  time.Time `json:"created_at"`
}

// CorrectionRecord is one retry attempt for a failed tool call. One row per
// round; retries stop once the configured maximum is reached.
type CorrectionRecord struct {
	ID              string    `json:"id"`
	ToolCallID      string    `json:"tool_call_id"`
	ErrorCategory   string    `json:"error_category"`
	Strategy        string    `json:"strategy"`
	CorrectionRound int       `json:"correction_round"`
	Success         bool      `json:"success"`
	CreatedAt       time.Time `json:"created_at"`
}
