package entity

import "time"

// IntentDefinition is one curated catalog row. Keywords, patterns, examples
// and the embedding are stored as JSON columns.
type IntentDefinition struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ToolName    string    `json:"tool_name"`
	Keywords    []string  `json:"keywords"`
	Patterns    []string  `json:"patterns"`
	Examples    []string  `json:"examples"`
	Embedding   []float32 `json:"embedding"`
	Priority    int       `json:"priority"`
	Verified    bool      `json:"verified"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LearnedExpression is a user phrasing confirmed to map onto an intent. Hit
// counts feed the tie-break between equally scored candidates.
type LearnedExpression struct {
	ID         string    `json:"id"`
	IntentCode string    `json:"intent_code"`
	Expression string    `json:"expression"`
	Embedding  []float32 `json:"embedding"`
	HitCount   int       `json:"hit_count"`
	CreatedAt  time.Time `json:"created_at"`
	LastHitAt  time.Time `json:"last_hit_at"`
}
