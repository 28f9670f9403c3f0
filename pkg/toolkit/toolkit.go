package toolkit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrToolNotFound          = errors.New("tool not found")
	ErrToolAlreadyRegistered = errors.New("tool already registered")
	ErrMissingRequiredParam  = errors.New("missing required parameter")
	ErrMalformedCall         = errors.New("malformed tool call")
)

// ExecuteFunc is the uniform contract every business tool exposes. The
// orchestrator never sees tool internals.
type ExecuteFunc func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error)

type Tool struct {
	Name               string
	Description        string
	ParameterSchema    map[string]interface{}
	RequiredParameters []string
	Execute            ExecuteFunc
}

func (t *Tool) Validate() error {
	if t.Name == "" {
		return errors.New("tool name is required")
	}
	if t.Execute == nil {
		return fmt.Errorf("tool %s has no execute function", t.Name)
	}
	return nil
}

type ToolCall struct {
	ID        string
	ToolName  string
	FactoryID string
	SessionID string
	Params    map[string]interface{}
	Critical  bool
}

// ToolResult is the only failure channel across the service boundary: handler
// errors and panics are wrapped here, never rethrown to the orchestrator.
type ToolResult struct {
	CallID       string                 `json:"call_id"`
	ToolName     string                 `json:"tool_name"`
	Success      bool                   `json:"success"`
	Data         map[string]interface{} `json:"data,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Took         time.Duration          `json:"took"`
}

// IRegistry is the explicit tool registry: a typed name-to-handler mapping
// populated at startup and queried by exact key. No reflection.
type IRegistry interface {
	Register(tool *Tool) error
	Get(name string) (*Tool, bool)
	Names() []string
	Count() int
	Invoke(ctx context.Context, call ToolCall) ToolResult
}

type registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

func NewRegistry() IRegistry {
	return &registry{tools: make(map[string]*Tool)}
}

func (r *registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

func (r *registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Invoke runs one tool call and converts every failure mode into a ToolResult:
// malformed call, unknown tool, missing parameters, handler error or panic.
func (r *registry) Invoke(ctx context.Context, call ToolCall) (result ToolResult) {
	start := time.Now()
	result = ToolResult{CallID: call.ID, ToolName: call.ToolName}

	defer func() {
		if rec := recover(); rec != nil {
			result.Success = false
			result.Data = nil
			result.ErrorMessage = fmt.Sprintf("tool %s panicked: %v", call.ToolName, rec)
		}
		result.Took = time.Since(start)
	}()

	if call.ToolName == "" {
		result.ErrorMessage = ErrMalformedCall.Error()
		return result
	}

	tool, ok := r.Get(call.ToolName)
	if !ok {
		result.ErrorMessage = fmt.Sprintf("%s: %s", ErrToolNotFound.Error(), call.ToolName)
		return result
	}

	for _, required := range tool.RequiredParameters {
		if _, ok := call.Params[required]; !ok {
			result.ErrorMessage = fmt.Sprintf("%s: %s", ErrMissingRequiredParam.Error(), required)
			return result
		}
	}

	data, err := tool.Execute(ctx, call.FactoryID, call.Params)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	result.Success = true
	result.Data = data
	return result
}
