package toolkit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool() *Tool {
	return &Tool{
		Name:               "echo",
		Description:        "returns its params",
		RequiredParameters: []string{"value"},
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{"value": params["value"], "factory": factoryID}, nil
		},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(echoTool()))
	assert.Equal(t, 1, registry.Count())
	assert.Equal(t, []string{"echo"}, registry.Names())

	tool, ok := registry.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", tool.Name)
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(echoTool()))
	err := registry.Register(echoTool())

	assert.ErrorIs(t, err, ErrToolAlreadyRegistered)
}

func TestRegistryRejectsInvalidTool(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register(&Tool{Name: "no-handler"})
	assert.Error(t, err)

	err = registry.Register(&Tool{Execute: echoTool().Execute})
	assert.Error(t, err)
}

func TestInvokeSuccess(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(echoTool()))

	result := registry.Invoke(context.Background(), ToolCall{
		ID:        "call-1",
		ToolName:  "echo",
		FactoryID: "F01",
		Params:    map[string]interface{}{"value": "hi"},
	})

	assert.True(t, result.Success)
	assert.Equal(t, "call-1", result.CallID)
	assert.Equal(t, "hi", result.Data["value"])
	assert.Equal(t, "F01", result.Data["factory"])
}

func TestInvokeFailureModes(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(echoTool()))
	require.NoError(t, registry.Register(&Tool{
		Name:        "boom",
		Description: "always errors",
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			return nil, errors.New("data tidak lengkap")
		},
	}))
	require.NoError(t, registry.Register(&Tool{
		Name:        "panics",
		Description: "always panics",
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			panic("boom")
		},
	}))

	tests := []struct {
		name    string
		call    ToolCall
		wantMsg string
	}{
		{
			name:    "empty tool name",
			call:    ToolCall{ID: "c1"},
			wantMsg: ErrMalformedCall.Error(),
		},
		{
			name:    "unknown tool",
			call:    ToolCall{ID: "c2", ToolName: "missing"},
			wantMsg: ErrToolNotFound.Error(),
		},
		{
			name:    "missing required param",
			call:    ToolCall{ID: "c3", ToolName: "echo"},
			wantMsg: ErrMissingRequiredParam.Error(),
		},
		{
			name:    "handler error",
			call:    ToolCall{ID: "c4", ToolName: "boom"},
			wantMsg: "data tidak lengkap",
		},
		{
			name:    "handler panic",
			call:    ToolCall{ID: "c5", ToolName: "panics"},
			wantMsg: "panicked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := registry.Invoke(context.Background(), tt.call)

			assert.False(t, result.Success)
			assert.Contains(t, result.ErrorMessage, tt.wantMsg)
		})
	}
}
