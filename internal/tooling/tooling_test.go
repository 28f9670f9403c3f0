package tooling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatParamAcceptsNumberShapes(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]interface{}
		want   float64
	}{
		{"json number", map[string]interface{}{"days": float64(7)}, 7},
		{"int", map[string]interface{}{"days": 7}, 7},
		{"digit string", map[string]interface{}{"days": "7"}, 7},
		{"garbage string", map[string]interface{}{"days": "seminggu"}, 14},
		{"missing", map[string]interface{}{}, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, floatParam(tt.params, "days", 14))
		})
	}
}
