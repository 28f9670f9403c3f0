package toolkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashParamsOrderIndependent(t *testing.T) {
	a := map[string]interface{}{"a": 1, "b": 2, "c": "x"}
	b := map[string]interface{}{"c": "x", "b": 2, "a": 1}

	assert.Equal(t, HashParams(a), HashParams(b))
}

func TestHashParamsTypeStableNumbers(t *testing.T) {
	fromCode := map[string]interface{}{"days": int(7), "limit": int64(50)}
	fromJSON := map[string]interface{}{"days": float64(7), "limit": float64(50)}

	assert.Equal(t, HashParams(fromCode), HashParams(fromJSON))
}

func TestHashParamsNestedStructures(t *testing.T) {
	a := map[string]interface{}{
		"filter": map[string]interface{}{"line": "L1", "shift": 2},
		"codes":  []interface{}{"A", "B"},
	}
	b := map[string]interface{}{
		"codes":  []interface{}{"A", "B"},
		"filter": map[string]interface{}{"shift": 2.0, "line": "L1"},
	}

	assert.Equal(t, HashParams(a), HashParams(b))
}

func TestHashParamsDistinguishesValues(t *testing.T) {
	a := map[string]interface{}{"line": "L1"}
	b := map[string]interface{}{"line": "L2"}

	assert.NotEqual(t, HashParams(a), HashParams(b))
}

func TestHashParamsListOrderMatters(t *testing.T) {
	a := map[string]interface{}{"codes": []interface{}{"A", "B"}}
	b := map[string]interface{}{"codes": []interface{}{"B", "A"}}

	assert.NotEqual(t, HashParams(a), HashParams(b))
}

func TestHashParamsEmptyAndNil(t *testing.T) {
	assert.Equal(t, HashParams(nil), HashParams(map[string]interface{}{}))
	assert.NotEqual(t,
		HashParams(map[string]interface{}{"a": nil}),
		HashParams(map[string]interface{}{}),
	)
}
