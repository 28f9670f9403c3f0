package assistantService

import (
	"PabrikGolang/pkg/semantic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintParamsFoldsEqualityConstraints(t *testing.T) {
	sem := &semantic.IntentSemantics{
		Domain: semantic.DomainProduction,
		Action: semantic.ActionStart,
		Constraints: []semantic.Constraint{
			{Field: "line_id", Value: "3", Condition: semantic.ConditionEquals},
			{Field: "days", Value: "7", Condition: semantic.ConditionEquals},
			{Field: "defect_count", Value: "10", Condition: semantic.ConditionGreaterThan},
		},
	}

	params := constraintParams(sem, map[string]interface{}{"days": "14"})

	assert.Equal(t, "3", params["line_id"])
	// Explicit request context wins over the parsed constraint.
	assert.Equal(t, "14", params["days"])
	// Non-equality conditions have no direct parameter form.
	assert.NotContains(t, params, "defect_count")
}

func TestConstraintParamsWithoutSemantics(t *testing.T) {
	reqContext := map[string]interface{}{"line_id": "1"}

	assert.Equal(t, reqContext, constraintParams(nil, reqContext))
	assert.Nil(t, constraintParams(&semantic.IntentSemantics{}, nil))
}
