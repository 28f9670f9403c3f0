package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBaseWithoutModifiers(t *testing.T) {
	resolver := NewCompositionResolver(DefaultCompositionRules())

	code, ok := resolver.Resolve(DomainQuality, ActionQuery, nil)

	assert.True(t, ok)
	assert.Equal(t, "QUALITY_CHECK_QUERY", code)
}

func TestResolveSingleModifier(t *testing.T) {
	resolver := NewCompositionResolver(DefaultCompositionRules())

	code, ok := resolver.Resolve(DomainQuality, ActionQuery, []Modifier{ModifierStats})

	assert.True(t, ok)
	assert.Equal(t, "QUALITY_STATS", code)
}

func TestResolveModifierPrecedence(t *testing.T) {
	resolver := NewCompositionResolver(DefaultCompositionRules())

	tests := []struct {
		name      string
		domain    Domain
		action    Action
		modifiers []Modifier
		want      string
	}{
		{
			name:      "ranking beats stats",
			domain:    DomainData,
			action:    ActionQuery,
			modifiers: []Modifier{ModifierStats, ModifierRanking},
			want:      "DATA_RANKING",
		},
		{
			name:      "negation beats everything",
			domain:    DomainQuality,
			action:    ActionQuery,
			modifiers: []Modifier{ModifierStats, ModifierRanking, ModifierNegation},
			want:      "QUALITY_FAILED_QUERY",
		},
		{
			name:      "comparison beats mom",
			domain:    DomainData,
			action:    ActionQuery,
			modifiers: []Modifier{ModifierMoM, ModifierComparison},
			want:      "DATA_COMPARISON",
		},
		{
			name:      "order of input does not matter",
			domain:    DomainData,
			action:    ActionQuery,
			modifiers: []Modifier{ModifierRanking, ModifierStats},
			want:      "DATA_RANKING",
		},
		{
			name:      "unmapped modifier falls to next in precedence",
			domain:    DomainScale,
			action:    ActionQuery,
			modifiers: []Modifier{ModifierRanking, ModifierStats},
			want:      "SCALE_STATS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := resolver.Resolve(tt.domain, tt.action, tt.modifiers)
			assert.True(t, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestResolveUnknownCombination(t *testing.T) {
	resolver := NewCompositionResolver(DefaultCompositionRules())

	_, ok := resolver.Resolve(DomainSystem, ActionDelete, nil)
	assert.False(t, ok)
}

func TestResolveModifierMissFallsBackToBase(t *testing.T) {
	resolver := NewCompositionResolver(DefaultCompositionRules())

	// PERSONAL has no mapping under QUALITY_QUERY.
	code, ok := resolver.Resolve(DomainQuality, ActionQuery, []Modifier{ModifierPersonal})

	assert.True(t, ok)
	assert.Equal(t, "QUALITY_CHECK_QUERY", code)
}
