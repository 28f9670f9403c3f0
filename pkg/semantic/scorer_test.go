package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleParserExtractsTriple(t *testing.T) {
	parser := NewRuleParser()

	sem, matched, ok := parser.Parse("cek statistik kualitas bulan ini")

	require.True(t, ok)
	assert.Equal(t, DomainQuality, sem.Domain)
	assert.Equal(t, ActionQuery, sem.Action)
	assert.Equal(t, []Modifier{ModifierStats}, sem.Modifiers)
	assert.Equal(t, ParseMethodRule, sem.Method)
	assert.Equal(t, "QUALITY.QUERY.STATS", sem.Path())
	assert.Contains(t, matched, "kualitas")
	assert.Contains(t, matched, "statistik")
}

func TestRuleParserUnknownDomain(t *testing.T) {
	parser := NewRuleParser()

	_, _, ok := parser.Parse("halo apa kabar")
	assert.False(t, ok)
}

func TestRuleParserDeduplicatesModifiers(t *testing.T) {
	parser := NewRuleParser()

	sem, _, ok := parser.Parse("statistik stats kualitas")

	require.True(t, ok)
	assert.Equal(t, []Modifier{ModifierStats}, sem.Modifiers)
}

func TestRuleParserExtractsConstraints(t *testing.T) {
	parser := NewRuleParser()

	sem, _, ok := parser.Parse("cek inspeksi lini 3 untuk 7 hari top 5")

	require.True(t, ok)
	assert.Equal(t, DomainQuality, sem.Domain)
	assert.Equal(t, []Constraint{
		{Field: "line_id", Value: "3", Condition: ConditionEquals},
		{Field: "days", Value: "7", Condition: ConditionEquals},
		{Field: "limit", Value: "5", Condition: ConditionEquals},
	}, sem.Constraints)
}

func TestRuleParserObjectDefaultsToGeneral(t *testing.T) {
	parser := NewRuleParser()

	sem, _, ok := parser.Parse("cek kualitas")

	require.True(t, ok)
	assert.Equal(t, ObjectGeneral, sem.Object)
	assert.Equal(t, "QUALITY.QUERY.GENERAL", sem.Path())
	assert.Empty(t, sem.Constraints)
}

func TestCompositeScorerRulePathResolvesComposition(t *testing.T) {
	entries := testEntries()
	matcher := NewMatcher(entries, nil)
	resolver := NewCompositionResolver(DefaultCompositionRules())
	scorer := NewCompositeScorer(NewRuleParser(), resolver, matcher, entries)

	// "statistik kualitas" resolves QUALITY+QUERY+STATS even though the
	// catalog has no QUALITY_STATS entry to match against.
	result, err := scorer.Score(context.Background(), "cek statistik kualitas")
	require.NoError(t, err)
	require.NotNil(t, result.Best)

	assert.Equal(t, "QUALITY_STATS", result.Best.Code)
	assert.Equal(t, MatchMethodRule, result.Best.Method)
	assert.GreaterOrEqual(t, result.Best.Confidence, DirectExecuteThreshold)

	require.NotNil(t, result.Semantics)
	assert.Equal(t, "QUALITY.QUERY.STATS", result.Semantics.Path())
	assert.InDelta(t, rulePathConfidence, result.Semantics.Confidence, 1e-9)
}

func TestCompositeScorerMergesWithMatcherCandidate(t *testing.T) {
	entries := testEntries()
	matcher := NewMatcher(entries, nil)
	resolver := NewCompositionResolver(DefaultCompositionRules())
	scorer := NewCompositeScorer(NewRuleParser(), resolver, matcher, entries)

	// The rule path and the keyword path both land on QUALITY_CHECK_QUERY;
	// the candidate list must carry it once.
	result, err := scorer.Score(context.Background(), "cek kualitas inspeksi")
	require.NoError(t, err)
	require.NotNil(t, result.Best)

	assert.Equal(t, "QUALITY_CHECK_QUERY", result.Best.Code)
	seen := 0
	for _, candidate := range result.Candidates {
		if candidate.Code == "QUALITY_CHECK_QUERY" {
			seen++
		}
	}
	assert.Equal(t, 1, seen)
}

func TestCompositeScorerFallsThroughWithoutDomainKeyword(t *testing.T) {
	entries := testEntries()
	matcher := NewMatcher(entries, nil)
	resolver := NewCompositionResolver(DefaultCompositionRules())
	scorer := NewCompositeScorer(NewRuleParser(), resolver, matcher, entries)

	result, err := scorer.Score(context.Background(), "halo apa kabar")
	require.NoError(t, err)

	assert.Nil(t, result.Best)
}
