package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries() []CatalogEntry {
	return []CatalogEntry{
		{
			Code:     "QUALITY_CHECK_QUERY",
			Name:     "Cek Kualitas",
			Keywords: []string{"kualitas", "inspeksi", "defect", "batch"},
			Examples: []string{"cek kualitas batch terakhir"},
			Priority: 85,
			Verified: true,
			Source:   SourceCurated,
		},
		{
			Code:     "SCALE_STATUS_QUERY",
			Name:     "Status Timbangan",
			Keywords: []string{"timbangan", "berat", "kalibrasi"},
			Patterns: []string{`(?i)status\s+timbangan`},
			Priority: 70,
			Verified: true,
			Source:   SourceCurated,
		},
	}
}

func TestMatcherExactExample(t *testing.T) {
	matcher := NewMatcher(testEntries(), nil)

	result, err := matcher.Score(context.Background(), "Cek kualitas batch terakhir")
	require.NoError(t, err)
	require.NotNil(t, result.Best)

	assert.Equal(t, "QUALITY_CHECK_QUERY", result.Best.Code)
	assert.Equal(t, MatchMethodExact, result.Best.Method)
	assert.Equal(t, 1.0, result.Best.Confidence)
}

func TestMatcherRegexPattern(t *testing.T) {
	matcher := NewMatcher(testEntries(), nil)

	result, err := matcher.Score(context.Background(), "tolong lihat status timbangan dong")
	require.NoError(t, err)
	require.NotNil(t, result.Best)

	assert.Equal(t, "SCALE_STATUS_QUERY", result.Best.Code)
	assert.Equal(t, MatchMethodRegex, result.Best.Method)
	assert.InDelta(t, 0.95, result.Best.Confidence, 1e-9)
}

func TestMatcherNoMatch(t *testing.T) {
	matcher := NewMatcher(testEntries(), nil)

	result, err := matcher.Score(context.Background(), "halo apa kabar")
	require.NoError(t, err)

	assert.Nil(t, result.Best)
	assert.True(t, result.NeedsLLMFallback())
}

func TestStrongSignalRequiresAllClauses(t *testing.T) {
	base := Candidate{
		Code:            "QUALITY_CHECK_QUERY",
		Confidence:      0.9,
		MatchedKeywords: []string{"kualitas", "inspeksi", "batch"},
		Priority:        85,
	}

	tests := []struct {
		name   string
		mutate func(*IntentMatchResult)
		want   bool
	}{
		{
			name:   "all clauses hold",
			mutate: func(r *IntentMatchResult) {},
			want:   true,
		},
		{
			name: "too few matched keywords",
			mutate: func(r *IntentMatchResult) {
				r.Best.MatchedKeywords = []string{"kualitas", "batch"}
			},
			want: false,
		},
		{
			name: "gap too small",
			mutate: func(r *IntentMatchResult) {
				competitor := Candidate{Code: "QUALITY_STATS", Confidence: 0.85}
				r.Candidates = append(r.Candidates, competitor)
			},
			want: false,
		},
		{
			name: "priority too low",
			mutate: func(r *IntentMatchResult) {
				r.Best.Priority = 79
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := base
			result := IntentMatchResult{Best: &best, Candidates: []Candidate{best}}
			tt.mutate(&result)

			assert.Equal(t, tt.want, result.IsStrongSignal())
		})
	}
}

func TestNeedsCandidateSelection(t *testing.T) {
	first := Candidate{Code: "A", Confidence: 0.8}
	close := Candidate{Code: "B", Confidence: 0.65}
	far := Candidate{Code: "C", Confidence: 0.5}

	closeResult := IntentMatchResult{Best: &first, Candidates: []Candidate{first, close}}
	assert.True(t, closeResult.NeedsCandidateSelection())

	farResult := IntentMatchResult{Best: &first, Candidates: []Candidate{first, far}}
	assert.False(t, farResult.NeedsCandidateSelection())

	single := IntentMatchResult{Best: &first, Candidates: []Candidate{first}}
	assert.False(t, single.NeedsCandidateSelection())
}

func TestSortCandidatesTieBreak(t *testing.T) {
	candidates := []Candidate{
		{Code: "learned-fewer-hits", Confidence: 0.8, Source: SourceLearned, HitCount: 2},
		{Code: "curated", Confidence: 0.8, Source: SourceCurated, HitCount: 2},
		{Code: "verified", Confidence: 0.8, Verified: true, Source: SourceLearned},
		{Code: "higher-confidence", Confidence: 0.9, Source: SourceLearned},
		{Code: "learned-more-hits", Confidence: 0.8, Source: SourceLearned, HitCount: 5},
	}

	sortCandidates(candidates)

	got := make([]string, len(candidates))
	for i, c := range candidates {
		got[i] = c.Code
	}
	assert.Equal(t, []string{
		"higher-confidence",
		"verified",
		"learned-more-hits",
		"curated",
		"learned-fewer-hits",
	}, got)
}

func TestCosineSimilarityClamped(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}))
	assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Zero(t, CosineSimilarity(nil, nil))
}
