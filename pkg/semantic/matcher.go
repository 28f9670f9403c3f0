package semantic

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CatalogEntry is one known intent as loaded from the catalog (curated) or
// from confirmed user expressions (learned).
type CatalogEntry struct {
	Code      string
	Name      string
	Keywords  []string
	Patterns  []string
	Examples  []string
	Embedding []float32
	Priority  int
	Verified  bool
	Source    CandidateSource
	HitCount  int
}

// Embedder produces a vector for free text. Treated as a black box; scores
// derived from it are clamped to [0, 1].
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Matcher struct {
	entries   []CatalogEntry
	patterns  map[string][]*regexp.Regexp
	embedder  Embedder
	stopWords map[string]bool
}

// NewMatcher precompiles catalog patterns. Invalid patterns are skipped rather
// than failing startup. The embedder may be nil, in which case only exact,
// regex and keyword signals contribute.
func NewMatcher(entries []CatalogEntry, embedder Embedder) *Matcher {
	stopWords := map[string]bool{
		"saya": true, "ke": true, "di": true, "dan": true, "atau": true,
		"untuk": true, "dari": true, "dengan": true, "pada": true, "yang": true,
		"tolong": true, "mau": true, "ingin": true, "lihat": true, "tampilkan": true,
		"the": true, "to": true, "a": true, "of": true, "for": true,
		"me": true, "my": true, "please": true, "show": true, "check": true,
	}

	patterns := make(map[string][]*regexp.Regexp, len(entries))
	for _, entry := range entries {
		for _, raw := range entry.Patterns {
			re, err := regexp.Compile(raw)
			if err != nil {
				continue
			}
			patterns[entry.Code] = append(patterns[entry.Code], re)
		}
	}

	return &Matcher{
		entries:   entries,
		patterns:  patterns,
		embedder:  embedder,
		stopWords: stopWords,
	}
}

// Score classifies one input against the catalog and returns the ranked
// candidate set. An embedder failure does not fail the match; the remaining
// signals still produce a result.
func (m *Matcher) Score(ctx context.Context, input string) (IntentMatchResult, error) {
	clean := m.cleanText(input)
	tokens := m.tokenize(clean)

	var inputVec []float32
	if m.embedder != nil {
		if vec, err := m.embedder.Embed(ctx, input); err == nil {
			inputVec = vec
		}
	}

	var candidates []Candidate
	for _, entry := range m.entries {
		candidate, ok := m.scoreEntry(entry, clean, tokens, inputVec)
		if ok {
			candidates = append(candidates, candidate)
		}
	}

	sortCandidates(candidates)

	result := IntentMatchResult{Candidates: candidates}
	if len(candidates) > 0 {
		best := candidates[0]
		result.Best = &best
	}
	return result, nil
}

const minCandidateConfidence = 0.2

func (m *Matcher) scoreEntry(entry CatalogEntry, clean string, tokens []string, inputVec []float32) (Candidate, bool) {
	var matched []string
	method := MatchMethodKeyword
	score := 0.0

	for _, example := range entry.Examples {
		if m.cleanText(example) == clean {
			score = 1.0
			method = MatchMethodExact
			break
		}
	}

	if score < 1.0 {
		for _, re := range m.patterns[entry.Code] {
			if re.MatchString(clean) {
				score = math.Max(score, 0.95)
				method = MatchMethodRegex
				break
			}
		}
	}

	if len(entry.Keywords) > 0 {
		hits := 0.0
		for _, keyword := range entry.Keywords {
			kw := m.cleanText(keyword)
			for _, token := range tokens {
				if token == kw {
					matched = append(matched, keyword)
					hits += 1.0
					break
				}
			}
		}
		if hits > 0 {
			keywordScore := math.Min(0.9, hits/float64(len(entry.Keywords))*1.2)
			if keywordScore > score {
				score = keywordScore
				method = MatchMethodKeyword
			}
		}
	}

	if inputVec != nil && len(entry.Embedding) > 0 {
		sim := CosineSimilarity(inputVec, entry.Embedding)
		if sim > score {
			score = sim
			method = MatchMethodEmbedding
		}
	}

	if score < minCandidateConfidence {
		return Candidate{}, false
	}

	return Candidate{
		Code:            entry.Code,
		Name:            entry.Name,
		Confidence:      math.Min(score, 1.0),
		Method:          method,
		MatchedKeywords: matched,
		Source:          entry.Source,
		Verified:        entry.Verified,
		HitCount:        entry.HitCount,
		Priority:        entry.Priority,
	}, true
}

// sortCandidates orders by the four-level tie-break policy: similarity,
// verified over unverified, historical hit count, curated over learned.
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Verified != b.Verified {
			return a.Verified
		}
		if a.HitCount != b.HitCount {
			return a.HitCount > b.HitCount
		}
		if a.Source != b.Source {
			return a.Source == SourceCurated
		}
		return false
	})
}

// CosineSimilarity returns the similarity of two vectors clamped to [0, 1].
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(sim, 1.0))
}

func (m *Matcher) cleanText(text string) string {
	text = strings.ToLower(text)

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, text)

	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, result)

	return strings.Join(strings.Fields(result), " ")
}

func (m *Matcher) tokenize(clean string) []string {
	var tokens []string
	for _, field := range strings.Fields(clean) {
		if m.stopWords[field] {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
