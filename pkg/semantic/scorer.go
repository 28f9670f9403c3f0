package semantic

import "context"

const rulePathConfidence = 0.93

// CompositeScorer runs the cheap rule path (keyword parse + composition
// resolution) alongside the catalog matcher and merges the two candidate
// sets. A rule hit for a code already matched semantically keeps the higher
// confidence and the union of matched keywords.
type CompositeScorer struct {
	parser   *RuleParser
	resolver *CompositionResolver
	matcher  *Matcher
	catalog  map[string]CatalogEntry
}

func NewCompositeScorer(parser *RuleParser, resolver *CompositionResolver, matcher *Matcher, entries []CatalogEntry) *CompositeScorer {
	catalog := make(map[string]CatalogEntry, len(entries))
	for _, entry := range entries {
		catalog[entry.Code] = entry
	}
	return &CompositeScorer{
		parser:   parser,
		resolver: resolver,
		matcher:  matcher,
		catalog:  catalog,
	}
}

func (s *CompositeScorer) Score(ctx context.Context, input string) (IntentMatchResult, error) {
	result, err := s.matcher.Score(ctx, input)
	if err != nil {
		return IntentMatchResult{}, err
	}

	sem, matched, ok := s.parser.Parse(input)
	if !ok {
		return result, nil
	}
	code, ok := s.resolver.Resolve(sem.Domain, sem.Action, sem.Modifiers)
	if !ok {
		return result, nil
	}
	sem.Confidence = rulePathConfidence
	result.Semantics = &sem

	merged := false
	for i := range result.Candidates {
		if result.Candidates[i].Code != code {
			continue
		}
		if rulePathConfidence > result.Candidates[i].Confidence {
			result.Candidates[i].Confidence = rulePathConfidence
			result.Candidates[i].Method = MatchMethodRule
		}
		result.Candidates[i].MatchedKeywords = unionKeywords(result.Candidates[i].MatchedKeywords, matched)
		merged = true
		break
	}

	if !merged {
		candidate := Candidate{
			Code:            code,
			Name:            code,
			Confidence:      rulePathConfidence,
			Method:          MatchMethodRule,
			MatchedKeywords: matched,
			Source:          SourceCurated,
			Verified:        true,
		}
		if entry, known := s.catalog[code]; known {
			candidate.Name = entry.Name
			candidate.Priority = entry.Priority
			candidate.HitCount = entry.HitCount
		}
		result.Candidates = append(result.Candidates, candidate)
	}

	sortCandidates(result.Candidates)
	best := result.Candidates[0]
	result.Best = &best
	return result, nil
}

func unionKeywords(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, kw := range list {
			if seen[kw] {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}
