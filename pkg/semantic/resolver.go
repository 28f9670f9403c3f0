package semantic

import "fmt"

// CompositionRule maps one domain/action pair to intent codes. Base applies
// when the command carries no recognized modifier; ByModifier refines it.
type CompositionRule struct {
	Base       string
	ByModifier map[Modifier]string
}

// CompositionResolver is a pure lookup over a static rule table built once at
// startup. A failed lookup is not an error: callers fall through to semantic
// or LLM classification.
type CompositionResolver struct {
	rules map[string]CompositionRule
}

func NewCompositionResolver(rules map[string]CompositionRule) *CompositionResolver {
	copied := make(map[string]CompositionRule, len(rules))
	for key, rule := range rules {
		byModifier := make(map[Modifier]string, len(rule.ByModifier))
		for modifier, code := range rule.ByModifier {
			byModifier[modifier] = code
		}
		copied[key] = CompositionRule{Base: rule.Base, ByModifier: byModifier}
	}
	return &CompositionResolver{rules: copied}
}

func compositionKey(domain Domain, action Action) string {
	return fmt.Sprintf("%s_%s", domain, action)
}

// Resolve returns the canonical intent code for the given combination.
// Modifiers are consulted in the fixed precedence order: the first modifier
// present in both the input set and the rule's sub-map wins. Without a
// modifier hit the base mapping applies.
func (r *CompositionResolver) Resolve(domain Domain, action Action, modifiers []Modifier) (string, bool) {
	rule, ok := r.rules[compositionKey(domain, action)]
	if !ok {
		return "", false
	}

	if len(modifiers) > 0 && len(rule.ByModifier) > 0 {
		present := make(map[Modifier]bool, len(modifiers))
		for _, m := range modifiers {
			present[m] = true
		}
		for _, m := range modifierPriority {
			if !present[m] {
				continue
			}
			if code, ok := rule.ByModifier[m]; ok {
				return code, true
			}
		}
	}

	if rule.Base == "" {
		return "", false
	}
	return rule.Base, true
}
