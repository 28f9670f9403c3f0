package semantic

import "strings"

// RuleParser extracts the (domain, action, modifiers) triple plus literal
// value constraints from free text using static keyword tables. It feeds the
// composition resolver; when it cannot commit to a domain the caller falls
// through to semantic matching.
type RuleParser struct {
	domainKeywords   map[string]Domain
	actionKeywords   map[string]Action
	modifierKeywords map[string]Modifier
}

func NewRuleParser() *RuleParser {
	return &RuleParser{
		domainKeywords: map[string]Domain{
			"data": DomainData, "laporan": DomainData, "report": DomainData,
			"kualitas": DomainQuality, "quality": DomainQuality, "inspeksi": DomainQuality,
			"inspection": DomainQuality, "defect": DomainQuality, "cacat": DomainQuality,
			"timbangan": DomainScale, "scale": DomainScale, "berat": DomainScale, "weight": DomainScale,
			"produksi": DomainProduction, "production": DomainProduction, "lini": DomainProduction,
			"pelanggan": DomainCustomer, "customer": DomainCustomer, "pesanan": DomainCustomer,
			"pemasok": DomainSupplier, "supplier": DomainSupplier, "vendor": DomainSupplier,
		},
		actionKeywords: map[string]Action{
			"cek": ActionQuery, "lihat": ActionQuery, "tampilkan": ActionQuery,
			"query": ActionQuery, "show": ActionQuery, "berapa": ActionQuery,
			"buat": ActionCreate, "tambah": ActionCreate, "create": ActionCreate,
			"ubah": ActionUpdate, "update": ActionUpdate, "ganti": ActionUpdate,
			"hapus": ActionDelete, "delete": ActionDelete,
			"mulai": ActionStart, "start": ActionStart, "jalankan": ActionStart,
			"stop": ActionStop, "hentikan": ActionStop, "matikan": ActionStop,
			"analisa": ActionAnalyze, "analisis": ActionAnalyze, "analyze": ActionAnalyze,
		},
		modifierKeywords: map[string]Modifier{
			"bukan": ModifierNegation, "tanpa": ModifierNegation, "gagal": ModifierNegation,
			"peringkat": ModifierRanking, "ranking": ModifierRanking, "tertinggi": ModifierRanking,
			"terbaik": ModifierRanking, "top": ModifierRanking,
			"banding": ModifierComparison, "versus": ModifierComparison, "compare": ModifierComparison,
			"mom": ModifierMoM, "yoy": ModifierYoY, "qoq": ModifierQoQ,
			"anomali": ModifierAnomaly, "anomaly": ModifierAnomaly, "abnormal": ModifierAnomaly,
			"statistik": ModifierStats, "statistics": ModifierStats, "stats": ModifierStats,
			"total": ModifierAggregation, "agregat": ModifierAggregation, "jumlah": ModifierAggregation,
			"saya": ModifierPersonal, "pribadi": ModifierPersonal,
			"bulanan": ModifierMonthly, "monthly": ModifierMonthly,
			"prediksi": ModifierFuture, "forecast": ModifierFuture, "rencana": ModifierFuture,
			"kritis": ModifierCritical, "critical": ModifierCritical, "urgent": ModifierCritical,
		},
	}
}

// Parse scans the input tokens against the keyword tables. The boolean is
// false when no domain keyword was found; action defaults to QUERY. The
// returned semantics carry the extracted constraints so the execution layer
// can forward them as tool parameters.
func (p *RuleParser) Parse(input string) (IntentSemantics, []string, bool) {
	tokens := strings.Fields(strings.ToLower(input))

	sem := IntentSemantics{
		Domain: DomainUnknown,
		Action: ActionQuery,
		Object: ObjectGeneral,
		Method: ParseMethodRule,
	}
	var matched []string
	seen := make(map[Modifier]bool)

	for _, token := range tokens {
		if d, ok := p.domainKeywords[token]; ok && sem.Domain == DomainUnknown {
			sem.Domain = d
			matched = append(matched, token)
		}
		if a, ok := p.actionKeywords[token]; ok {
			sem.Action = a
			matched = append(matched, token)
		}
		if m, ok := p.modifierKeywords[token]; ok && !seen[m] {
			seen[m] = true
			sem.Modifiers = append(sem.Modifiers, m)
			matched = append(matched, token)
		}
	}

	if sem.Domain == DomainUnknown {
		return IntentSemantics{}, nil, false
	}

	for _, m := range modifierPriority {
		if seen[m] {
			sem.Object = Object(m)
			break
		}
	}
	sem.Constraints = extractConstraints(tokens)

	return sem, matched, true
}

// extractConstraints picks up literal values adjacent to their unit or field
// keyword: "lini 3" narrows to one production line, "7 hari" bounds the
// lookback window, "top 5" caps the row count.
func extractConstraints(tokens []string) []Constraint {
	var constraints []Constraint
	seen := make(map[string]bool)

	add := func(field, value string) {
		if seen[field] {
			return
		}
		seen[field] = true
		constraints = append(constraints, Constraint{
			Field:     field,
			Value:     value,
			Condition: ConditionEquals,
		})
	}

	for i, token := range tokens {
		next := ""
		if i+1 < len(tokens) {
			next = tokens[i+1]
		}

		switch token {
		case "lini", "line":
			if isNumeric(next) {
				add("line_id", next)
			}
		case "top", "teratas":
			if isNumeric(next) {
				add("limit", next)
			}
		case "hari", "days":
			if i > 0 && isNumeric(tokens[i-1]) {
				add("days", tokens[i-1])
			}
		}
	}
	return constraints
}

func isNumeric(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
