package semantic

// Default tables for the factory assistant. Production deployments overlay the
// curated catalog from the database; these keep the pipeline usable before the
// catalog is seeded and give tests a realistic configuration.

func DefaultCompositionRules() map[string]CompositionRule {
	return map[string]CompositionRule{
		"DATA_QUERY": {
			Base: "DATA_QUERY",
			ByModifier: map[Modifier]string{
				ModifierRanking:     "DATA_RANKING",
				ModifierComparison:  "DATA_COMPARISON",
				ModifierMoM:         "DATA_MOM",
				ModifierYoY:         "DATA_YOY",
				ModifierQoQ:         "DATA_QOQ",
				ModifierStats:       "DATA_STATS",
				ModifierAggregation: "DATA_AGGREGATION",
				ModifierMonthly:     "DATA_MONTHLY",
				ModifierFuture:      "DATA_FORECAST",
			},
		},
		"QUALITY_QUERY": {
			Base: "QUALITY_CHECK_QUERY",
			ByModifier: map[Modifier]string{
				ModifierNegation: "QUALITY_FAILED_QUERY",
				ModifierRanking:  "QUALITY_RANKING",
				ModifierAnomaly:  "QUALITY_ANOMALY",
				ModifierStats:    "QUALITY_STATS",
				ModifierMonthly:  "QUALITY_MONTHLY",
				ModifierCritical: "QUALITY_CRITICAL",
			},
		},
		"SCALE_QUERY": {
			Base: "SCALE_STATUS_QUERY",
			ByModifier: map[Modifier]string{
				ModifierAnomaly: "SCALE_ANOMALY",
				ModifierStats:   "SCALE_STATS",
			},
		},
		"CUSTOMER_QUERY": {
			Base: "CUSTOMER_QUERY",
			ByModifier: map[Modifier]string{
				ModifierRanking:  "CUSTOMER_RANKING",
				ModifierPersonal: "CUSTOMER_PERSONAL",
				ModifierStats:    "CUSTOMER_STATS",
			},
		},
		"SUPPLIER_QUERY": {
			Base: "SUPPLIER_QUERY",
			ByModifier: map[Modifier]string{
				ModifierRanking: "SUPPLIER_RANKING",
				ModifierStats:   "SUPPLIER_STATS",
			},
		},
		"PRODUCTION_START": {Base: "START_PRODUCTION"},
		"PRODUCTION_STOP":  {Base: "STOP_PRODUCTION"},
		"PRODUCTION_QUERY": {
			Base: "PRODUCTION_STATUS_QUERY",
			ByModifier: map[Modifier]string{
				ModifierStats:  "PRODUCTION_STATS",
				ModifierFuture: "PRODUCTION_PLAN_QUERY",
			},
		},
	}
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		Dependencies: map[string][]string{
			"DATA_EXPORT":       {"DATA_QUERY"},
			"QUALITY_IMPROVE":   {"QUALITY_CHECK_QUERY"},
			"SCALE_CALIBRATE":   {"SCALE_STATUS_QUERY"},
			"PRODUCTION_REPORT": {"PRODUCTION_STATUS_QUERY"},
		},
		MutexGroups: [][]string{
			{"START_PRODUCTION", "STOP_PRODUCTION"},
			{"SCALE_ENABLE", "SCALE_DISABLE"},
		},
		Priorities: map[string]int{
			"START_PRODUCTION":        95,
			"STOP_PRODUCTION":         95,
			"SCALE_CALIBRATE":         90,
			"QUALITY_CHECK_QUERY":     85,
			"QUALITY_STATS":           80,
			"QUALITY_ANOMALY":         85,
			"SCALE_STATUS_QUERY":      70,
			"PRODUCTION_STATUS_QUERY": 70,
			"DATA_QUERY":              60,
			"DATA_STATS":              60,
			"DATA_EXPORT":             50,
			"CUSTOMER_QUERY":          60,
			"SUPPLIER_QUERY":          60,
		},
	}
}

func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{
			Code:     "QUALITY_CHECK_QUERY",
			Name:     "Cek hasil inspeksi kualitas",
			Keywords: []string{"kualitas", "quality", "inspeksi", "inspection", "defect", "cacat"},
			Patterns: []string{`(cek|lihat|query).*(kualitas|quality)`},
			Examples: []string{"cek hasil inspeksi kualitas hari ini", "show quality inspection results"},
			Priority: 85, Verified: true, Source: SourceCurated,
		},
		{
			Code:     "QUALITY_STATS",
			Name:     "Statistik kualitas",
			Keywords: []string{"statistik", "statistics", "kualitas", "quality", "rata", "rate"},
			Examples: []string{"statistik kualitas bulan ini", "quality statistics this month"},
			Priority: 80, Verified: true, Source: SourceCurated,
		},
		{
			Code:     "QUALITY_ANOMALY",
			Name:     "Anomali kualitas",
			Keywords: []string{"anomali", "anomaly", "kualitas", "aneh", "abnormal"},
			Priority: 85, Verified: true, Source: SourceCurated,
		},
		{
			Code:     "SCALE_STATUS_QUERY",
			Name:     "Status timbangan",
			Keywords: []string{"timbangan", "scale", "status", "berat", "weight"},
			Patterns: []string{`(status|cek).*(timbangan|scale)`},
			Examples: []string{"status timbangan lini satu", "check scale status line one"},
			Priority: 70, Verified: true, Source: SourceCurated,
		},
		{
			Code:     "START_PRODUCTION",
			Name:     "Mulai produksi",
			Keywords: []string{"mulai", "start", "jalankan", "produksi", "production", "run"},
			Patterns: []string{`(mulai|start|jalankan).*(produksi|production)`},
			Examples: []string{"mulai produksi lini dua", "start production on line two"},
			Priority: 95, Verified: true, Source: SourceCurated,
		},
		{
			Code:     "STOP_PRODUCTION",
			Name:     "Hentikan produksi",
			Keywords: []string{"stop", "hentikan", "berhenti", "produksi", "production", "matikan"},
			Patterns: []string{`(stop|hentikan|matikan).*(produksi|production)`},
			Examples: []string{"hentikan produksi lini dua", "stop production on line two"},
			Priority: 95, Verified: true, Source: SourceCurated,
		},
		{
			Code:     "PRODUCTION_STATUS_QUERY",
			Name:     "Status produksi",
			Keywords: []string{"status", "produksi", "production", "progress", "output"},
			Priority: 70, Verified: true, Source: SourceCurated,
		},
		{
			Code:     "DATA_QUERY",
			Name:     "Query data pabrik",
			Keywords: []string{"data", "laporan", "report", "angka", "lihat"},
			Priority: 60, Verified: true, Source: SourceCurated,
		},
		{
			Code:     "CUSTOMER_QUERY",
			Name:     "Query pelanggan",
			Keywords: []string{"pelanggan", "customer", "order", "pesanan"},
			Priority: 60, Verified: true, Source: SourceCurated,
		},
		{
			Code:     "SUPPLIER_QUERY",
			Name:     "Query pemasok",
			Keywords: []string{"pemasok", "supplier", "vendor", "bahan", "material"},
			Priority: 60, Verified: true, Source: SourceCurated,
		},
	}
}
