package assistantService

import (
	"PabrikGolang/internal/api/assistant"
	"context"
	"fmt"
	"math"
	"time"
)

func (s *assistantService) GetCommandHistory(ctx context.Context, userID string, page, limit int) (*assistant.HistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	client, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}

	commands, total, err := client.Commands.GetCommandsByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]assistant.CommandHistoryItem, 0, len(commands))
	for _, cmd := range commands {
		items = append(items, assistant.CommandHistoryItem{
			ID:          cmd.ID,
			Input:       cmd.Input,
			RouteType:   cmd.RouteType,
			IntentCodes: cmd.IntentCodes,
			Response:    cmd.Response,
			Success:     cmd.Success,
			Confidence:  cmd.Confidence,
			CreatedAt:   cmd.CreatedAt,
		})
	}

	return &assistant.HistoryResponse{Items: items, Total: total}, nil
}

const analyticsWindow = 30 * 24 * time.Hour

func (s *assistantService) GetAnalytics(ctx context.Context, factoryID string) (*assistant.AnalyticsResponse, error) {
	client, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}

	rows, err := client.Commands.GetAnalyticsRows(ctx, factoryID, time.Now().Add(-analyticsWindow))
	if err != nil {
		return nil, err
	}

	topIntents := make(map[string]int)
	usageByHour := make(map[string]int)
	routeDistribution := make(map[string]int)

	successCount := 0
	confidenceSum := 0.0
	confidenceMin := math.Inf(1)
	confidenceMax := 0.0

	for _, row := range rows {
		if row.Success {
			successCount++
		}
		for _, code := range row.IntentCodes {
			topIntents[code]++
		}
		usageByHour[fmt.Sprintf("%02d", row.CreatedAt.Hour())]++
		routeDistribution[row.RouteType]++

		confidenceSum += row.Confidence
		confidenceMin = math.Min(confidenceMin, row.Confidence)
		confidenceMax = math.Max(confidenceMax, row.Confidence)
	}

	response := &assistant.AnalyticsResponse{
		TotalCommands:     len(rows),
		TopIntents:        topIntents,
		UsageByHour:       usageByHour,
		RouteDistribution: routeDistribution,
		ConfidenceStats:   map[string]float64{},
	}

	if len(rows) > 0 {
		response.SuccessRate = float64(successCount) / float64(len(rows))
		response.ConfidenceStats["avg"] = confidenceSum / float64(len(rows))
		response.ConfidenceStats["min"] = confidenceMin
		response.ConfidenceStats["max"] = confidenceMax
	}

	return response, nil
}

var baseSuggestions = []assistant.Suggestion{
	{Text: "Cek status produksi hari ini", IntentCode: "PRODUCTION_STATUS_QUERY", Description: "Ringkasan lini produksi yang sedang berjalan", Category: "produksi"},
	{Text: "Tampilkan statistik kualitas minggu ini", IntentCode: "QUALITY_STATS", Description: "Statistik inspeksi dan tingkat kecacatan", Category: "kualitas"},
	{Text: "Cek status timbangan", IntentCode: "SCALE_STATUS_QUERY", Description: "Kondisi semua timbangan yang terdaftar", Category: "timbangan"},
	{Text: "Tampilkan pesanan pelanggan terbaru", IntentCode: "CUSTOMER_QUERY", Description: "Pesanan yang masuk dalam 7 hari terakhir", Category: "pelanggan"},
	{Text: "Cek pengiriman dari pemasok", IntentCode: "SUPPLIER_QUERY", Description: "Jadwal dan status kedatangan bahan baku", Category: "pemasok"},
}

// GetSuggestions returns quick commands, reordered so the user's most used
// intents come first.
func (s *assistantService) GetSuggestions(ctx context.Context, userID string) (*assistant.SuggestionsResponse, error) {
	usage := make(map[string]int)

	client, err := s.repo.NewClient(false)
	if err == nil {
		if commands, _, histErr := client.Commands.GetCommandsByUserID(ctx, userID, 50, 0); histErr == nil {
			for _, cmd := range commands {
				for _, code := range cmd.IntentCodes {
					usage[code]++
				}
			}
		}
	}

	suggestions := make([]assistant.Suggestion, len(baseSuggestions))
	copy(suggestions, baseSuggestions)
	for i := 0; i < len(suggestions); i++ {
		for j := i + 1; j < len(suggestions); j++ {
			if usage[suggestions[j].IntentCode] > usage[suggestions[i].IntentCode] {
				suggestions[i], suggestions[j] = suggestions[j], suggestions[i]
			}
		}
	}

	return &assistant.SuggestionsResponse{Suggestions: suggestions}, nil
}
