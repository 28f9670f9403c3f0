package tooling

import (
	"PabrikGolang/pkg/toolkit"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// RegisterDefaults wires the built-in factory operation tools into the
// registry. Each tool is a thin adapter over the operations schema; anything
// heavier belongs in its own service.
func RegisterDefaults(registry toolkit.IRegistry, db *sqlx.DB, log *logrus.Logger) error {
	tools := []*toolkit.Tool{
		productionStatusTool(db),
		productionStartTool(db),
		productionStopTool(db),
		qualityInspectionsTool(db),
		qualityStatsTool(db),
		scaleStatusTool(db),
		customerOrdersTool(db),
		supplierDeliveriesTool(db),
		dataSummaryTool(db),
	}

	for _, tool := range tools {
		if err := registry.Register(tool); err != nil {
			return err
		}
		log.WithField("tool", tool.Name).Debug("Tool registered")
	}
	return nil
}

func productionStatusTool(db *sqlx.DB) *toolkit.Tool {
	return &toolkit.Tool{
		Name:        "production.status",
		Description: "Status lini produksi yang sedang berjalan",
		ParameterSchema: map[string]interface{}{
			"line_id": "string, optional, filter ke satu lini",
		},
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			query := `
				SELECT line_id, status, current_batch, started_at
				FROM production_lines
				WHERE factory_id = $1`
			args := []interface{}{factoryID}
			if lineID, ok := params["line_id"].(string); ok && lineID != "" {
				query += ` AND line_id = $2`
				args = append(args, lineID)
			}

			rows, err := db.QueryxContext(ctx, query, args...)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			lines := make([]map[string]interface{}, 0)
			for rows.Next() {
				line := map[string]interface{}{}
				if err := rows.MapScan(line); err != nil {
					return nil, err
				}
				lines = append(lines, line)
			}
			return map[string]interface{}{"lines": lines, "count": len(lines)}, rows.Err()
		},
	}
}

func productionStartTool(db *sqlx.DB) *toolkit.Tool {
	return &toolkit.Tool{
		Name:        "production.start",
		Description: "Menjalankan lini produksi",
		ParameterSchema: map[string]interface{}{
			"line_id": "string, required",
		},
		RequiredParameters: []string{"line_id"},
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			lineID, _ := params["line_id"].(string)

			result, err := db.ExecContext(ctx, `
				UPDATE production_lines
				SET status = 'RUNNING', started_at = $1
				WHERE factory_id = $2 AND line_id = $3 AND status != 'RUNNING'`,
				time.Now(), factoryID, lineID)
			if err != nil {
				return nil, err
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return nil, err
			}
			if affected == 0 {
				return nil, fmt.Errorf("lini %s tidak ditemukan atau sudah berjalan", lineID)
			}
			return map[string]interface{}{"line_id": lineID, "status": "RUNNING"}, nil
		},
	}
}

func productionStopTool(db *sqlx.DB) *toolkit.Tool {
	return &toolkit.Tool{
		Name:        "production.stop",
		Description: "Menghentikan lini produksi",
		ParameterSchema: map[string]interface{}{
			"line_id": "string, required",
		},
		RequiredParameters: []string{"line_id"},
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			lineID, _ := params["line_id"].(string)

			result, err := db.ExecContext(ctx, `
				UPDATE production_lines
				SET status = 'STOPPED', stopped_at = $1
				WHERE factory_id = $2 AND line_id = $3 AND status = 'RUNNING'`,
				time.Now(), factoryID, lineID)
			if err != nil {
				return nil, err
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return nil, err
			}
			if affected == 0 {
				return nil, fmt.Errorf("lini %s tidak ditemukan atau tidak sedang berjalan", lineID)
			}
			return map[string]interface{}{"line_id": lineID, "status": "STOPPED"}, nil
		},
	}
}

func qualityInspectionsTool(db *sqlx.DB) *toolkit.Tool {
	return &toolkit.Tool{
		Name:        "quality.inspections",
		Description: "Daftar hasil inspeksi kualitas terbaru",
		ParameterSchema: map[string]interface{}{
			"days":  "number, optional, rentang hari ke belakang (default 7)",
			"limit": "number, optional, jumlah baris maksimum (default 50)",
		},
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			days := floatParam(params, "days", 7)
			limit := int(floatParam(params, "limit", 50))
			since := time.Now().AddDate(0, 0, -int(days))

			rows, err := db.QueryxContext(ctx, `
				SELECT inspection_id, batch_id, result, defect_count, inspected_at
				FROM quality_inspections
				WHERE factory_id = $1 AND inspected_at >= $2
				ORDER BY inspected_at DESC
				LIMIT $3`,
				factoryID, since, limit)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			inspections := make([]map[string]interface{}, 0)
			for rows.Next() {
				inspection := map[string]interface{}{}
				if err := rows.MapScan(inspection); err != nil {
					return nil, err
				}
				inspections = append(inspections, inspection)
			}
			return map[string]interface{}{"inspections": inspections, "count": len(inspections)}, rows.Err()
		},
	}
}

func qualityStatsTool(db *sqlx.DB) *toolkit.Tool {
	return &toolkit.Tool{
		Name:        "quality.stats",
		Description: "Statistik agregat inspeksi kualitas",
		ParameterSchema: map[string]interface{}{
			"days": "number, optional, rentang hari ke belakang (default 7)",
		},
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			days := floatParam(params, "days", 7)
			since := time.Now().AddDate(0, 0, -int(days))

			var stats struct {
				Total       int     `db:"total"`
				Passed      int     `db:"passed"`
				DefectTotal int     `db:"defect_total"`
				DefectAvg   float64 `db:"defect_avg"`
			}
			err := db.GetContext(ctx, &stats, `
				SELECT
					COUNT(*) AS total,
					COUNT(*) FILTER (WHERE result = 'PASS') AS passed,
					COALESCE(SUM(defect_count), 0) AS defect_total,
					COALESCE(AVG(defect_count), 0) AS defect_avg
				FROM quality_inspections
				WHERE factory_id = $1 AND inspected_at >= $2`,
				factoryID, since)
			if err != nil {
				return nil, err
			}

			passRate := 0.0
			if stats.Total > 0 {
				passRate = float64(stats.Passed) / float64(stats.Total)
			}
			return map[string]interface{}{
				"total_inspections": stats.Total,
				"passed":            stats.Passed,
				"pass_rate":         passRate,
				"defect_total":      stats.DefectTotal,
				"defect_avg":        stats.DefectAvg,
				"period_days":       int(days),
			}, nil
		},
	}
}

func scaleStatusTool(db *sqlx.DB) *toolkit.Tool {
	return &toolkit.Tool{
		Name:        "scale.status",
		Description: "Kondisi timbangan yang terdaftar di pabrik",
		ParameterSchema: map[string]interface{}{
			"scale_id": "string, optional, filter ke satu timbangan",
		},
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			query := `
				SELECT scale_id, status, last_weight_kg, last_reading_at
				FROM scales
				WHERE factory_id = $1`
			args := []interface{}{factoryID}
			if scaleID, ok := params["scale_id"].(string); ok && scaleID != "" {
				query += ` AND scale_id = $2`
				args = append(args, scaleID)
			}

			rows, err := db.QueryxContext(ctx, query, args...)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			scales := make([]map[string]interface{}, 0)
			for rows.Next() {
				scale := map[string]interface{}{}
				if err := rows.MapScan(scale); err != nil {
					return nil, err
				}
				scales = append(scales, scale)
			}
			return map[string]interface{}{"scales": scales, "count": len(scales)}, rows.Err()
		},
	}
}

func customerOrdersTool(db *sqlx.DB) *toolkit.Tool {
	return &toolkit.Tool{
		Name:        "customer.orders",
		Description: "Daftar pesanan pelanggan terbaru",
		ParameterSchema: map[string]interface{}{
			"customer": "string, optional, filter nama pelanggan",
			"limit":    "number, optional, jumlah baris maksimum (default 20)",
		},
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			limit := int(floatParam(params, "limit", 20))

			query := `
				SELECT order_id, customer_name, product, quantity, status, ordered_at
				FROM customer_orders
				WHERE factory_id = $1`
			args := []interface{}{factoryID}
			if customer, ok := params["customer"].(string); ok && customer != "" {
				query += ` AND customer_name ILIKE $2`
				args = append(args, "%"+customer+"%")
			}
			query += fmt.Sprintf(` ORDER BY ordered_at DESC LIMIT %d`, limit)

			rows, err := db.QueryxContext(ctx, query, args...)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			orders := make([]map[string]interface{}, 0)
			for rows.Next() {
				order := map[string]interface{}{}
				if err := rows.MapScan(order); err != nil {
					return nil, err
				}
				orders = append(orders, order)
			}
			return map[string]interface{}{"orders": orders, "count": len(orders)}, rows.Err()
		},
	}
}

func supplierDeliveriesTool(db *sqlx.DB) *toolkit.Tool {
	return &toolkit.Tool{
		Name:        "supplier.deliveries",
		Description: "Daftar pengiriman bahan dari pemasok",
		ParameterSchema: map[string]interface{}{
			"supplier": "string, optional, filter nama pemasok",
			"days":     "number, optional, rentang hari ke belakang (default 14)",
		},
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			days := floatParam(params, "days", 14)
			since := time.Now().AddDate(0, 0, -int(days))

			query := `
				SELECT delivery_id, supplier_name, material, quantity_kg, status, delivered_at
				FROM supplier_deliveries
				WHERE factory_id = $1 AND delivered_at >= $2`
			args := []interface{}{factoryID, since}
			if supplier, ok := params["supplier"].(string); ok && supplier != "" {
				query += ` AND supplier_name ILIKE $3`
				args = append(args, "%"+supplier+"%")
			}
			query += ` ORDER BY delivered_at DESC`

			rows, err := db.QueryxContext(ctx, query, args...)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			deliveries := make([]map[string]interface{}, 0)
			for rows.Next() {
				delivery := map[string]interface{}{}
				if err := rows.MapScan(delivery); err != nil {
					return nil, err
				}
				deliveries = append(deliveries, delivery)
			}
			return map[string]interface{}{"deliveries": deliveries, "count": len(deliveries)}, rows.Err()
		},
	}
}

func dataSummaryTool(db *sqlx.DB) *toolkit.Tool {
	return &toolkit.Tool{
		Name:        "data.summary",
		Description: "Ringkasan operasional harian pabrik",
		ParameterSchema: map[string]interface{}{
			"days": "number, optional, rentang hari ke belakang (default 1)",
		},
		Execute: func(ctx context.Context, factoryID string, params map[string]interface{}) (map[string]interface{}, error) {
			days := floatParam(params, "days", 1)
			since := time.Now().AddDate(0, 0, -int(days))

			var summary struct {
				RunningLines int `db:"running_lines"`
				Inspections  int `db:"inspections"`
				Orders       int `db:"orders"`
			}
			err := db.GetContext(ctx, &summary, `
				SELECT
					(SELECT COUNT(*) FROM production_lines WHERE factory_id = $1 AND status = 'RUNNING') AS running_lines,
					(SELECT COUNT(*) FROM quality_inspections WHERE factory_id = $1 AND inspected_at >= $2) AS inspections,
					(SELECT COUNT(*) FROM customer_orders WHERE factory_id = $1 AND ordered_at >= $2) AS orders`,
				factoryID, since)
			if err != nil {
				return nil, err
			}

			return map[string]interface{}{
				"running_lines": summary.RunningLines,
				"inspections":   summary.Inspections,
				"orders":        summary.Orders,
				"period_days":   int(days),
			}, nil
		},
	}
}

// floatParam reads a numeric parameter that may arrive as any JSON number
// type, or as a digit string from the rule-extracted constraints.
func floatParam(params map[string]interface{}, key string, fallback float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
		return fallback
	default:
		return fallback
	}
}
