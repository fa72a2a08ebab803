package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"maizecast/internal/types"
)

// historyColumns is the canonical column list for prediction_history rows.
// Scan helpers below depend on this exact ordering.
const historyColumns = `
	id, district, soil_type, year,
	rainfall_mm, temperature_c, humidity_pct, sunlight_hours,
	soil_moisture, pest_risk_pct, pfj_policy, prior_yield,
	predicted_yield, lower_bound, upper_bound, model_version,
	category, category_emoji, risk_tier, confidence_percent,
	explanation, summary, recommendations, risk_factors,
	created_at`

// HistoryRepository persists prediction records to PostgreSQL. It implements
// types.HistoryStore plus the maintenance operations the archiver needs.
type HistoryRepository struct {
	db    DBTX
	pool  *pgxpool.Pool
	clock types.Clock
}

// NewHistoryRepository creates a repository over any DBTX (pool or tx).
func NewHistoryRepository(db DBTX) *HistoryRepository {
	return &HistoryRepository{db: db, clock: types.RealClock{}}
}

// NewHistoryStore creates a pool-owning repository. Close releases the pool,
// which lets the server tear down the store during shutdown.
func NewHistoryStore(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: pool, pool: pool, clock: types.RealClock{}}
}

// Close releases the underlying pool when this repository owns one.
func (r *HistoryRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

// scanHistoryRecord scans a single row in historyColumns order.
func scanHistoryRecord(row pgx.Row) (*types.HistoryRecord, error) {
	var rec types.HistoryRecord

	err := row.Scan(
		&rec.ID,
		&rec.Inputs.District,
		&rec.Inputs.SoilType,
		&rec.Inputs.Year,
		&rec.Inputs.RainfallMM,
		&rec.Inputs.TemperatureC,
		&rec.Inputs.HumidityPct,
		&rec.Inputs.SunlightHrs,
		&rec.Inputs.SoilMoisture,
		&rec.Inputs.PestRiskPct,
		&rec.Inputs.PFJPolicy,
		&rec.Inputs.PriorYield,
		&rec.Estimate.PointValue,
		&rec.Estimate.LowerBound,
		&rec.Estimate.UpperBound,
		&rec.Estimate.ModelVersion,
		&rec.Interpretation.Category,
		&rec.Interpretation.CategoryEmoji,
		&rec.Interpretation.RiskTier,
		&rec.Interpretation.ConfidencePercent,
		&rec.Interpretation.Explanation,
		&rec.Interpretation.Summary,
		&rec.Interpretation.Recommendations,
		&rec.Interpretation.RiskFactors,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// scanHistoryRecordFromRows scans the current row of a result set.
// pgx.Rows satisfies pgx.Row's Scan, so this delegates.
func scanHistoryRecordFromRows(rows pgx.Rows) (*types.HistoryRecord, error) {
	return scanHistoryRecord(rows)
}

// Save implements types.HistoryStore. It assigns the record's ID and creation
// time before the insert so the caller sees exactly what was persisted.
func (r *HistoryRepository) Save(ctx context.Context, record *types.HistoryRecord) (string, error) {
	if record.ID == "" {
		record.ID = "hist_" + uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.clock.Now()
	}

	query := `
		INSERT INTO prediction_history (` + historyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.Inputs.District,
		record.Inputs.SoilType,
		record.Inputs.Year,
		record.Inputs.RainfallMM,
		record.Inputs.TemperatureC,
		record.Inputs.HumidityPct,
		record.Inputs.SunlightHrs,
		record.Inputs.SoilMoisture,
		record.Inputs.PestRiskPct,
		record.Inputs.PFJPolicy,
		record.Inputs.PriorYield,
		record.Estimate.PointValue,
		record.Estimate.LowerBound,
		record.Estimate.UpperBound,
		nilIfBlank(record.Estimate.ModelVersion),
		record.Interpretation.Category,
		record.Interpretation.CategoryEmoji,
		record.Interpretation.RiskTier,
		record.Interpretation.ConfidencePercent,
		record.Interpretation.Explanation,
		record.Interpretation.Summary,
		record.Interpretation.Recommendations,
		record.Interpretation.RiskFactors,
		record.CreatedAt,
	)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalDB, "failed to save prediction record", err)
	}

	return record.ID, nil
}

// Get implements types.HistoryStore.
func (r *HistoryRepository) Get(ctx context.Context, id string) (*types.HistoryRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM prediction_history WHERE id = $1`

	rec, err := scanHistoryRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundPrediction, "prediction record not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to get prediction record", err)
	}

	return rec, nil
}

// List implements types.HistoryStore: one page newest first plus the total
// row count for pagination metadata.
func (r *HistoryRepository) List(ctx context.Context, page types.PageRequest) ([]types.HistoryRecord, int, error) {
	page = page.Normalize()

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM prediction_history`).Scan(&total); err != nil {
		return nil, 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count prediction records", err)
	}

	query := `
		SELECT ` + historyColumns + `
		FROM prediction_history
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, types.NewAppError(types.ErrCodeInternalDB, "failed to list prediction records", err)
	}
	defer rows.Close()

	records := make([]types.HistoryRecord, 0, page.PageSize)
	for rows.Next() {
		rec, scanErr := scanHistoryRecordFromRows(rows)
		if scanErr != nil {
			return nil, 0, types.NewAppError(types.ErrCodeInternalDB, "failed to scan prediction record row", scanErr)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, types.NewAppError(types.ErrCodeInternalDB, "error iterating prediction record rows", err)
	}

	return records, total, nil
}

// Delete implements types.HistoryStore.
func (r *HistoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM prediction_history WHERE id = $1`, id)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete prediction record", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundPrediction, "prediction record not found", nil)
	}
	return nil
}

// DeleteOlderThan removes records created before the cutoff and returns how
// many were purged. Used by the scheduled retention task.
func (r *HistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM prediction_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to purge prediction records", err)
	}
	return tag.RowsAffected(), nil
}

// ListAllForExport streams the full history, oldest first, for archive
// generation. The archiver holds the whole set in memory while building the
// CSV; history volume is bounded by the retention purge.
func (r *HistoryRepository) ListAllForExport(ctx context.Context) ([]types.HistoryRecord, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM prediction_history
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list prediction records for export", err)
	}
	defer rows.Close()

	var records []types.HistoryRecord
	for rows.Next() {
		rec, scanErr := scanHistoryRecordFromRows(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan prediction record row", scanErr)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating prediction record rows", err)
	}

	return records, nil
}

// DistrictStat is one row of the per-district aggregate snapshot.
type DistrictStat struct {
	District     string
	Predictions  int64
	AvgPredicted float64
}

// DistrictStats aggregates prediction counts and mean predicted yield per
// district since the given time. The archiver publishes these as metrics.
func (r *HistoryRepository) DistrictStats(ctx context.Context, since time.Time) ([]DistrictStat, error) {
	query := `
		SELECT district, COUNT(*), AVG(predicted_yield)
		FROM prediction_history
		WHERE created_at >= $1
		GROUP BY district
		ORDER BY district`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to aggregate district statistics", err)
	}
	defer rows.Close()

	var stats []DistrictStat
	for rows.Next() {
		var s DistrictStat
		if scanErr := rows.Scan(&s.District, &s.Predictions, &s.AvgPredicted); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan district statistic row", scanErr)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating district statistic rows", err)
	}

	return stats, nil
}

// nilIfBlank maps an empty string to NULL for nullable text columns.
func nilIfBlank(s string) any {
	if s == "" {
		return nil
	}
	return s
}
