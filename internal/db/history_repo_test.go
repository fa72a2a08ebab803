package db

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"maizecast/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock Row ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

// --- Mock Rows ---

// mockRows implements pgx.Rows backed by one scanFn per row.
type mockRows struct {
	scanFns []func(dest ...any) error
	idx     int
	errVal  error
}

func newMockRows(scanFns ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFns: scanFns, idx: -1}
}

func (r *mockRows) Next() bool {
	r.idx++
	return r.idx < len(r.scanFns)
}

func (r *mockRows) Scan(dest ...any) error {
	return r.scanFns[r.idx](dest...)
}

func (r *mockRows) Close()                                       {}
func (r *mockRows) Err() error                                   { return r.errVal }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

// --- Fixed clock ---

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// --- Fixtures ---

func newTestRecord() *types.HistoryRecord {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return &types.HistoryRecord{
		ID: "hist_abc123",
		Inputs: types.PlantingInput{
			District:     "Tamale",
			SoilType:     "Savanna Ochrosol",
			Year:         2026,
			RainfallMM:   850,
			TemperatureC: 27.5,
			HumidityPct:  65,
			SunlightHrs:  7.5,
			SoilMoisture: 0.62,
			PestRiskPct:  20,
			PFJPolicy:    true,
			PriorYield:   2.1,
		},
		Estimate: types.PredictionEstimate{
			PointValue:   2.4,
			LowerBound:   1.91,
			UpperBound:   2.89,
			ModelVersion: "rf-1.4.2",
		},
		Interpretation: types.Interpretation{
			Category:          types.CategoryGood,
			CategoryEmoji:     "✅",
			RiskTier:          types.RiskLow,
			ConfidencePercent: 72,
			Explanation:       "Conditions favor a good season.",
			Summary:           "Good yield expected in Tamale.",
			Recommendations: types.RecommendationList{
				{Group: types.GroupWater, Text: "Maintain current irrigation schedule."},
			},
			RiskFactors: types.StringList{"Moderate pest pressure"},
		},
		CreatedAt: now,
	}
}

// makeScanFnForRecord populates dest slices to match a record, mirroring the
// column ordering in historyColumns.
func makeScanFnForRecord(rec *types.HistoryRecord) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*string) = rec.ID
		*dest[1].(*string) = rec.Inputs.District
		*dest[2].(*types.SoilType) = rec.Inputs.SoilType
		*dest[3].(*int) = rec.Inputs.Year
		*dest[4].(*float64) = rec.Inputs.RainfallMM
		*dest[5].(*float64) = rec.Inputs.TemperatureC
		*dest[6].(*float64) = rec.Inputs.HumidityPct
		*dest[7].(*float64) = rec.Inputs.SunlightHrs
		*dest[8].(*float64) = rec.Inputs.SoilMoisture
		*dest[9].(*float64) = rec.Inputs.PestRiskPct
		*dest[10].(*bool) = rec.Inputs.PFJPolicy
		*dest[11].(*float64) = rec.Inputs.PriorYield
		*dest[12].(*float64) = rec.Estimate.PointValue
		*dest[13].(*float64) = rec.Estimate.LowerBound
		*dest[14].(*float64) = rec.Estimate.UpperBound
		*dest[15].(*string) = rec.Estimate.ModelVersion
		*dest[16].(*types.YieldCategory) = rec.Interpretation.Category
		*dest[17].(*string) = rec.Interpretation.CategoryEmoji
		*dest[18].(*types.RiskTier) = rec.Interpretation.RiskTier
		*dest[19].(*int) = rec.Interpretation.ConfidencePercent
		*dest[20].(*string) = rec.Interpretation.Explanation
		*dest[21].(*string) = rec.Interpretation.Summary

		recBytes, _ := json.Marshal(rec.Interpretation.Recommendations)
		if err := dest[22].(*types.RecommendationList).Scan(recBytes); err != nil {
			return err
		}
		rfBytes, _ := json.Marshal(rec.Interpretation.RiskFactors)
		if err := dest[23].(*types.StringList).Scan(rfBytes); err != nil {
			return err
		}

		*dest[24].(*time.Time) = rec.CreatedAt
		return nil
	}
}

// --- Save ---

func TestHistoryRepository_Save_AssignsID(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	rec := newTestRecord()
	rec.ID = ""
	rec.CreatedAt = time.Time{}

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	id, err := repo.Save(context.Background(), rec)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "hist_"), "id = %q", id)
	assert.Equal(t, rec.ID, id)
	assert.False(t, rec.CreatedAt.IsZero(), "Save must stamp CreatedAt")
	db.AssertExpectations(t)
}

func TestHistoryRepository_Save_StampsClockTime(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	stamp := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	repo.clock = fixedClock{stamp}

	rec := newTestRecord()
	rec.CreatedAt = time.Time{}

	var gotArgs []any
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { gotArgs = args.Get(2).([]any) }).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	_, err := repo.Save(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, stamp, rec.CreatedAt)
	require.Len(t, gotArgs, 25)
	assert.Equal(t, stamp, gotArgs[24])
}

func TestHistoryRepository_Save_KeepsCallerID(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	rec := newTestRecord()

	var gotArgs []any
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { gotArgs = args.Get(2).([]any) }).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	id, err := repo.Save(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, "hist_abc123", id)
	require.Len(t, gotArgs, 25)
	assert.Equal(t, "hist_abc123", gotArgs[0])
	assert.Equal(t, "Tamale", gotArgs[1])
	assert.Equal(t, rec.CreatedAt, gotArgs[24])
}

func TestHistoryRepository_Save_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	_, err := repo.Save(context.Background(), newTestRecord())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

// --- Get ---

func TestHistoryRepository_Get_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	want := newTestRecord()
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: makeScanFnForRecord(want)})

	got, err := repo.Get(context.Background(), "hist_abc123")
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Inputs, got.Inputs)
	assert.Equal(t, want.Estimate.PointValue, got.Estimate.PointValue)
	assert.Equal(t, want.Interpretation.Category, got.Interpretation.Category)
	assert.Equal(t, want.Interpretation.Recommendations, got.Interpretation.Recommendations)
	assert.Equal(t, want.Interpretation.RiskFactors, got.Interpretation.RiskFactors)
	assert.Equal(t, want.CreatedAt, got.CreatedAt)
}

func TestHistoryRepository_Get_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: pgx.ErrNoRows})

	_, err := repo.Get(context.Background(), "hist_missing")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundPrediction, appErr.Code)
}

func TestHistoryRepository_Get_ScanError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("column type mismatch")})

	_, err := repo.Get(context.Background(), "hist_abc123")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

// --- List ---

func TestHistoryRepository_List_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	first := newTestRecord()
	second := newTestRecord()
	second.ID = "hist_def456"
	second.Inputs.District = "Wa"

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*int) = 42
			return nil
		}})

	var gotArgs []any
	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { gotArgs = args.Get(2).([]any) }).
		Return(newMockRows(makeScanFnForRecord(first), makeScanFnForRecord(second)), nil)

	records, total, err := repo.List(context.Background(), types.PageRequest{Page: 2, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 42, total)
	require.Len(t, records, 2)
	assert.Equal(t, "hist_abc123", records[0].ID)
	assert.Equal(t, "Wa", records[1].Inputs.District)

	// Normalized paging: limit 10, offset (2-1)*10.
	require.Len(t, gotArgs, 2)
	assert.Equal(t, 10, gotArgs[0])
	assert.Equal(t, 10, gotArgs[1])
}

func TestHistoryRepository_List_NormalizesZeroRequest(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*int) = 0
			return nil
		}})

	var gotArgs []any
	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { gotArgs = args.Get(2).([]any) }).
		Return(newMockRows(), nil)

	records, total, err := repo.List(context.Background(), types.PageRequest{})
	require.NoError(t, err)

	assert.Zero(t, total)
	assert.Empty(t, records)
	require.Len(t, gotArgs, 2)
	assert.Equal(t, types.DefaultPageSize, gotArgs[0])
	assert.Equal(t, 0, gotArgs[1])
}

func TestHistoryRepository_List_CountError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("connection reset")})

	_, _, err := repo.List(context.Background(), types.PageRequest{Page: 1, PageSize: 20})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

// --- Delete ---

func TestHistoryRepository_Delete_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 1"), nil)

	require.NoError(t, repo.Delete(context.Background(), "hist_abc123"))
	db.AssertExpectations(t)
}

func TestHistoryRepository_Delete_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := repo.Delete(context.Background(), "hist_missing")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundPrediction, appErr.Code)
}

// --- Maintenance operations ---

func TestHistoryRepository_DeleteOlderThan(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	cutoff := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	var gotArgs []any
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { gotArgs = args.Get(2).([]any) }).
		Return(pgconn.NewCommandTag("DELETE 17"), nil)

	purged, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)

	assert.Equal(t, int64(17), purged)
	require.Len(t, gotArgs, 1)
	assert.Equal(t, cutoff, gotArgs[0])
}

func TestHistoryRepository_ListAllForExport(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	first := newTestRecord()
	second := newTestRecord()
	second.ID = "hist_def456"

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(newMockRows(makeScanFnForRecord(first), makeScanFnForRecord(second)), nil)

	records, err := repo.ListAllForExport(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "hist_abc123", records[0].ID)
	assert.Equal(t, "hist_def456", records[1].ID)
}

func TestHistoryRepository_ListAllForExport_RowsError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	rows := newMockRows()
	rows.errVal = errors.New("connection lost mid-stream")
	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(rows, nil)

	_, err := repo.ListAllForExport(context.Background())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestHistoryRepository_DistrictStats(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHistoryRepository(db)

	rows := newMockRows(
		func(dest ...any) error {
			*dest[0].(*string) = "Tamale"
			*dest[1].(*int64) = 12
			*dest[2].(*float64) = 2.35
			return nil
		},
		func(dest ...any) error {
			*dest[0].(*string) = "Wa"
			*dest[1].(*int64) = 4
			*dest[2].(*float64) = 1.8
			return nil
		},
	)
	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(rows, nil)

	stats, err := repo.DistrictStats(context.Background(), time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.Equal(t, DistrictStat{District: "Tamale", Predictions: 12, AvgPredicted: 2.35}, stats[0])
	assert.Equal(t, "Wa", stats[1].District)
}

// --- Close ---

func TestHistoryRepository_Close_WithoutPool(t *testing.T) {
	repo := NewHistoryRepository(new(mockDBTX))
	assert.NoError(t, repo.Close())
}
