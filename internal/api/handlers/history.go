package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"maizecast/internal/core"
	"maizecast/internal/export"
	"maizecast/internal/types"
)

// HistoryRepo defines the data access contract for the history endpoints.
// Mirrors the concrete db.HistoryRepository methods used by this handler.
type HistoryRepo interface {
	Get(ctx context.Context, id string) (*types.HistoryRecord, error)
	List(ctx context.Context, page types.PageRequest) ([]types.HistoryRecord, int, error)
	Delete(ctx context.Context, id string) error
	ListAllForExport(ctx context.Context) ([]types.HistoryRecord, error)
}

// ExportMetrics receives export telemetry. Nil disables it.
type ExportMetrics interface {
	RecordExport(records int, duration time.Duration)
}

// AsyncExportResponse is the 202 body for POST /v1/history/export/async.
// Status is always ExportPending at enqueue time; the archive worker owns the
// later transitions.
type AsyncExportResponse struct {
	ExportID string             `json:"export_id"`
	Status   types.ExportStatus `json:"status"`
}

// HistoryHandler serves prediction history retrieval, deletion, and export.
type HistoryHandler struct {
	repo    HistoryRepo
	queue   types.ExportQueue
	metrics ExportMetrics
	logger  *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler. queue may be nil when async
// export is not configured; metrics may be nil.
func NewHistoryHandler(repo HistoryRepo, queue types.ExportQueue, metrics ExportMetrics, l *slog.Logger) *HistoryHandler {
	if l == nil {
		l = slog.Default()
	}
	return &HistoryHandler{
		repo:    repo,
		queue:   queue,
		metrics: metrics,
		logger:  l,
	}
}

// RegisterRoutes mounts the history routes on the provided chi.Router.
func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/export", h.Export)
		r.Post("/export/async", h.ExportAsync)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
		})
	})
}

// List handles GET /v1/history. Out-of-bounds paging parameters are clamped,
// not rejected.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page := types.PageRequest{
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	}.Normalize()

	records, total, err := h.repo.List(r.Context(), page)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: types.ListResponse[types.HistoryRecord]{
			Data:     records,
			PageInfo: types.NewPageInfo(page, total),
		},
	})
}

// Get handles GET /v1/history/{id}.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: record})
}

// Delete handles DELETE /v1/history/{id}.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "prediction record deleted", "record_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /v1/history/export: the full history as a CSV download.
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	records, err := h.repo.ListAllForExport(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("maizecast-history-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteCSV(w, records); err != nil {
		// Headers are gone; all we can do is log the broken download.
		h.logger.ErrorContext(r.Context(), "csv export aborted mid-stream",
			"records", len(records),
			"error", err,
		)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordExport(len(records), time.Since(start))
	}
}

// ExportAsync handles POST /v1/history/export/async: enqueue an export job
// for the archive worker and return 202 with the export ID.
func (h *HistoryHandler) ExportAsync(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeInternalQueue,
			"asynchronous export is not configured",
			nil,
		))
		return
	}

	msg := types.ExportMessage{
		ExportID:    "exp_" + uuid.New().String(),
		RequestedAt: time.Now().UTC(),
		TraceID:     types.GetRequestID(r.Context()),
	}

	if err := h.queue.EnqueueExport(r.Context(), msg); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusAccepted, core.APIResponse{
		Data: AsyncExportResponse{ExportID: msg.ExportID, Status: types.ExportPending},
	})
}

// queryInt parses a query parameter as int, returning 0 when absent or
// malformed so PageRequest.Normalize applies the defaults.
func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
