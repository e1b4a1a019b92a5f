package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/pawlurking/greencop/internal/model"
	"github.com/pawlurking/greencop/internal/service"
	"github.com/pawlurking/greencop/internal/websocket"
)

type ReportHandler struct {
	reports *service.ReportService
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewReportHandler(rs *service.ReportService, hub *websocket.Hub, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: rs, hub: hub, logger: logger}
}

func (h *ReportHandler) broadcast(evt websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(evt)
	}
}

type createReportRequest struct {
	UserID          int64                  `json:"user_id"`
	Location        string                 `json:"location"`
	WasteType       string                 `json:"waste_type"`
	Amount          string                 `json:"amount"`
	ImageURL        *string                `json:"image_url"`
	InferenceResult *model.InferenceResult `json:"inference_result"`
	SubmissionKey   string                 `json:"submission_key"`
}

// Create files a waste report and awards the reporting points. Clients may
// pass a submission_key to make retries safe; absent one, the server mints a
// key so a stored report can still be tied back to this submission.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.SubmissionKey == "" {
		req.SubmissionKey = uuid.NewString()
	}

	report, err := h.reports.CreateReport(r.Context(), service.CreateReportParams{
		UserID:          req.UserID,
		Location:        req.Location,
		WasteType:       req.WasteType,
		Amount:          req.Amount,
		ImageURL:        req.ImageURL,
		InferenceResult: req.InferenceResult,
		SubmissionKey:   req.SubmissionKey,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("report", "created", report.ID, map[string]any{
		"user_id": report.UserID,
	}))

	writeJSON(w, http.StatusCreated, report)
}

// ListRecent returns the newest reports.
func (h *ReportHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.GetRecentReports(r.Context(), parseLimit(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// ListTasks returns reports still in the collection workflow.
func (h *ReportHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.reports.GetWasteCollectionTasks(r.Context(), parseLimit(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if tasks == nil {
		tasks = []model.Report{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

type updateStatusRequest struct {
	Status      string `json:"status"`
	CollectorID *int64 `json:"collector_id"`
}

// UpdateStatus moves a task through the collection lifecycle.
func (h *ReportHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	report, err := h.reports.UpdateTaskStatus(r.Context(), id, model.ReportStatus(req.Status), req.CollectorID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("task", "status_changed", report.ID, map[string]any{
		"status": string(report.Status),
	}))

	writeJSON(w, http.StatusOK, report)
}

type collectRequest struct {
	CollectorID int64 `json:"collector_id"`
}

// Collect records the collection and awards the collector's points.
func (h *ReportHandler) Collect(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CollectorID <= 0 {
		writeError(w, http.StatusBadRequest, "collector_id is required")
		return
	}

	record, err := h.reports.SaveCollectedWaste(r.Context(), id, req.CollectorID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("task", "collected", id, map[string]any{
		"collector_id": req.CollectorID,
	}))

	writeJSON(w, http.StatusCreated, record)
}
