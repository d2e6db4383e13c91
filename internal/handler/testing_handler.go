package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"stock-empire/internal/container"
	"stock-empire/internal/repository"
)

// defaultRetentionDays is used when prune is called without retention_days
const defaultRetentionDays = 30

// TestingHandler handles testing/development requests
type TestingHandler struct {
	container   *container.Container
	snapshots   repository.SnapshotRepository
	environment string
}

// NewTestingHandler creates a new testing handler
func NewTestingHandler(container *container.Container) *TestingHandler {
	cfg := container.GetConfig()

	var snapshots repository.SnapshotRepository
	if container.Repositories != nil {
		snapshots = container.Repositories.Snapshots
	}

	return &TestingHandler{
		container:   container,
		snapshots:   snapshots,
		environment: cfg.Environment,
	}
}

// TestingResponse represents the response for testing operations
type TestingResponse struct {
	Status      string      `json:"status"`
	Message     string      `json:"message"`
	Environment string      `json:"environment"`
	Data        interface{} `json:"data,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// SnapshotStats handles GET /api/testing/snapshot-stats
// Reports the stored snapshot count, the latest snapshot and the live ledger (development only)
func (h *TestingHandler) SnapshotStats(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w) {
		return
	}
	logger := h.container.GetLogger()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ledger, err := h.container.Services.Analytics.Snapshot(ctx)
	if err != nil {
		h.respond(w, http.StatusInternalServerError, "error", "Failed to load ledger: "+err.Error(), nil)
		return
	}

	data := map[string]interface{}{
		"ledger":             ledger,
		"snapshots_enabled":  h.snapshots != nil,
		"snapshot_count":     int64(0),
		"latest_snapshot_at": nil,
	}

	if h.snapshots != nil {
		count, err := h.snapshots.GetSnapshotCount(ctx)
		if err != nil {
			logger.WithError(err).Error("Testing: Failed to count snapshots")
			h.respond(w, http.StatusInternalServerError, "error", "Failed to count snapshots: "+err.Error(), nil)
			return
		}
		data["snapshot_count"] = count

		latest, err := h.snapshots.GetLatestSnapshot(ctx)
		if err != nil {
			logger.WithError(err).Warn("Testing: Failed to load latest snapshot")
		} else if latest != nil {
			data["latest_snapshot_at"] = latest.CreatedAt
		}
	}

	h.respond(w, http.StatusOK, "success", "Snapshot statistics", data)
}

// PruneSnapshots handles POST /api/testing/prune-snapshots?retention_days=N
// Deletes snapshots older than the retention period (development only)
func (h *TestingHandler) PruneSnapshots(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w) {
		return
	}
	logger := h.container.GetLogger()

	if h.snapshots == nil {
		h.respond(w, http.StatusServiceUnavailable, "error", "Snapshots require DATABASE_URL", nil)
		return
	}

	retention := defaultRetentionDays
	if raw := r.URL.Query().Get("retention_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			h.respond(w, http.StatusBadRequest, "error", "retention_days must be a positive integer", nil)
			return
		}
		retention = days
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	deleted, err := h.snapshots.DeleteOldSnapshots(ctx, retention)
	if err != nil {
		logger.WithError(err).Error("Testing: Failed to prune snapshots")
		h.respond(w, http.StatusInternalServerError, "error", "Failed to prune snapshots: "+err.Error(), nil)
		return
	}

	logger.WithFields(map[string]interface{}{
		"deleted":        deleted,
		"retention_days": retention,
	}).Info("Testing: Snapshots pruned")

	h.respond(w, http.StatusOK, "success", "Snapshots pruned", map[string]interface{}{
		"deleted":        deleted,
		"retention_days": retention,
	})
}

// allowed rejects the request outside the development environment
func (h *TestingHandler) allowed(w http.ResponseWriter) bool {
	if h.environment == "development" {
		return true
	}

	h.container.GetLogger().Warn("Attempted to access testing endpoint in non-development environment")
	h.respond(w, http.StatusForbidden, "error", "This endpoint is only available in development environment", nil)
	return false
}

func (h *TestingHandler) respond(w http.ResponseWriter, status int, result, message string, data interface{}) {
	respondJSON(w, status, TestingResponse{
		Status:      result,
		Message:     message,
		Environment: h.environment,
		Data:        data,
		Timestamp:   time.Now().UTC(),
	}, h.container.GetLogger())
}
