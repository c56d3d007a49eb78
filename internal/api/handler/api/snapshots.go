package api

import (
	"context"
	"net/http"

	"github.com/newthinker/tradelab/internal/api/job"
	"github.com/newthinker/tradelab/internal/api/response"
	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/snapshot"
)

// JobTypeSnapshot labels snapshot export jobs.
const JobTypeSnapshot = "snapshot"

// SnapshotHandler starts snapshot exports and lists archived snapshots.
type SnapshotHandler struct {
	jobStore *job.Store
	exporter *snapshot.Exporter // nil when no archive is configured
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(jobStore *job.Store, exporter *snapshot.Exporter) *SnapshotHandler {
	return &SnapshotHandler{jobStore: jobStore, exporter: exporter}
}

// Create handles POST /snapshots by starting an export job.
func (h *SnapshotHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		response.Error(w, core.ErrArchiveDisabled)
		return
	}

	j := h.jobStore.Run(r.Context(), JobTypeSnapshot, func(ctx context.Context) (any, error) {
		return h.exporter.Export(ctx)
	})

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	})
}

// List handles GET /snapshots.
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		response.Error(w, core.ErrArchiveDisabled)
		return
	}

	paths, err := h.exporter.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	if paths == nil {
		paths = []string{}
	}
	response.JSON(w, http.StatusOK, paths)
}
