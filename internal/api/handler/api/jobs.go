package api

import (
	"net/http"

	"github.com/newthinker/tradelab/internal/api/job"
	"github.com/newthinker/tradelab/internal/api/response"
)

// JobHandler reports async job status.
type JobHandler struct {
	jobStore *job.Store
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobStore *job.Store) *JobHandler {
	return &JobHandler{jobStore: jobStore}
}

// Get handles GET /jobs/{id}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobStore.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	resp := map[string]any{
		"job_id": j.ID,
		"type":   j.Type,
		"status": j.Status,
	}
	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed {
		resp["error"] = j.Error
	}

	response.JSON(w, http.StatusOK, resp)
}
