package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/newthinker/tradelab/internal/api/response"
	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/ingest"
	"github.com/newthinker/tradelab/internal/storage/ticker"
)

const (
	// DefaultListLimit applies when GET /data names no limit.
	DefaultListLimit = 1000

	maxBodyBytes = 32 << 20
)

// DataHandler serves ticker CRUD requests.
type DataHandler struct {
	svc *ingest.Service
}

// NewDataHandler creates a new data handler.
func NewDataHandler(svc *ingest.Service) *DataHandler {
	return &DataHandler{svc: svc}
}

// List handles GET /data?skip=&limit=&start=&end=.
func (h *DataHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	if filter.Limit == 0 {
		response.JSON(w, http.StatusOK, []core.Ticker{})
		return
	}

	recs, err := h.svc.Store().List(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, recs)
}

// Create handles POST /data.
func (h *DataHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in core.TickerInput
	if err := decodeBody(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	rec, err := h.svc.Create(r.Context(), ingest.SourceAPI, in)
	if err != nil {
		writeCreateError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rec)
}

// CreateBulk handles POST /data/bulk. The batch is stored only if every
// record is valid.
func (h *DataHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	var in []core.TickerInput
	if err := decodeBody(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	recs, err := h.svc.CreateMany(r.Context(), ingest.SourceAPI, in)
	if err != nil {
		writeCreateError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, recs)
}

// Count handles GET /data/count.
func (h *DataHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Store().Count(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]int{"count": n})
}

// DeleteAll handles DELETE /data/all.
func (h *DataHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteAll(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{
		Message: fmt.Sprintf("Deleted %d records", n),
	})
}

// writeCreateError reports storage failures on create as client errors.
func writeCreateError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrStorageFailed) {
		response.ErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	response.Error(w, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return core.WrapError(core.ErrValidation, err)
	}
	return nil
}

func parseListFilter(r *http.Request) (ticker.ListFilter, error) {
	q := r.URL.Query()
	filter := ticker.ListFilter{Limit: DefaultListLimit}

	var err error
	if filter.Skip, err = queryInt(q.Get("skip"), "skip", 0); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(q.Get("limit"), "limit", DefaultListLimit); err != nil {
		return filter, err
	}

	if v := q.Get("start"); v != "" {
		if filter.From, err = core.ParseTimestamp(v); err != nil {
			return filter, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("start: %w", err))
		}
	}
	if v := q.Get("end"); v != "" {
		if filter.To, err = core.ParseTimestamp(v); err != nil {
			return filter, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("end: %w", err))
		}
	}
	return filter, nil
}

// queryInt parses a non-negative integer query value.
func queryInt(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("%s: not an integer: %q", name, raw))
	}
	if n < 0 {
		return 0, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("%s: must be non-negative", name))
	}
	return n, nil
}
