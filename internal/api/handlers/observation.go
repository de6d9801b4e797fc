package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/Harshitk-cp/oracle/internal/service"
	"go.uber.org/zap"
)

type ObservationHandler struct {
	runner *service.ObservationRunner
	logger *zap.Logger
}

func NewObservationHandler(runner *service.ObservationRunner, logger *zap.Logger) *ObservationHandler {
	return &ObservationHandler{runner: runner, logger: logger}
}

// An empty body runs a cycle over stored entries. Supplying entries observes
// those instead and leaves the store untouched.
type observeRequest struct {
	Entries []domain.ObservableEntry `json:"entries"`
}

func (h *ObservationHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req observeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		result *service.CycleResult
		err    error
	)
	if req.Entries != nil {
		result, err = h.runner.Observe(r.Context(), req.Entries)
	} else {
		result, err = h.runner.RunCycle(r.Context())
	}
	if err != nil {
		if errors.Is(err, service.ErrNoEntryLoader) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.logger.Error("observation cycle failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "observation cycle failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
