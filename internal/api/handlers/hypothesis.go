package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/Harshitk-cp/oracle/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HypothesisHandler struct {
	svc    *service.HypothesisService
	logger *zap.Logger
}

func NewHypothesisHandler(svc *service.HypothesisService, logger *zap.Logger) *HypothesisHandler {
	return &HypothesisHandler{svc: svc, logger: logger}
}

type listHypothesesResponse struct {
	Hypotheses []domain.Hypothesis `json:"hypotheses"`
	Count      int                 `json:"count"`
}

type updatesResponse struct {
	Updates []domain.HypothesisUpdate `json:"updates"`
	Count   int                       `json:"count"`
}

func newUpdatesResponse(updates []domain.HypothesisUpdate) updatesResponse {
	if updates == nil {
		updates = []domain.HypothesisUpdate{}
	}
	return updatesResponse{Updates: updates, Count: len(updates)}
}

func (h *HypothesisHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.URL.Query().Get("status"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatusFilter) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list hypotheses")
		return
	}

	writeJSON(w, http.StatusOK, listHypothesesResponse{Hypotheses: list, Count: len(list)})
}

func (h *HypothesisHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid hypothesis id")
		return
	}

	hyp, err := h.svc.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrHypothesisNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get hypothesis")
		return
	}

	writeJSON(w, http.StatusOK, hyp)
}

func (h *HypothesisHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.feedback(w, r, h.svc.Confirm)
}

func (h *HypothesisHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.feedback(w, r, h.svc.Reject)
}

func (h *HypothesisHandler) feedback(w http.ResponseWriter, r *http.Request, apply func(context.Context, uuid.UUID) (*domain.HypothesisUpdate, error)) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid hypothesis id")
		return
	}

	update, err := apply(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrHypothesisNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("feedback not persisted", zap.String("hypothesis_id", id.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save hypothesis")
		return
	}

	writeJSON(w, http.StatusOK, update)
}

func (h *HypothesisHandler) RecordEvidence(w http.ResponseWriter, r *http.Request) {
	var req service.EvidenceInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updates, err := h.svc.RecordEvidence(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownEvidenceType),
			errors.Is(err, service.ErrEvidenceUnscoped):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to record evidence")
		}
		return
	}

	writeJSON(w, http.StatusOK, newUpdatesResponse(updates))
}

func (h *HypothesisHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	updates, err := h.svc.Sweep(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sweep hypotheses")
		return
	}

	writeJSON(w, http.StatusOK, newUpdatesResponse(updates))
}
