package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/Harshitk-cp/oracle/internal/store"
	"github.com/go-chi/chi/v5"
)

// EntryStore is the subset of the entry store the HTTP layer needs.
type EntryStore interface {
	domain.EntryStore
	GetByID(ctx context.Context, id string) (*domain.ObservableEntry, error)
}

type EntryHandler struct {
	store EntryStore
}

func NewEntryHandler(store EntryStore) *EntryHandler {
	return &EntryHandler{store: store}
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var entry domain.ObservableEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(entry.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	if err := h.store.Create(r.Context(), &entry); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create entry")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *EntryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	entry, err := h.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get entry")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}
