package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/syntrixbase/itemdeck/internal/metrics"
	"github.com/syntrixbase/itemdeck/internal/state"
)

// ReplaceStateRequest is the body of POST /state. Version is optional; when
// present the write only succeeds if the stored state still has it.
type ReplaceStateRequest struct {
	SelectedIDs []int   `json:"selectedIds" validate:"omitempty,dive,min=1,max=1000000"`
	SortedOrder []int   `json:"sortedOrder" validate:"omitempty,dive,min=1,max=1000000"`
	Version     *uint64 `json:"version,omitempty"`
}

type ReplaceStateResponse struct {
	Success bool   `json:"success"`
	Version uint64 `json:"version"`
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Read(r.Context())
	if err != nil {
		h.writeStateError(w, r, err, "Failed to read state")
		return
	}
	writeJSON(w, http.StatusOK, s.Clone())
}

func (h *Handler) handleReplaceState(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAndValidate[ReplaceStateRequest](r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, "Request body too large")
			return
		}
		h.logger.Warn("ReplaceState: invalid request", "error", err)
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	next := state.State{SelectedIDs: req.SelectedIDs, SortedOrder: req.SortedOrder}
	var saved state.State
	if req.Version != nil {
		saved, err = h.store.ReplaceIf(r.Context(), next, *req.Version)
	} else {
		saved, err = h.store.Replace(r.Context(), next)
	}
	if err != nil {
		metrics.StateReplaces.WithLabelValues(replaceResult(err)).Inc()
		h.writeStateError(w, r, err, "Failed to replace state")
		return
	}
	metrics.StateReplaces.WithLabelValues("ok").Inc()
	metrics.StateVersion.Set(float64(saved.Version))

	h.logger.Info("State replaced",
		"version", saved.Version,
		"selected", len(saved.SelectedIDs),
		"sorted", len(saved.SortedOrder),
		"conditional", strconv.FormatBool(req.Version != nil),
	)
	writeJSON(w, http.StatusOK, ReplaceStateResponse{Success: true, Version: saved.Version})
}

func replaceResult(err error) string {
	switch {
	case errors.Is(err, state.ErrVersionConflict):
		return "conflict"
	case errors.Is(err, state.ErrStorageUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
