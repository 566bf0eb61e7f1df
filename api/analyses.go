package api

import (
	"net/http"
	"strconv"
)

const (
	defaultAnalysesLimit = 20
	maxAnalysesLimit     = 100
)

// GetAnalyses lists the most recent journaled canvas analyses
func (h *Handler) GetAnalyses(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil || !h.journal.Enabled() {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	limit := defaultAnalysesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxAnalysesLimit {
			h.sendError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	analyses, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to get analyses: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": analyses,
		"count":    len(analyses),
	})
}
