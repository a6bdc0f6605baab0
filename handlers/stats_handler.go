package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/ff-arena/services"
	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// PlayerStats проксирует игровую статистику Free Fire по account id.
func (h *StatsHandler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	if accountID == "" {
		badRequestResponse(w, r, errors.New("account id is required"))
		return
	}
	region := r.URL.Query().Get("region")

	stats, err := h.statsService.PlayerStats(r.Context(), accountID, region)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
