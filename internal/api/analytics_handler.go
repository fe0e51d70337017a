package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/advent-ledger/internal/pkg/httputil"
	"github.com/ignite/advent-ledger/internal/service/report"
)

// HandleAnalytics returns the campaign report for a period preset.
//
//	GET /api/campaigns/{campaignID}/analytics?period=7d
func (h *Handlers) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	period, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, err, "Failed to load analytics")
		return
	}

	rep, err := h.reports.Build(r.Context(), chi.URLParam(r, "campaignID"), period)
	if err != nil {
		respondError(w, err, "Failed to load analytics")
		return
	}
	httputil.OK(w, rep)
}
