package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/advent-ledger/internal/pkg/logger"
)

// HandleExportLeads downloads a campaign's leads as CSV. The file is built in
// memory first so a failing query still yields a proper error status.
//
//	GET /api/campaigns/{campaignID}/leads/export
func (h *Handlers) HandleExportLeads(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")

	var buf bytes.Buffer
	n, err := h.leads.Export(r.Context(), campaignID, &buf)
	if err != nil {
		respondError(w, err, "Failed to export leads")
		return
	}

	filename := fmt.Sprintf("leads-%s-%s.csv", campaignID, time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("[api] lead export write failed", "campaign_id", campaignID, "err", err)
		return
	}
	logger.Info("[api] leads exported", "campaign_id", campaignID, "rows", n)
}
