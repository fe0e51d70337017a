package api

import (
	"net/http"

	"github.com/ignite/advent-ledger/internal/fingerprint"
	"github.com/ignite/advent-ledger/internal/pkg/httputil"
	"github.com/ignite/advent-ledger/internal/service/ingest"
)

// HandleTrack records one tracking event posted by a public campaign page.
// Pages send it with fetch or navigator.sendBeacon, so text/plain bodies are
// accepted.
//
//	POST /api/track
func (h *Handlers) HandleTrack(w http.ResponseWriter, r *http.Request) {
	var p ingest.Payload
	if !httputil.Decode(w, r, &p) {
		return
	}

	ev, err := ingest.Decode(p)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	client := ingest.Client{
		Address:   fingerprint.ClientAddress(r),
		UserAgent: r.UserAgent(),
	}
	if err := h.tracker.Record(r.Context(), ev, client); err != nil {
		respondError(w, err, "Failed to track event")
		return
	}
	httputil.OK(w, map[string]bool{"success": true})
}
