package api

import (
	"errors"
	"net/http"

	"github.com/ignite/advent-ledger/internal/pkg/httputil"
	"github.com/ignite/advent-ledger/internal/service/draw"
	"github.com/ignite/advent-ledger/internal/service/ingest"
	"github.com/ignite/advent-ledger/internal/service/leads"
	"github.com/ignite/advent-ledger/internal/service/quiz"
	"github.com/ignite/advent-ledger/internal/service/report"
)

// clientError maps a domain sentinel to the status and machine code shown to
// the caller. Client errors carry their own message; anything unmatched is a
// 5xx and is sanitized.
type clientError struct {
	target error
	status int
	code   string
}

var clientErrors = []clientError{
	{draw.ErrWinnerAlreadySelected, http.StatusConflict, "winner_exists"},
	{draw.ErrNoEntries, http.StatusConflict, "no_entries"},
	{draw.ErrNoLeads, http.StatusConflict, "no_leads"},
	{draw.ErrLeadNotInCampaign, http.StatusBadRequest, "lead_not_in_campaign"},
	{draw.ErrNotLandingCampaign, http.StatusBadRequest, "not_landing_campaign"},
	{draw.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{draw.ErrNotFound, http.StatusNotFound, "not_found"},
	{ingest.ErrInvalidEvent, http.StatusBadRequest, "invalid_event"},
	{report.ErrInvalidPeriod, http.StatusBadRequest, "invalid_period"},
	{report.ErrNotFound, http.StatusNotFound, "not_found"},
	{leads.ErrNotFound, http.StatusNotFound, "not_found"},
	{quiz.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{quiz.ErrNotFound, http.StatusNotFound, "not_found"},
	{quiz.ErrNoGenerator, http.StatusNotImplemented, "not_configured"},
}

// respondError writes err to the client. Known domain errors keep their
// message; everything else is logged and replaced by publicMsg so database
// details never reach API consumers.
func respondError(w http.ResponseWriter, err error, publicMsg string) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.target) {
			httputil.ErrorCode(w, ce.status, ce.code, capitalize(err.Error()))
			return
		}
	}
	httputil.InternalError(w, err, publicMsg)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
