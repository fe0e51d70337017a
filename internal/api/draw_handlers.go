package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/advent-ledger/internal/pkg/httputil"
	"github.com/ignite/advent-ledger/internal/service/draw"
)

// HandleRegister registers a lead, and an entry when a door is given.
// Returns 201 when anything new was created and 200 for a repeat.
//
//	POST /api/campaigns/{campaignID}/leads
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in draw.RegisterInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	in.CampaignID = chi.URLParam(r, "campaignID")

	res, err := h.draws.Register(r.Context(), in)
	if err != nil {
		respondError(w, err, "Failed to register")
		return
	}
	if res.NewLead || res.NewEntry {
		httputil.Created(w, res)
		return
	}
	httputil.OK(w, res)
}

// HandleDrawDoor selects the winner of one door.
//
//	POST /api/campaigns/{campaignID}/doors/{doorID}/draw
func (h *Handlers) HandleDrawDoor(w http.ResponseWriter, r *http.Request) {
	winner, err := h.draws.DrawDoor(r.Context(), chi.URLParam(r, "campaignID"), chi.URLParam(r, "doorID"))
	if err != nil {
		respondError(w, err, "Failed to draw winner")
		return
	}
	httputil.Created(w, winner)
}

// HandleGetDoorWinner returns a door's winner.
//
//	GET /api/campaigns/{campaignID}/doors/{doorID}/winner
func (h *Handlers) HandleGetDoorWinner(w http.ResponseWriter, r *http.Request) {
	winner, err := h.draws.GetDoorWinner(r.Context(), chi.URLParam(r, "campaignID"), chi.URLParam(r, "doorID"))
	if err != nil {
		respondError(w, err, "Failed to load winner")
		return
	}
	httputil.OK(w, winner)
}

type landingDrawRequest struct {
	LeadID *string `json:"leadId"`
}

// HandleDrawLanding selects the landing campaign winner, at random or the
// lead named in the body.
//
//	POST /api/campaigns/{campaignID}/landing-winner
func (h *Handlers) HandleDrawLanding(w http.ResponseWriter, r *http.Request) {
	var req landingDrawRequest
	if !httputil.DecodeOptional(w, r, &req) {
		return
	}

	winner, err := h.draws.DrawLanding(r.Context(), chi.URLParam(r, "campaignID"), req.LeadID)
	if err != nil {
		respondError(w, err, "Failed to draw winner")
		return
	}
	httputil.Created(w, winner)
}

// HandleGetLandingWinner returns the landing campaign winner.
//
//	GET /api/campaigns/{campaignID}/landing-winner
func (h *Handlers) HandleGetLandingWinner(w http.ResponseWriter, r *http.Request) {
	winner, err := h.draws.GetLandingWinner(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		respondError(w, err, "Failed to load winner")
		return
	}
	httputil.OK(w, winner)
}

type visibilityRequest struct {
	IsPublic *bool `json:"isPublic"`
}

// HandleSetLandingVisibility publishes or hides the landing winner.
//
//	PATCH /api/campaigns/{campaignID}/landing-winner
func (h *Handlers) HandleSetLandingVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.IsPublic == nil {
		httputil.BadRequest(w, "isPublic is required")
		return
	}

	winner, err := h.draws.SetLandingVisibility(r.Context(), chi.URLParam(r, "campaignID"), *req.IsPublic)
	if err != nil {
		respondError(w, err, "Failed to update winner")
		return
	}
	httputil.OK(w, winner)
}

// HandleDeleteLandingWinner removes the landing winner so it can be redrawn.
//
//	DELETE /api/campaigns/{campaignID}/landing-winner
func (h *Handlers) HandleDeleteLandingWinner(w http.ResponseWriter, r *http.Request) {
	if err := h.draws.DeleteLandingWinner(r.Context(), chi.URLParam(r, "campaignID")); err != nil {
		respondError(w, err, "Failed to delete winner")
		return
	}
	httputil.NoContent(w)
}
