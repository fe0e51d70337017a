package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/pkg/httputil"
)

// HandleListQuestions returns a door's quiz in display order.
//
//	GET /api/campaigns/{campaignID}/doors/{doorID}/questions
func (h *Handlers) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.quiz.List(r.Context(), chi.URLParam(r, "campaignID"), chi.URLParam(r, "doorID"))
	if err != nil {
		respondError(w, err, "Failed to load questions")
		return
	}
	httputil.OK(w, map[string]any{"questions": qs})
}

type replaceQuestionsRequest struct {
	Questions []domain.Question `json:"questions"`
}

// HandleReplaceQuestions swaps a door's whole quiz.
//
//	PUT /api/campaigns/{campaignID}/doors/{doorID}/questions
func (h *Handlers) HandleReplaceQuestions(w http.ResponseWriter, r *http.Request) {
	var req replaceQuestionsRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	qs, err := h.quiz.Replace(r.Context(), chi.URLParam(r, "campaignID"), chi.URLParam(r, "doorID"), req.Questions)
	if err != nil {
		respondError(w, err, "Failed to save questions")
		return
	}
	httputil.OK(w, map[string]any{"questions": qs})
}

type generateQuestionsRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// HandleGenerateQuestions replaces a door's quiz with generated questions.
//
//	POST /api/campaigns/{campaignID}/doors/{doorID}/questions/generate
func (h *Handlers) HandleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req generateQuestionsRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	qs, err := h.quiz.Generate(r.Context(), chi.URLParam(r, "campaignID"), chi.URLParam(r, "doorID"), req.Topic, req.Count)
	if err != nil {
		respondError(w, err, "Failed to generate questions")
		return
	}
	httputil.OK(w, map[string]any{"questions": qs})
}
