package wire

import (
	"club-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireProposal(r chi.Router, proposalHandler *adaptor.ProposalHandler) {
	// POST /api/proposals/generate - batch proposal generation for a club
	r.Post("/api/proposals/generate", proposalHandler.Generate)
}
