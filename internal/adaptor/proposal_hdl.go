package adaptor

import (
	"encoding/json"
	"net/http"

	"club-booking/internal/dto/request"
	"club-booking/internal/usecase"
	"club-booking/pkg/utils"

	"go.uber.org/zap"
)

type ProposalHandler struct {
	service usecase.ProposalService
	log     *zap.Logger
}

func NewProposalHandler(service usecase.ProposalService, log *zap.Logger) *ProposalHandler {
	return &ProposalHandler{
		service: service,
		log:     log.With(zap.String("handler", "proposal")),
	}
}

// Generate handles POST /api/proposals/generate
func (h *ProposalHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req request.GenerateProposalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	report, err := h.service.Generate(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "generate proposals")
		return
	}

	utils.ResponseSuccess(w, "success", report)
}
