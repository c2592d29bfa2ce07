package adaptor

import (
	"net/http"

	"club-booking/internal/dto/request"
	"club-booking/internal/usecase"
	"club-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SlotHandler struct {
	service usecase.SlotService
	log     *zap.Logger
}

func NewSlotHandler(service usecase.SlotService, log *zap.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log.With(zap.String("handler", "slot")),
	}
}

// ListSlots handles GET /api/slots?club_id=...&date=...
func (h *SlotHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := request.ListSlotsRequest{
		ClubID: query.Get("club_id"),
		Date:   query.Get("date"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	slots, err := h.service.ListSlots(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list slots")
		return
	}

	utils.ResponseSuccess(w, "success", slots)
}

// GetSlot handles GET /api/slots/{id}
func (h *SlotHandler) GetSlot(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "id")

	slot, err := h.service.GetSlot(r.Context(), slotID)
	if err != nil {
		handleServiceError(w, h.log, err, "get slot")
		return
	}

	utils.ResponseSuccess(w, "success", slot)
}
