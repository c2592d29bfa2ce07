package adaptor

import (
	"net/http"

	"club-booking/internal/dto/request"
	"club-booking/internal/usecase"
	"club-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AccountHandler struct {
	service usecase.LedgerService
	log     *zap.Logger
}

func NewAccountHandler(service usecase.LedgerService, log *zap.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		log:     log.With(zap.String("handler", "account")),
	}
}

// GetBalance handles GET /api/users/{id}/balance
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get balance")
		return
	}

	utils.ResponseSuccess(w, "success", balance)
}

// GetTransactions handles GET /api/users/{id}/transactions
func (h *AccountHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	transactions, err := h.service.GetTransactions(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get transactions")
		return
	}

	utils.ResponseSuccess(w, "success", transactions)
}
