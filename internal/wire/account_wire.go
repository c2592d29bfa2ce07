package wire

import (
	"club-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAccount(r chi.Router, accountHandler *adaptor.AccountHandler) {
	// GET /api/users/{id}/balance - dual-currency balance view
	r.Get("/api/users/{id}/balance", accountHandler.GetBalance)

	// GET /api/users/{id}/transactions - paginated ledger history
	r.Get("/api/users/{id}/transactions", accountHandler.GetTransactions)
}
