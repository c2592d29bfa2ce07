package wire

import (
	"net/http"

	"club-booking/internal/adaptor"
	"club-booking/internal/data/repository"
	"club-booking/internal/usecase"
	"club-booking/pkg/middleware"
	"club-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired application.
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies.
func Wiring(repo *repository.Repository, config *utils.Config, clock utils.Clock, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, clock, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireBooking(r, handler.Booking)
	wireSlot(r, handler.Slot)
	wireProposal(r, handler.Proposal)
	wireAccount(r, handler.Account)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
