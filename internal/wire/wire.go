package wire

import (
	"net/http"
	"time"

	"matrimony-otp/internal/adaptor"
	"matrimony-otp/internal/data/repository"
	"matrimony-otp/internal/rate"
	"matrimony-otp/internal/sms"
	"matrimony-otp/internal/usecase"
	"matrimony-otp/pkg/middleware"
	"matrimony-otp/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	limiter := rate.NewLimiter(
		repo.OTP,
		config.OTP.RateLimit,
		time.Duration(config.OTP.RateWindowMinutes)*time.Minute,
	)
	dispatcher := sms.NewDispatcher(config.SMS, config.Twilio, logger)

	service := usecase.NewService(repo, limiter, dispatcher, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// setupRouter configures the chi router
func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireOTP(r, handler.OTP)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
