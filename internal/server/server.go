package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/uptrace/bun"

	_ "github.com/fkhayef/meetup/docs"
	"github.com/fkhayef/meetup/internal/club"
	"github.com/fkhayef/meetup/internal/config"
	"github.com/fkhayef/meetup/internal/database"
	"github.com/fkhayef/meetup/internal/event"
	"github.com/fkhayef/meetup/internal/notification"
	"github.com/fkhayef/meetup/internal/region"
	"github.com/fkhayef/meetup/internal/review"
	"github.com/fkhayef/meetup/internal/user"
	"github.com/fkhayef/meetup/pkg/jwt"
	"github.com/fkhayef/meetup/pkg/metrics"
	mw "github.com/fkhayef/meetup/pkg/middleware"
	"github.com/fkhayef/meetup/pkg/response"
)

// New wires every feature onto db and returns the root HTTP handler
func New(db *bun.DB, cfg *config.Config) http.Handler {
	uow := database.NewUnitOfWork(db)

	// Region catalog
	regionService := region.NewService(region.NewRepository(db))
	regionHandler := region.NewHandler(regionService)

	// Notification feature
	notificationService := notification.NewService(notification.NewRepository(db))
	notificationHandler := notification.NewHandler(notificationService)

	// User feature
	userService := user.NewService(user.NewRepository(db), regionService)
	userHandler := user.NewHandler(userService)

	// Club feature. Leaving or deleting a club cascades into its events through the event repository.
	eventRepo := event.NewRepository(db)
	clubService := club.NewService(club.NewRepository(db), eventRepo, notificationService, uow, cfg.Club.ExitCascade)
	clubHandler := club.NewHandler(clubService)

	// Event feature
	eventService := event.NewService(eventRepo, clubService, regionService, uow)
	eventHandler := event.NewHandler(eventService)

	// Review feature
	reviewService := review.NewService(review.NewRepository(db), eventService, clubService)
	reviewHandler := review.NewHandler(reviewService)

	auth := mw.NewAuthenticator(jwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer), cfg.Auth.DevHeader, userService)
	limiter := mw.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	protect := func(next http.Handler) http.Handler {
		return auth.RequireAuth(limiter.Handler(next))
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.Tracing)
	r.Use(metrics.InstrumentHandler)
	r.Use(mw.RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes(protect))
		r.Mount("/clubs", clubHandler.Routes(protect))
		r.Mount("/events", eventHandler.Routes(protect))
		r.Mount("/reviews", reviewHandler.Routes(protect))
		r.Mount("/notifications", notificationHandler.Routes(protect))
		r.Mount("/categories", regionHandler.CategoryRoutes())
		r.Mount("/cities", regionHandler.CityRoutes())
	})

	return r
}
