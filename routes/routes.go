package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/prediction-league/handlers"
	"github.com/Dosada05/prediction-league/middleware"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

// RequestTimeout должен быть меньше WriteTimeout сервера.
const RequestTimeout = 25 * time.Second

// Handlers собирает все HTTP-обработчики приложения.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Tournaments *handlers.TournamentHandler
	Games       *handlers.GameHandler
	Predictions *handlers.PredictionHandler
	Standings   *handlers.StandingsHandler
	Football    *handlers.FootballHandler
}

func SetupRoutes(router chi.Router, h Handlers, tokens services.TokenService, corsOrigins []string, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(RequestTimeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authenticate := middleware.Authenticate(tokens, logger)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/tournaments", func(r chi.Router) {
				r.Get("/", h.Tournaments.ListHandler)
				r.Route("/{tournamentID}", func(r chi.Router) {
					r.Get("/", h.Tournaments.GetByIDHandler)
					r.Get("/games", h.Games.ListHandler)
					r.Get("/games/{gameID}", h.Games.GetByIDHandler)
					r.Get("/standings", h.Standings.GetHandler)
					r.Get("/my-predictions", h.Predictions.MyListHandler)
					r.Get("/football-standings", h.Football.CompetitionStandingsHandler)
				})
			})

			r.Route("/games/{gameID}/predictions", func(r chi.Router) {
				r.Post("/", h.Predictions.PlaceHandler)
				r.Get("/", h.Predictions.GameListHandler)
			})

			// Администрирование
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))

				r.Route("/tournaments", func(r chi.Router) {
					r.Post("/", h.Tournaments.CreateHandler)
					r.Route("/{tournamentID}", func(r chi.Router) {
						r.Put("/", h.Tournaments.UpdateHandler)
						r.Delete("/", h.Tournaments.DeleteHandler)
						r.Post("/emblem", h.Tournaments.UploadEmblemHandler)
						r.Post("/sync-scores", h.Football.SyncScoresHandler)

						r.Post("/games", h.Games.CreateHandler)
						r.Put("/games/{gameID}", h.Games.UpdateHandler)
						r.Delete("/games/{gameID}", h.Games.DeleteHandler)
					})
				})

				r.Put("/games/{gameID}/result", h.Games.SetResultHandler)

				r.Route("/football", func(r chi.Router) {
					r.Get("/status", h.Football.StatusHandler)
					r.Get("/leagues", h.Football.SearchLeaguesHandler)
					r.Post("/import", h.Football.ImportLeagueHandler)
				})
			})
		})
	})
}
