package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/forza-race-organizer/handlers"
	"github.com/Dosada05/forza-race-organizer/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Races         *handlers.RaceHandler
	Organizations *handlers.OrganizationHandler
	Guilds        *handlers.GuildHandler
	Events        *handlers.EventHandler
	Tickets       *handlers.TicketHandler
	Interactions  *handlers.InteractionHandler
	WebSocket     *handlers.WebSocketHandler
	Metrics       http.Handler
}

type Options struct {
	Sessions       middleware.SessionVerifier
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.RequestLogger(&chiMiddleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(opts.Logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	router.Use(chiMiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if h.Metrics != nil {
		router.Handle("/metrics", h.Metrics)
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Discord вызывает этот endpoint напрямую, CORS и лимиты ему не нужны
	router.With(chiMiddleware.Timeout(10*time.Second)).Post("/interactions", h.Interactions.Handle)

	authenticate := middleware.Authenticate(opts.Sessions)
	router.With(authenticate).Get("/ws/guilds/{guildId}", h.WebSocket.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins(opts.AllowedOrigins),
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Use(middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))

		r.Post("/token", h.Auth.Token)

		r.Route("/races", func(r chi.Router) {
			r.Get("/", h.Races.List)
			r.Get("/{raceId}", h.Races.Get)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", h.Races.Create)
				r.Put("/{raceId}", h.Races.Update)
				r.Delete("/{raceId}", h.Races.Delete)
			})
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", h.Organizations.List)
			r.Get("/{guildId}", h.Organizations.Get)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/register", h.Organizations.Register)
				r.Post("/{guildId}", h.Organizations.Save)
			})
		})

		r.Route("/events/{eventId}", func(r chi.Router) {
			r.Get("/", h.Events.Get)
			r.Get("/results.xlsx", h.Events.Workbook)
			r.Get("/standings.png", h.Events.Chart)
		})

		r.Route("/guilds/{guildId}", func(r chi.Router) {
			r.Get("/events", h.Events.ListGuild)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/", h.Guilds.Guild)
				r.Get("/channels", h.Guilds.Channels)
				r.Get("/roles", h.Guilds.Roles)
				r.Get("/members/{userId}/permissions", h.Guilds.MemberPermissions)
				r.Get("/settings", h.Guilds.GetSettings)
				r.Post("/settings", h.Guilds.SaveSettings)
				r.Get("/tickets", h.Tickets.List)
			})
		})
	})
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
