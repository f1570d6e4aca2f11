package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Service            Scheduler
	Auth               *AdminAuth
	Log                *zap.Logger
	PgPool             *pgxpool.Pool
	Redis              *redis.Client
	Env                string
	Version            string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Password", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.Liveness)
		r.Get("/health/ready", health.Readiness)

		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(cfg.RateLimitPerMinute, log))

			r.Post("/validate-order", validateOrderHandler(cfg.Service, log))
			r.Get("/available-slots", availableSlotsHandler(cfg.Service, log))
			r.Post("/book-appointment", bookAppointmentHandler(cfg.Service, log))
			r.Post("/admin/login", adminLoginHandler(cfg.Auth, log))

			r.Route("/admin/appointments", func(r chi.Router) {
				r.Use(cfg.Auth.Middleware)
				r.Get("/", listAppointmentsHandler(cfg.Service, log))
				r.Delete("/{orderNumber}", cancelAppointmentHandler(cfg.Service, log))
				r.Put("/{orderNumber}", rescheduleAppointmentHandler(cfg.Service, log))
			})
		})
	})

	return r
}
