package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coursehive/coursehive-backend/api/controllers"
	"github.com/coursehive/coursehive-backend/api/middleware"
	coursesvc "github.com/coursehive/coursehive-backend/internal/courses"
	purchasesvc "github.com/coursehive/coursehive-backend/internal/purchases"
	"github.com/coursehive/coursehive-backend/pkg/config"
	"github.com/coursehive/coursehive-backend/pkg/db"
	"github.com/coursehive/coursehive-backend/pkg/enums"
	"github.com/coursehive/coursehive-backend/pkg/logger"
	"github.com/coursehive/coursehive-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	courseService coursesvc.Service,
	purchaseService purchasesvc.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.FrontendURL),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/course", func(r chi.Router) {
		r.Use(middleware.RateLimit(redisClient, logg))

		// catalog reads are public
		r.Get("/", controllers.ListCourses(courseService, logg))
		r.Get("/{courseId}", controllers.GetCourse(courseService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Post("/purchase/{courseId}", controllers.PurchaseCourse(purchaseService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole(enums.ActorRoleAdmin.String(), logg))
			r.Post("/", controllers.CreateCourse(courseService, cfg.Media, logg))
			r.Put("/{courseId}", controllers.UpdateCourse(courseService, cfg.Media, logg))
			r.Delete("/{courseId}", controllers.DeleteCourse(courseService, logg))
		})
	})

	r.Route("/api/v1/purchases", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RateLimit(redisClient, logg))
		r.Get("/", controllers.ListPurchases(purchaseService, logg))
	})

	return r
}
