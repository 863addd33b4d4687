package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dorozco/marketpulse-backend/api/controllers"
	"github.com/dorozco/marketpulse-backend/api/middleware"
	"github.com/dorozco/marketpulse-backend/internal/analytics"
	"github.com/dorozco/marketpulse-backend/internal/liveops"
	"github.com/dorozco/marketpulse-backend/internal/notifications"
	"github.com/dorozco/marketpulse-backend/pkg/config"
	"github.com/dorozco/marketpulse-backend/pkg/logger"
	"github.com/dorozco/marketpulse-backend/pkg/metrics"
	pkgredis "github.com/dorozco/marketpulse-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         *pkgredis.Client
	Scheduler     *liveops.Scheduler
	Bus           *liveops.Bus
	LiveOps       *metrics.LiveOpsMetrics
	Analytics     analytics.Service
	Notifications notifications.Service
	Registry      *prometheus.Registry
}

// NewRouter assembles the HTTP surface: health and metrics at the root,
// versioned API routes underneath.
func NewRouter(deps Deps) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID(deps.Logger))
	router.Use(middleware.Recoverer(deps.Logger))
	router.Use(middleware.CORS())
	router.Use(middleware.Logging(deps.Logger))

	router.Get("/health/live", controllers.HealthLive(deps.Config))
	router.Get("/health/ready", controllers.HealthReady(deps.Config, deps.DB, pingerOrNil(deps.Redis), deps.Logger))

	if deps.Registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/liveops", func(r chi.Router) {
			r.Get("/stream", controllers.StreamEvents(controllers.StreamDeps{
				Scheduler: deps.Scheduler,
				Bus:       deps.Bus,
				Metrics:   deps.LiveOps,
				Logger:    deps.Logger,
				Buffer:    deps.Config.LiveOps.StreamBuffer,
			}))
			r.Get("/snapshot", controllers.Snapshot(deps.Scheduler, deps.Logger))
		})

		api.Get("/analytics/categories/{categoryId}", controllers.CategoryAnalytics(deps.Analytics, deps.Logger))

		api.Route("/notifications", func(r chi.Router) {
			r.Use(middleware.Idempotency(idempotencyStoreOrNil(deps.Redis), deps.Logger))
			r.Get("/", controllers.ListNotifications(deps.Notifications, deps.Logger))
			r.Post("/", controllers.CreateNotification(deps.Notifications, deps.Logger))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, deps.Logger))
			r.Get("/{notificationId}", controllers.GetNotification(deps.Notifications, deps.Logger))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, deps.Logger))
		})
	})

	return router
}

func pingerOrNil(client *pkgredis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStoreOrNil(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
