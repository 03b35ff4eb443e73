package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/partsdesk/partsdesk/modules/core/services"
	"github.com/partsdesk/partsdesk/pkg/application"
	"github.com/partsdesk/partsdesk/pkg/configuration"
	"github.com/partsdesk/partsdesk/pkg/constants"
	"github.com/partsdesk/partsdesk/pkg/httpapi"
	"github.com/partsdesk/partsdesk/pkg/metrics"
	"github.com/partsdesk/partsdesk/pkg/middleware"
	"github.com/partsdesk/partsdesk/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the middleware stack and the HTTP server around
// the registered controllers.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.Cors(strings.Split(conf.AllowedOrigins, ",")...),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		var err error
		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("redis rate limit store unavailable, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}
		middlewares = append(middlewares, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerPeriod: conf.RateLimit.GlobalRPS,
			Store:             store,
		}))
	}

	if conf.Prometheus.Enabled {
		middlewares = append(middlewares, metrics.HTTPMetrics())
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	auth := app.Service(services.AuthService{}).(*services.AuthService)
	middlewares = append(middlewares,
		middleware.RequestParams(),
		middleware.ProvideUser(auth),
		middleware.PageGate(),
	)

	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(app, notFound(), methodNotAllowed()), nil
}

func notFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	})
}

func methodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
}
