package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/partsdesk/partsdesk/pkg/httpapi"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
}

func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	return redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "partsdesk:ratelimit",
	})
}

// RateLimit applies a global per-IP limit. Exceeding it returns 429
// with the usual error envelope.
func RateLimit(config RateLimitConfig) mux.MiddlewareFunc {
	period := config.Period
	if period == 0 {
		period = time.Second
	}
	rate := limiter.Rate{
		Period: period,
		Limit:  int64(config.RequestsPerPeriod),
	}
	instance := limiter.New(config.Store, rate, limiter.WithTrustForwardHeader(true))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiterCtx, err := instance.Get(r.Context(), instance.GetIPKey(r))
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusInternalServerError, "RATE_LIMIT_ERROR", err.Error(), nil)
				return
			}
			if limiterCtx.Reached {
				_ = httpapi.WriteError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
