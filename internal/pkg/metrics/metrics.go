package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geosketch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geosketch",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Edit engine metrics
	EditsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "editor",
		Name:      "edits_applied_total",
		Help:      "Total edit operations applied",
	}, []string{"kind"})

	UndosApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "editor",
		Name:      "undos_total",
		Help:      "Total undo replays",
	})

	RedosApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "editor",
		Name:      "redos_total",
		Help:      "Total redo replays",
	})

	ValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "editor",
		Name:      "validation_failures_total",
		Help:      "Total edit operations rejected by geometry validation",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geosketch",
		Subsystem: "editor",
		Name:      "active_sessions",
		Help:      "Currently open board editing sessions",
	})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "editor",
		Name:      "events_dropped_total",
		Help:      "Change events dropped because a session stream was full",
	})

	// Persister metrics
	ShapesPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "persister",
		Name:      "shapes_persisted_total",
		Help:      "Total shape change events written to the durable mirror",
	}, []string{"kind"})

	PersistErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "persister",
		Name:      "errors_total",
		Help:      "Total persistence failures",
	})

	BoardEventsSeen = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "persister",
		Name:      "board_events_total",
		Help:      "Board lifecycle events consumed from the event bus",
	}, []string{"kind"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geosketch",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosketch",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geosketch",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geosketch",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geosketch",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
// Takes an interface so this package stays decoupled from pgxpool.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
