package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry - коллекторы приложения
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	applicationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobboard",
			Subsystem: "applications",
			Name:      "transitions_total",
			Help:      "Application status changes by target status.",
		},
		[]string{"status"},
	)

	messagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jobboard",
			Subsystem: "chat",
			Name:      "messages_sent_total",
			Help:      "Messages appended to conversations.",
		},
	)

	messagesRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jobboard",
			Subsystem: "chat",
			Name:      "messages_read_total",
			Help:      "Messages flipped from unread to read.",
		},
	)

	activeSubscriptions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "jobboard",
			Subsystem: "realtime",
			Name:      "active_subscriptions",
			Help:      "Live subscriptions by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		applicationTransitions,
		messagesSent,
		messagesRead,
		activeSubscriptions,
	)
}

// Handler отдаёт /metrics
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware считает запросы по шаблону маршрута, а не по сырому пути
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordTransition(status string) {
	applicationTransitions.WithLabelValues(status).Inc()
}

func RecordMessageSent() {
	messagesSent.Inc()
}

func RecordMessageRead() {
	messagesRead.Inc()
}

// SubscriptionOpened / SubscriptionClosed: kind = "channel" | "unread" | "pending"
func SubscriptionOpened(kind string) {
	activeSubscriptions.WithLabelValues(kind).Inc()
}

func SubscriptionClosed(kind string) {
	activeSubscriptions.WithLabelValues(kind).Dec()
}
