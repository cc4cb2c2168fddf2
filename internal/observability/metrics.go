package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "klink_http_requests_total",
			Help: "Total number of HTTP requests processed by the delivery backend.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "klink_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	translationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "klink_translations_total",
			Help: "Translation pipeline events by outcome.",
		},
		[]string{"outcome"},
	)
	pushDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "klink_push_deliveries_total",
			Help: "Per-token push delivery attempts by result.",
		},
		[]string{"result"},
	)
	assistantRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "klink_assistant_requests_total",
			Help: "Assistant proxy requests by outcome.",
		},
		[]string{"outcome"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "klink_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		translationsTotal,
		pushDeliveriesTotal,
		assistantRequestsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncTranslation(outcome string) {
	translationsTotal.WithLabelValues(outcome).Inc()
}

func IncPushDelivery(result string) {
	pushDeliveriesTotal.WithLabelValues(result).Inc()
}

func IncAssistantRequest(outcome string) {
	assistantRequestsTotal.WithLabelValues(outcome).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
