package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services report to.
type Recorder interface {
	RecordAuth(event, outcome string)
	RecordEquipmentMutation(op string)
	RecordPublishFailure(topic string)
}

type Collector struct {
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	authEvents        *prometheus.CounterVec
	equipmentMutation *prometheus.CounterVec
	publishFailures   *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventory_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_auth_events_total",
			Help: "Register and login attempts by outcome.",
		}, []string{"event", "outcome"}),
		equipmentMutation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_equipment_mutations_total",
			Help: "Successful equipment create, update and delete operations.",
		}, []string{"op"}),
		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_event_publish_failures_total",
			Help: "Domain events that could not be published.",
		}, []string{"topic"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.authEvents,
		c.equipmentMutation,
		c.publishFailures,
	)
	return c
}

func (c *Collector) RecordAuth(event, outcome string) {
	c.authEvents.WithLabelValues(event, outcome).Inc()
}

func (c *Collector) RecordEquipmentMutation(op string) {
	c.equipmentMutation.WithLabelValues(op).Inc()
}

func (c *Collector) RecordPublishFailure(topic string) {
	c.publishFailures.WithLabelValues(topic).Inc()
}

func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			status := ctx.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			method := ctx.Request().Method
			c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordAuth(string, string)      {}
func (Nop) RecordEquipmentMutation(string) {}
func (Nop) RecordPublishFailure(string)    {}
