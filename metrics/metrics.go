// Package metrics exposes Prometheus collectors for the HTTP API, the live
// room feed and the betting domain.
package metrics

import (
	"context"
	"strconv"
	"time"

	"gridiron/events"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridiron_ws_connections",
		Help: "Current number of live room feed connections",
	})

	QuestionsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridiron_questions_created_total",
		Help: "Questions made available for betting",
	}, []string{"type", "fallback"})
	QuestionsResolved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gridiron_questions_resolved_total",
		Help: "Questions resolved with all their bets settled",
	})
	BetsPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gridiron_bets_placed_total",
		Help: "Bets accepted",
	})
	TokensWagered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gridiron_tokens_wagered_total",
		Help: "Tokens staked on accepted bets",
	})
	TokensPaidOut = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gridiron_tokens_paid_out_total",
		Help: "Tokens credited to winning bettors",
	})
	TokensCollected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gridiron_tokens_collected_total",
		Help: "Tokens debited from losing bettors",
	})
	TimersRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridiron_room_timers_running",
		Help: "Room question timers currently running on this instance",
	})
	TimerStops = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridiron_room_timer_stops_total",
		Help: "Room question timers that stopped, by reason",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		WsConnections,
		QuestionsCreated,
		QuestionsResolved,
		BetsPlaced,
		TokensWagered,
		TokensPaidOut,
		TokensCollected,
		TimersRunning,
		TimerStops,
	)
}

// GinMiddleware records request counts and latency per route
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HTTPRequestsTotal.With(labels).Inc()
		HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}

// Subscriber is the part of the event bus the collectors listen on
type Subscriber interface {
	Subscribe(eventType events.EventType, handler events.Handler)
}

// SubscribeToBus keeps the domain collectors current from committed events
func SubscribeToBus(bus Subscriber) {
	bus.Subscribe(events.EventTypeQuestionCreated, func(_ context.Context, e events.Event) {
		if created, ok := e.(events.QuestionCreatedEvent); ok {
			QuestionsCreated.WithLabelValues(string(created.Kind), strconv.FormatBool(created.Fallback)).Inc()
		}
	})
	bus.Subscribe(events.EventTypeBetPlaced, func(_ context.Context, e events.Event) {
		if placed, ok := e.(events.BetPlacedEvent); ok {
			BetsPlaced.Inc()
			TokensWagered.Add(float64(placed.Amount))
		}
	})
	bus.Subscribe(events.EventTypeQuestionResolved, func(_ context.Context, e events.Event) {
		if resolved, ok := e.(events.QuestionResolvedEvent); ok {
			QuestionsResolved.Inc()
			TokensPaidOut.Add(float64(resolved.TotalPaidOut))
			TokensCollected.Add(float64(resolved.TotalCollected))
		}
	})
	bus.Subscribe(events.EventTypeTimerStateChange, func(_ context.Context, e events.Event) {
		changed, ok := e.(events.TimerStateChangeEvent)
		if !ok {
			return
		}
		if changed.Running {
			TimersRunning.Inc()
			return
		}
		TimersRunning.Dec()
		TimerStops.WithLabelValues(changed.Reason).Inc()
	})
}
