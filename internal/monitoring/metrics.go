// Package monitoring exposes prometheus metrics and a status snapshot for
// the ordering service.
package monitoring

import (
	"net/http"

	"pandapos/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Voice command outcomes
const (
	OutcomeHandled      = "handled"
	OutcomeNotFound     = "item_not_found"
	OutcomeUnrecognized = "unrecognized"
	OutcomeRejected     = "rejected"
)

// Collector handles metrics collection and reporting
type Collector struct {
	registry *prometheus.Registry

	orders         *prometheus.CounterVec
	orderTotals    prometheus.Histogram
	voiceCommands  *prometheus.CounterVec
	promoEmails    prometheus.Counter
	activeSessions prometheus.Gauge
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pandapos_orders_total",
				Help: "Orders placed, by source",
			},
			[]string{"source"},
		),
		orderTotals: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pandapos_order_total_dollars",
				Help:    "Order totals including tax",
				Buckets: prometheus.LinearBuckets(5, 5, 10),
			},
		),
		voiceCommands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pandapos_voice_commands_total",
				Help: "Voice transcripts interpreted, by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		promoEmails: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pandapos_promo_emails_total",
				Help: "Promotional emails sent",
			},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pandapos_active_sessions",
				Help: "Open ordering sessions",
			},
		),
	}

	registry.MustRegister(c.orders, c.orderTotals, c.voiceCommands, c.promoEmails, c.activeSessions)
	return c
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveOrder records a placed order
func (c *Collector) ObserveOrder(order *models.Order) {
	c.orders.WithLabelValues(string(order.Source)).Inc()
	c.orderTotals.Observe(order.Total)
}

// ObserveVoiceCommand records one interpreted transcript
func (c *Collector) ObserveVoiceCommand(action, outcome string) {
	if action == "" {
		action = "none"
	}
	c.voiceCommands.WithLabelValues(action, outcome).Inc()
}

// AddPromoEmails counts sent promotional emails
func (c *Collector) AddPromoEmails(n int) {
	c.promoEmails.Add(float64(n))
}

// SetActiveSessions reports the number of open ordering sessions
func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}
