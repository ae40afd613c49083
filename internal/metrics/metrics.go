// Package metrics collects and exposes Prometheus metrics for the realtime
// layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records realtime-layer activity. The hub increments these from
// its dispatch loop.
type Collector struct {
	openConnections prometheus.Gauge
	onlineUsers     prometheus.Gauge
	messagesRelayed prometheus.Counter
	sendFailures    *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	readReceipts    prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		openConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mindcare_open_connections",
			Help: "Number of open realtime connections.",
		}),
		onlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mindcare_online_users",
			Help: "Number of distinct users with at least one open connection.",
		}),
		messagesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindcare_messages_relayed_total",
			Help: "Total chat messages persisted and broadcast.",
		}),
		sendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcare_send_failures_total",
			Help: "Total rejected sends by failure kind.",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcare_notifications_dispatched_total",
			Help: "Total notifications fanned out by scope.",
		}, []string{"scope"}),
		readReceipts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindcare_read_receipts_total",
			Help: "Total mark-read operations processed.",
		}),
	}

	reg.MustRegister(
		c.openConnections,
		c.onlineUsers,
		c.messagesRelayed,
		c.sendFailures,
		c.notifications,
		c.readReceipts,
	)

	return c
}

func (c *Collector) ConnectionOpened() { c.openConnections.Inc() }
func (c *Collector) ConnectionClosed() { c.openConnections.Dec() }
func (c *Collector) UserOnline()       { c.onlineUsers.Inc() }
func (c *Collector) UserOffline()      { c.onlineUsers.Dec() }
func (c *Collector) MessageRelayed()   { c.messagesRelayed.Inc() }
func (c *Collector) ReadReceipt()      { c.readReceipts.Inc() }
func (c *Collector) SendFailed(kind string) {
	c.sendFailures.WithLabelValues(kind).Inc()
}
func (c *Collector) NotificationDispatched(scope string) {
	c.notifications.WithLabelValues(scope).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
