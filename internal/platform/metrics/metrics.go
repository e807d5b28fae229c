// Package metrics exposes Prometheus instrumentation for the signaling
// relay.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector defines the interface for signaling metrics collection.
type Collector interface {
	SocketConnected()
	SocketDisconnected()

	JoinAccepted(role string)
	JoinRejected(code string)

	RelayForwarded(event string)
	RelayDropped(event string)

	RoomOpened()
	RoomClosed()

	// Handler returns an HTTP handler for the metrics endpoint.
	Handler() http.Handler
}

// PrometheusCollector implements Collector against a dedicated registry so
// tests can instantiate it repeatedly without duplicate-registration panics.
type PrometheusCollector struct {
	registry *prometheus.Registry

	activeSockets  prometheus.Gauge
	activeRooms    prometheus.Gauge
	joinsAccepted  *prometheus.CounterVec
	joinsRejected  *prometheus.CounterVec
	relayForwarded *prometheus.CounterVec
	relayDropped   *prometheus.CounterVec
}

// NewPrometheusCollector creates a collector backed by its own registry.
func NewPrometheusCollector() *PrometheusCollector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusCollector{
		registry: reg,

		activeSockets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_active_sockets",
			Help: "Number of authenticated signaling sockets currently connected",
		}),
		activeRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_active_rooms",
			Help: "Number of consultation rooms with at least one occupant",
		}),
		joinsAccepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_joins_accepted_total",
				Help: "Total number of accepted room joins",
			},
			[]string{"role"},
		),
		joinsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_joins_rejected_total",
				Help: "Total number of rejected room joins",
			},
			[]string{"code"},
		),
		relayForwarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_relay_forwarded_total",
				Help: "Total number of relayed signaling messages",
			},
			[]string{"event"},
		),
		relayDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_relay_dropped_total",
				Help: "Total number of malformed signaling messages dropped",
			},
			[]string{"event"},
		),
	}
}

func (c *PrometheusCollector) SocketConnected() { c.activeSockets.Inc() }
func (c *PrometheusCollector) SocketDisconnected() { c.activeSockets.Dec() }

func (c *PrometheusCollector) JoinAccepted(role string) {
	c.joinsAccepted.WithLabelValues(role).Inc()
}

func (c *PrometheusCollector) JoinRejected(code string) {
	c.joinsRejected.WithLabelValues(code).Inc()
}

func (c *PrometheusCollector) RelayForwarded(event string) {
	c.relayForwarded.WithLabelValues(event).Inc()
}

func (c *PrometheusCollector) RelayDropped(event string) {
	c.relayDropped.WithLabelValues(event).Inc()
}

func (c *PrometheusCollector) RoomOpened() { c.activeRooms.Inc() }
func (c *PrometheusCollector) RoomClosed() { c.activeRooms.Dec() }

// Handler returns an HTTP handler serving this collector's registry.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Nop is a Collector that records nothing, for tests and disabled setups.
type Nop struct{}

func (Nop) SocketConnected()      {}
func (Nop) SocketDisconnected()   {}
func (Nop) JoinAccepted(string)   {}
func (Nop) JoinRejected(string)   {}
func (Nop) RelayForwarded(string) {}
func (Nop) RelayDropped(string)   {}
func (Nop) RoomOpened()           {}
func (Nop) RoomClosed()           {}
func (Nop) Handler() http.Handler { return http.NotFoundHandler() }
