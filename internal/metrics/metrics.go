// Package metrics exposes prometheus counters for the portal's hot paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type Metrics struct {
	UsageEventsIngested prometheus.Counter
	AlertsFired         *prometheus.CounterVec
	OrdersCreated       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UsageEventsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_usage_events_ingested_total",
			Help: "Usage events accepted by the ingest endpoint.",
		}),
		AlertsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_alerts_fired_total",
			Help: "Threshold alerts fired, by metric.",
		}, []string{"metric"}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_orders_created_total",
			Help: "Orders created, by type.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.UsageEventsIngested, m.AlertsFired, m.OrdersCreated)
	return m
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	return reg
}

func provideRegisterer(reg *prometheus.Registry) prometheus.Registerer { return reg }

func provideGatherer(reg *prometheus.Registry) prometheus.Gatherer { return reg }

// Module provides the prometheus registry and the portal counters.
var Module = fx.Module("metrics",
	fx.Provide(newRegistry),
	fx.Provide(provideRegisterer),
	fx.Provide(provideGatherer),
	fx.Provide(New),
)
