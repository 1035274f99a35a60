package extensibility

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/occupancyx/internal/primitives"
)

// PrometheusObserver records transition counts and warning counts as
// Prometheus metrics. It does not log; compose it with a ZerologObserver via
// MultiObserver when a host wants both.
type PrometheusObserver struct {
	transitions     *prometheus.CounterVec
	unknownLocation prometheus.Counter
	restoreWarnings *prometheus.CounterVec
}

// NewPrometheusObserver registers its metrics against reg and returns the
// observer. reg may be prometheus.DefaultRegisterer.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	o := &PrometheusObserver{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "occupancyx",
			Name:      "transitions_total",
			Help:      "Total transitions emitted by the engine, by location and kind.",
		}, []string{"location_id", "kind"}),
		unknownLocation: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "occupancyx",
			Name:      "unknown_location_events_total",
			Help:      "Total events targeting a location absent from the configured hierarchy.",
		}),
		restoreWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "occupancyx",
			Name:      "restore_warnings_total",
			Help:      "Total restore warnings emitted, by location and field.",
		}, []string{"location_id", "field"}),
	}
	reg.MustRegister(o.transitions, o.unknownLocation, o.restoreWarnings)
	return o
}

func (o *PrometheusObserver) OnTransition(tr primitives.Transition) {
	o.transitions.WithLabelValues(tr.LocationID, string(tr.Kind)).Inc()
}

func (o *PrometheusObserver) OnUnknownLocation(string) {
	o.unknownLocation.Inc()
}

func (o *PrometheusObserver) OnRestoreWarning(w primitives.RestoreWarning) {
	o.restoreWarnings.WithLabelValues(w.LocationID, w.Field).Inc()
}

// MultiObserver fans out to every observer in order.
type MultiObserver []TransitionObserver

func (m MultiObserver) OnTransition(tr primitives.Transition) {
	for _, o := range m {
		o.OnTransition(tr)
	}
}

func (m MultiObserver) OnUnknownLocation(locationID string) {
	for _, o := range m {
		o.OnUnknownLocation(locationID)
	}
}

func (m MultiObserver) OnRestoreWarning(w primitives.RestoreWarning) {
	for _, o := range m {
		o.OnRestoreWarning(w)
	}
}
