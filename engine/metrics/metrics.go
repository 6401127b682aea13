package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Resolutions   *prometheus.CounterVec
	ProfileEvents *prometheus.CounterVec
	Renders       prometheus.Counter
}

// New registers the pfp collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pfp",
			Name:      "resolutions_total",
			Help:      "Profile picture resolutions by source and policy.",
		}, []string{"source", "policy"}),
		ProfileEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pfp",
			Name:      "relay_events_total",
			Help:      "Kind 0 and kind 3 events received from relays by outcome.",
		}, []string{"kind", "outcome"}),
		Renders: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pfp",
			Name:      "rerenders_total",
			Help:      "Profile pictures re-rendered after a profile update.",
		}),
	}
}
