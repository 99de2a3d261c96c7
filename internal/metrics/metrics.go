package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder observes sheet recalculation activity
type Recorder interface {
	// PassCompleted is called once per settled recalculation with the number
	// of coalesced iterations it took
	PassCompleted(iterations int)
	// ChangesEmitted is called with the number of change notifications sent
	ChangesEmitted(n int)
}

// Nop discards everything
type Nop struct{}

func (Nop) PassCompleted(int)  {}
func (Nop) ChangesEmitted(int) {}

// Prometheus records sheet activity as prometheus metrics
type Prometheus struct {
	recalculations prometheus.Counter
	iterations     prometheus.Histogram
	changes        prometheus.Counter
}

// NewPrometheus registers the sheet collectors on reg. A nil reg uses the
// default registerer.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Prometheus{
		recalculations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sheet",
			Name:      "recalculations_total",
			Help:      "Total settled sheet recalculation passes",
		}),
		iterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sheet",
			Name:      "recalculation_iterations",
			Help:      "Iterations needed for a recalculation to settle",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		changes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sheet",
			Name:      "change_notifications_total",
			Help:      "Total change notifications emitted to listeners",
		}),
	}
}

func (p *Prometheus) PassCompleted(iterations int) {
	p.recalculations.Inc()
	p.iterations.Observe(float64(iterations))
}

func (p *Prometheus) ChangesEmitted(n int) {
	p.changes.Add(float64(n))
}
