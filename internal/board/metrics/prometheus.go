// Package metrics exports board occupancy and command outcomes to Prometheus.
package metrics

import (
	"errors"

	e "github.com/gartstein/staffboard/internal/board/errors"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Assignment outcomes used as the result label.
const (
	ResultSuccess          = "success"
	ResultNoop             = "noop"
	ResultCapacityExceeded = "capacity_exceeded"
	ResultRoleIneligible   = "role_ineligible"
	ResultUnknownEmployee  = "unknown_employee"
	ResultUnknownZone      = "unknown_zone"
	ResultError            = "error"
)

// Result classifies an assignment outcome.
func Result(changed bool, err error) string {
	switch {
	case err == nil && changed:
		return ResultSuccess
	case err == nil:
		return ResultNoop
	case errors.Is(err, e.ErrCapacityExceeded):
		return ResultCapacityExceeded
	case errors.Is(err, e.ErrRoleIneligible):
		return ResultRoleIneligible
	case errors.Is(err, e.ErrUnknownEmployee):
		return ResultUnknownEmployee
	case errors.Is(err, e.ErrUnknownZone):
		return ResultUnknownZone
	default:
		return ResultError
	}
}

// Collector is a Prometheus-backed refresher and command recorder.
type Collector struct {
	occupancy      *prometheus.GaugeVec
	capacity       *prometheus.GaugeVec
	unassigned     prometheus.Gauge
	assignments    *prometheus.CounterVec
	reorganizeRuns prometheus.Counter
	unplaced       prometheus.Gauge
}

// NewPrometheus creates and registers the board metrics.
//
// reg defaults to prometheus.DefaultRegisterer and namespace to "staffboard".
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "staffboard"
	}

	c := &Collector{
		occupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "zone_occupancy",
			Help:      "Employees currently assigned to each zone.",
		}, []string{"zone"}),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "zone_capacity",
			Help:      "Configured capacity of each zone.",
		}, []string{"zone"}),
		unassigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unassigned_employees",
			Help:      "Employees in the unassigned pool.",
		}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Assignment attempts by result.",
		}, []string{"result"}),
		reorganizeRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reorganize_runs_total",
			Help:      "Completed auto-reorganize passes.",
		}),
		unplaced: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reorganize_unplaced_employees",
			Help:      "Employees left unassigned by the last auto-reorganize pass.",
		}),
	}

	var err error
	if c.occupancy, err = register(reg, c.occupancy); err != nil {
		return nil, err
	}
	if c.capacity, err = register(reg, c.capacity); err != nil {
		return nil, err
	}
	if c.unassigned, err = register(reg, c.unassigned); err != nil {
		return nil, err
	}
	if c.assignments, err = register(reg, c.assignments); err != nil {
		return nil, err
	}
	if c.reorganizeRuns, err = register(reg, c.reorganizeRuns); err != nil {
		return nil, err
	}
	if c.unplaced, err = register(reg, c.unplaced); err != nil {
		return nil, err
	}
	return c, nil
}

// register adds col to reg, reusing an identical collector registered earlier.
func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return col, nil
}

// Refresh updates the gauges of the changed views.
func (c *Collector) Refresh(states []models.ViewState) {
	for _, s := range states {
		if s.View == models.UnassignedView {
			c.unassigned.Set(float64(len(s.Members)))
			continue
		}
		c.occupancy.WithLabelValues(string(s.View)).Set(float64(len(s.Members)))
		c.capacity.WithLabelValues(string(s.View)).Set(float64(s.Capacity))
	}
}

// ObserveAssignment counts one assignment attempt by outcome.
func (c *Collector) ObserveAssignment(changed bool, err error) {
	c.assignments.WithLabelValues(Result(changed, err)).Inc()
}

// ObserveReorganize records a finished pass.
func (c *Collector) ObserveReorganize(report models.ReorganizeReport) {
	c.reorganizeRuns.Inc()
	c.unplaced.Set(float64(len(report.Unplaced)))
}
