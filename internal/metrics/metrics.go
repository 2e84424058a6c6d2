// Package metrics holds the app's prometheus counters on a private registry.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "todogroups"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder groups the counters. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	Reseeds        prometheus.Counter
	Saves          *prometheus.CounterVec
	RemoteRequests *prometheus.CounterVec
	Commands       *prometheus.CounterVec
}

// New registers every counter on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Reseeds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "reseeds_total",
			Help:      "Persisted documents discarded as corrupt and replaced by the seed.",
		}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "saves_total",
			Help:      "Store saves by result.",
		}, []string{"result"}),
		RemoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Requests to the placeholder API by endpoint and result.",
		}, []string{"endpoint", "result"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Dispatched commands by name and result.",
		}, []string{"name", "result"}),
	}
	r.registry.MustRegister(r.Reseeds, r.Saves, r.RemoteRequests, r.Commands)
	return r
}

// Registry exposes the underlying registry, e.g. for promhttp or tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) Reseed() {
	if r == nil {
		return
	}
	r.Reseeds.Inc()
}

func (r *Recorder) Save(err error) {
	if r == nil {
		return
	}
	r.Saves.WithLabelValues(result(err)).Inc()
}

func (r *Recorder) Remote(endpoint string, ok bool) {
	if r == nil {
		return
	}
	res := ResultOK
	if !ok {
		res = ResultError
	}
	r.RemoteRequests.WithLabelValues(endpoint, res).Inc()
}

func (r *Recorder) Command(name string, err error) {
	if r == nil {
		return
	}
	r.Commands.WithLabelValues(name, result(err)).Inc()
}

// Lines renders every non-zero sample as "name{labels} value", sorted.
func (r *Recorder) Lines() ([]string, error) {
	if r == nil {
		return nil, nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather: %w", err)
	}
	var out []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue()
			if v == 0 {
				continue
			}
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			out = append(out, fmt.Sprintf("%s %g", name, v))
		}
	}
	sort.Strings(out)
	return out, nil
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
