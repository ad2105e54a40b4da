package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores del workflow de adopción.
// Se registran en un registry propio (no el global) para poder
// instanciar varios en tests sin colisiones.
type Metrics struct {
	registry *prometheus.Registry

	Transitions *prometheus.CounterVec
	Denials     *prometheus.CounterVec
	Conflicts   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adoption_transitions_total",
			Help: "Transiciones de estado commiteadas, por entidad y estado destino.",
		}, []string{"entity", "to"}),
		Denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adoption_denials_total",
			Help: "Acciones negadas por política, por reason code.",
		}, []string{"reason"}),
		Conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adoption_conflicts_total",
			Help: "Transiciones rechazadas por guard de estado (perdedores de carrera incluidos).",
		}, []string{"entity"}),
	}

	reg.MustRegister(m.Transitions, m.Denials, m.Conflicts)
	return m
}

// Handler expone el registry en formato prometheus (para /metrics).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Transition registra una transición commiteada. nil-safe para
// servicios instanciados sin métricas (tests).
func (m *Metrics) Transition(entity, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(entity, to).Inc()
}

func (m *Metrics) Denial(reason string) {
	if m == nil {
		return
	}
	m.Denials.WithLabelValues(reason).Inc()
}

func (m *Metrics) Conflict(entity string) {
	if m == nil {
		return
	}
	m.Conflicts.WithLabelValues(entity).Inc()
}
