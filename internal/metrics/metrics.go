// Package metrics exposes auth and guard counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the auth layer reports to.
type Recorder interface {
	AuthEvent(eventType string)
	GuardVerdict(verdict string)
	SignIn(method, result string)
	ProfileProvisioned()
	ActiveVisitors(n int)
}

type Collector struct {
	authEvents     *prometheus.CounterVec
	guardVerdicts  *prometheus.CounterVec
	signIns        *prometheus.CounterVec
	provisioned    prometheus.Counter
	activeVisitors prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_auth_events_total",
			Help: "Auth state changes applied to visitor sessions, by event type.",
		}, []string{"type"}),
		guardVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_guard_verdicts_total",
			Help: "Route guard outcomes.",
		}, []string{"verdict"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_sign_ins_total",
			Help: "Sign-in attempts by method and result.",
		}, []string{"method", "result"}),
		provisioned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_profiles_provisioned_total",
			Help: "Guest profiles created on first sign-in.",
		}),
		activeVisitors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_active_visitors",
			Help: "Visitor sessions currently held in memory.",
		}),
	}

	reg.MustRegister(c.authEvents, c.guardVerdicts, c.signIns, c.provisioned, c.activeVisitors)
	return c
}

func (c *Collector) AuthEvent(eventType string) {
	c.authEvents.WithLabelValues(eventType).Inc()
}

func (c *Collector) GuardVerdict(verdict string) {
	c.guardVerdicts.WithLabelValues(verdict).Inc()
}

func (c *Collector) SignIn(method, result string) {
	c.signIns.WithLabelValues(method, result).Inc()
}

func (c *Collector) ProfileProvisioned() {
	c.provisioned.Inc()
}

func (c *Collector) ActiveVisitors(n int) {
	c.activeVisitors.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) AuthEvent(string)      {}
func (Nop) GuardVerdict(string)   {}
func (Nop) SignIn(string, string) {}
func (Nop) ProfileProvisioned()   {}
func (Nop) ActiveVisitors(int)    {}
