package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records bot and interaction counters. Implementations must be safe for concurrent use.
type Collector interface {
	CommandHandled(name string)
	CommandFailed(name string)
	InteractionLatency(kind string, d time.Duration)
	DiscordCallFailed(op string)
	RegistrationChanged(kind string)
}

// Prometheus is a Collector backed by its own registry.
type Prometheus struct {
	registry      *prometheus.Registry
	commands      *prometheus.CounterVec
	failures      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	discordErrors *prometheus.CounterVec
	registrations *prometheus.CounterVec
}

func NewPrometheus(namespace string) *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Interactions handled, by command or custom id prefix.",
		}, []string{"name"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "Interactions that ended in an error reply.",
		}, []string{"name"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interaction_duration_seconds",
			Help:      "Time until the interaction was acknowledged.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 3},
		}, []string{"kind"}),
		discordErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discord_call_errors_total",
			Help:      "Failed Discord REST calls, by operation.",
		}, []string{"op"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Event registrations and cancellations.",
		}, []string{"kind"}),
	}
	p.registry.MustRegister(
		p.commands, p.failures, p.latency, p.discordErrors, p.registrations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) CommandHandled(name string) { p.commands.WithLabelValues(name).Inc() }
func (p *Prometheus) CommandFailed(name string)  { p.failures.WithLabelValues(name).Inc() }
func (p *Prometheus) DiscordCallFailed(op string) {
	p.discordErrors.WithLabelValues(op).Inc()
}
func (p *Prometheus) RegistrationChanged(kind string) {
	p.registrations.WithLabelValues(kind).Inc()
}

func (p *Prometheus) InteractionLatency(kind string, d time.Duration) {
	p.latency.WithLabelValues(kind).Observe(d.Seconds())
}

// Registry exposes the underlying registry for tests and extra collectors.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// NoOp discards everything.
type NoOp struct{}

func (NoOp) CommandHandled(string)                    {}
func (NoOp) CommandFailed(string)                     {}
func (NoOp) InteractionLatency(string, time.Duration) {}
func (NoOp) DiscordCallFailed(string)                 {}
func (NoOp) RegistrationChanged(string)               {}
