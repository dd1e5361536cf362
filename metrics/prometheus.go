package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider implements Provider by registering a real Prometheus
// instrument the first time each name is requested, then reusing it. Unlike
// BasicProvider it is meant for production deployments: pair it with an
// http.Handler built from promhttp.HandlerFor(p.Registry(), ...) to expose
// /metrics.
type PrometheusProvider struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	updowns    map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// NewPrometheusProvider wraps reg, or a fresh prometheus.NewRegistry() if reg
// is nil.
func NewPrometheusProvider(reg *prometheus.Registry) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &PrometheusProvider{
		registry:   reg,
		counters:   make(map[string]prometheus.Counter),
		updowns:    make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// Registry returns the underlying prometheus.Registry, for wiring into an
// HTTP handler.
func (p *PrometheusProvider) Registry() *prometheus.Registry { return p.registry }

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.counters[name]; ok {
		return promCounter{c}
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        name,
		Help:        help(cfg, name),
		ConstLabels: labels(cfg),
	})
	p.registry.MustRegister(c)
	p.counters[name] = c
	return promCounter{c}
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.updowns[name]; ok {
		return promUpDownCounter{g}
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        name,
		Help:        help(cfg, name),
		ConstLabels: labels(cfg),
	})
	p.registry.MustRegister(g)
	p.updowns[name] = g
	return promUpDownCounter{g}
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.histograms[name]; ok {
		return promHistogram{h}
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        name,
		Help:        help(cfg, name),
		ConstLabels: labels(cfg),
		Buckets:     prometheus.DefBuckets,
	})
	p.registry.MustRegister(h)
	p.histograms[name] = h
	return promHistogram{h}
}

func help(cfg InstrumentConfig, name string) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return name
}

func labels(cfg InstrumentConfig) prometheus.Labels {
	if len(cfg.Attributes) == 0 {
		return nil
	}
	out := make(prometheus.Labels, len(cfg.Attributes))
	for k, v := range cfg.Attributes {
		out[k] = v
	}
	return out
}

type promCounter struct{ c prometheus.Counter }

func (p promCounter) Add(n int64) { p.c.Add(float64(n)) }

type promUpDownCounter struct{ g prometheus.Gauge }

func (p promUpDownCounter) Add(n int64) { p.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (p promHistogram) Record(v float64) { p.h.Observe(v) }
