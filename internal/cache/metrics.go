package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache metrics carry a "cache" label equal to ProviderConfig.Group.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "causelist_cache_hits_total",
			Help: "Total number of cache hits.",
		},
		[]string{"cache"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "causelist_cache_misses_total",
			Help: "Total number of cache misses.",
		},
		[]string{"cache"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "causelist_cache_evictions_total",
			Help: "Total number of entries evicted from the cache.",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal, EvictionsTotal)
}

// entriesGauge reports Len() of one cache group at scrape time.
type entriesGauge struct {
	desc    *prometheus.Desc
	lenFunc func() int
}

func (g *entriesGauge) Describe(ch chan<- *prometheus.Desc) { ch <- g.desc }

func (g *entriesGauge) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(g.desc, prometheus.GaugeValue, float64(g.lenFunc()))
}

var (
	gaugesMu sync.Mutex
	gauges   = make(map[string]*entriesGauge)
	// gaugeReg is swapped for an isolated registry in tests.
	gaugeReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesGauge installs the entries gauge for group, replacing any
// previous gauge registered under the same group.
func registerEntriesGauge(group string, lenFunc func() int) {
	g := &entriesGauge{
		desc: prometheus.NewDesc(
			"causelist_cache_entries",
			"Current number of entries in the cache.",
			nil,
			prometheus.Labels{"cache": group},
		),
		lenFunc: lenFunc,
	}

	gaugesMu.Lock()
	defer gaugesMu.Unlock()
	if old, ok := gauges[group]; ok {
		gaugeReg.Unregister(old)
	}
	gauges[group] = g
	_ = gaugeReg.Register(g)
}

func unregisterEntriesGauge(group string) {
	gaugesMu.Lock()
	defer gaugesMu.Unlock()
	if g, ok := gauges[group]; ok {
		gaugeReg.Unregister(g)
		delete(gauges, group)
	}
}
