// Package metrics exposes the recomputation engine's activity as
// Prometheus gauges/counters via github.com/prometheus/client_golang,
// and the cell store's size as a gauge sampled on demand.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sheetsrv/cellstore"
)

// Engine implements engine.Recorder (accepted structurally, not by
// import, to keep this package free of a dependency on the engine
// package's internals).
type Engine struct {
	sweeps        prometheus.Counter
	commits       prometheus.Counter
	cyclesSkipped prometheus.Counter
}

// NewEngine registers the engine's counters against reg and returns a
// Recorder ready to hand to engine.New.
func NewEngine(reg prometheus.Registerer) *Engine {
	e := &Engine{
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheetsrv_engine_sweeps_total",
			Help: "Number of recomputation sweeps started.",
		}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheetsrv_engine_commits_total",
			Help: "Number of cell values committed by the recomputation engine.",
		}),
		cyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheetsrv_engine_cycles_skipped_total",
			Help: "Number of cells marked with a cyclic-dependency error.",
		}),
	}
	reg.MustRegister(e.sweeps, e.commits, e.cyclesSkipped)
	return e
}

func (e *Engine) SweepStarted()     { e.sweeps.Inc() }
func (e *Engine) CellCommitted()    { e.commits.Inc() }
func (e *Engine) CellCycleSkipped() { e.cyclesSkipped.Inc() }

// StoreSize registers a gauge that reports the number of cells the store
// has ever held, sampled each time Prometheus scrapes it.
func StoreSize(reg prometheus.Registerer, store *cellstore.Store) {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sheetsrv_store_version",
		Help: "Number of cells ever written to the store.",
	}, func() float64 { return float64(store.Len()) })
	reg.MustRegister(gauge)
}
