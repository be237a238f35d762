// Package engine implements the background cascading recomputation
// engine: on a fixed tick it snapshots the cell store, builds the
// dependency graph, and walks it in topological order, committing each
// result with cellstore's optimistic compare-and-commit so a concurrent
// client SET always wins over a stale computed value. Every cell in one
// sweep reads the same frozen snapshot, so a chain of N dependent
// formulas needs N sweeps to fully settle, not one.
package engine

import (
	"context"
	"sync"
	"time"

	"sheetsrv/cellid"
	"sheetsrv/cellstore"
	"sheetsrv/cellvalue"
	"sheetsrv/depgraph"
	"sheetsrv/env"
	"sheetsrv/formula"
)

// DefaultInterval is the sweep period used when no interval is
// configured, matching the tick rate of the worker this engine is
// descended from.
const DefaultInterval = 50 * time.Millisecond

// Recorder receives sweep-level observations. Implementations wrap a
// metrics backend; the zero value of *Engine works with a nil Recorder
// by skipping every call.
type Recorder interface {
	SweepStarted()
	CellCommitted()
	CellCycleSkipped()
}

// Engine owns the ticking loop. It holds no cell data of its own; all
// state lives in the Store it is constructed with.
type Engine struct {
	store    *cellstore.Store
	interval time.Duration
	recorder Recorder

	mu      sync.Mutex
	sweeps  uint64
	running bool
}

// New creates an Engine over store. interval <= 0 selects DefaultInterval.
// A nil recorder is valid and simply means no metrics are recorded.
func New(store *cellstore.Store, interval time.Duration, recorder Recorder) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{store: store, interval: interval, recorder: recorder}
}

// Run ticks until ctx is cancelled. It is intended to be launched as a
// single long-lived goroutine (the caller typically joins it through an
// errgroup).
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Sweep()
		}
	}
}

// Sweeps reports how many sweeps have completed so far.
func (e *Engine) Sweeps() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sweeps
}

// Sweep performs exactly one recomputation pass: snapshot, build the
// dependency graph, and cascade updates through it in topological order.
// It is safe to call directly (tests call it synchronously instead of
// waiting on the ticker).
func (e *Engine) Sweep() {
	e.record(func(r Recorder) { r.SweepStarted() })

	snapshot := e.store.Snapshot()
	graph := depgraph.Build(snapshot)
	order, cyclic := topologicalOrder(snapshot, graph)

	for _, id := range order {
		e.recompute(snapshot, id)
	}
	for _, id := range cyclic {
		e.markCyclic(snapshot, id)
	}

	e.mu.Lock()
	e.sweeps++
	e.mu.Unlock()
}

// recompute evaluates the formula cell id against the frozen snapshot and
// commits the result if the cell hasn't been written since the snapshot
// was taken and the new value actually differs from the current one.
func (e *Engine) recompute(snapshot cellstore.Snapshot, id cellid.CellIdentifier) {
	data, ok := snapshot.CellData(id)
	if !ok || !data.HasFormula {
		return
	}

	names := formula.FreeVariables(data.Formula)
	environment, _ := env.Build(snapshot, names)

	newValue, err := formula.Eval(data.Formula, environment)
	if err != nil {
		if err == formula.ErrDependsOnError {
			newValue = cellvalue.Error("Cell depends on an error")
		} else {
			newValue = cellvalue.Error("Error evaluating expression")
		}
	}

	if e.store.CompareAndCommit(id, data.Version, newValue) {
		e.record(func(r Recorder) { r.CellCommitted() })
	}
}

// markCyclic commits Error("Cyclic dependency") to every cell the
// topological sweep could not reach, instead of silently leaving its
// previous value in place.
func (e *Engine) markCyclic(snapshot cellstore.Snapshot, id cellid.CellIdentifier) {
	data, ok := snapshot.CellData(id)
	if !ok {
		return
	}
	cyclicErr := cellvalue.Error("Cyclic dependency")
	if data.Value.Equal(cyclicErr) {
		return
	}
	if e.store.CompareAndCommit(id, data.Version, cyclicErr) {
		e.record(func(r Recorder) { r.CellCycleSkipped() })
	}
}

func (e *Engine) record(f func(Recorder)) {
	if e.recorder != nil {
		f(e.recorder)
	}
}

// topologicalOrder runs Kahn's algorithm over graph, seeded with every
// formula cell in snapshot (including ones with no recorded dependency
// edges, which settle on the very first pass). It returns the cells in
// an order safe to recompute left-to-right, plus the subset that never
// reached in-degree zero because they sit on a dependency cycle.
func topologicalOrder(snapshot cellstore.Snapshot, graph depgraph.Graph) (order, cyclic []cellid.CellIdentifier) {
	indegree := graph.InDegree()
	for _, id := range depgraph.Nodes(snapshot) {
		if _, ok := indegree[id]; !ok {
			indegree[id] = 0
		}
	}

	var queue []cellid.CellIdentifier
	for id, deg := range indegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	visited := make(map[cellid.CellIdentifier]bool, len(indegree))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		if data, ok := snapshot.CellData(id); ok && data.HasFormula {
			order = append(order, id)
		}
		for _, dependent := range graph[id] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	for id, data := range snapshot {
		if data.HasFormula && !visited[id] {
			cyclic = append(cyclic, id)
		}
	}
	return order, cyclic
}
