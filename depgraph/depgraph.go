// Package depgraph builds the cell dependency graph the recomputation
// engine sweeps each tick: a mapping from a dependency cell to every cell
// whose formula references it.
package depgraph

import (
	"sheetsrv/cellid"
	"sheetsrv/cellstore"
	"sheetsrv/formula"
)

// Graph maps a dependency cell identifier to the cells that depend on it.
// Each (dependency, dependent) pair appears at most once: a cell that
// mentions the same dependency twice is listed once in that dependency's
// list, and the in-degree computation below counts it once.
type Graph map[cellid.CellIdentifier][]cellid.CellIdentifier

// Build walks every formula cell in the snapshot and records one edge per
// free-variable occurrence: scalar references add a single edge, range
// references add one edge per cell the range covers. Duplicate edges
// arising from a formula referencing the same cell more than once are
// collapsed to a single edge here, per the simplification spec.md permits
// for dependency bookkeeping.
func Build(snapshot cellstore.Snapshot) Graph {
	graph := make(Graph)
	seen := make(map[[2]cellid.CellIdentifier]bool)

	addEdge := func(dep, dependent cellid.CellIdentifier) {
		key := [2]cellid.CellIdentifier{dep, dependent}
		if seen[key] {
			return
		}
		seen[key] = true
		graph[dep] = append(graph[dep], dependent)
	}

	for id, data := range snapshot {
		if !data.HasFormula {
			continue
		}
		for _, name := range formula.FreeVariables(data.Formula) {
			if scalar, err := cellid.ParseScalar(name); err == nil {
				addEdge(scalar, id)
				continue
			}
			if rng, err := cellid.ParseRange(name); err == nil {
				for _, dep := range rng.Cells() {
					addEdge(dep, id)
				}
			}
		}
	}
	return graph
}

// InDegree computes, for every node appearing anywhere in graph (as a
// dependency or a dependent), how many distinct dependency edges point at
// it. Formula cells that have no dependencies of their own are not nodes
// of graph unless something depends on them in turn, so callers seed
// those separately (see Nodes).
func (g Graph) InDegree() map[cellid.CellIdentifier]int {
	indegree := make(map[cellid.CellIdentifier]int)
	for dep, dependents := range g {
		if _, ok := indegree[dep]; !ok {
			indegree[dep] = 0
		}
		for _, d := range dependents {
			indegree[d]++
		}
	}
	return indegree
}

// Nodes returns every formula cell in snapshot, whether or not it has any
// recorded dependency edges: the recomputation sweep needs every formula
// cell to start somewhere, including ones with zero dependencies (which
// should recompute immediately, every tick) and ones that depend only on
// cells with no formula of their own.
func Nodes(snapshot cellstore.Snapshot) []cellid.CellIdentifier {
	var nodes []cellid.CellIdentifier
	for id, data := range snapshot {
		if data.HasFormula {
			nodes = append(nodes, id)
		}
	}
	return nodes
}
