// Package env builds the evaluation Environment a formula is run against:
// for every free variable a formula references, it resolves that variable's
// current value (and, for the recomputation engine, the highest version
// number backing it) out of a cell store snapshot.
package env

import (
	"sheetsrv/cellid"
	"sheetsrv/cellstore"
	"sheetsrv/cellvalue"
)

// Build resolves each name in names against snapshot and returns the
// resulting Environment together with, for every name, the version of the
// cell data that contributed it (the maximum version across a range).
// Names that don't parse as a valid scalar or range reference are simply
// omitted: the formula evaluator then sees an unbound variable and treats
// it as cellvalue.None, matching spec.md's "reference to an empty/unset
// cell evaluates to None" rule.
func Build(snapshot cellstore.Snapshot, names []string) (cellvalue.Environment, map[string]uint64) {
	environment := make(cellvalue.Environment, len(names))
	versions := make(map[string]uint64, len(names))

	for _, name := range names {
		if _, ok := environment[name]; ok {
			continue // already resolved this occurrence
		}
		if id, err := cellid.ParseScalar(name); err == nil {
			value, version := lookup(snapshot, id)
			environment[name] = cellvalue.ScalarArg(value)
			versions[name] = version
			continue
		}
		if rng, err := cellid.ParseRange(name); err == nil {
			arg, version := collectRange(snapshot, rng)
			environment[name] = arg
			versions[name] = version
		}
	}
	return environment, versions
}

func lookup(snapshot cellstore.Snapshot, id cellid.CellIdentifier) (cellvalue.Value, uint64) {
	data, ok := snapshot.CellData(id)
	if !ok {
		return cellvalue.None, 0
	}
	return data.Value, data.Version
}

// collectRange gathers every cell in rng into the argument shape
// appropriate to its Shape: a one-row or one-column range becomes a
// Vector, anything wider becomes a Matrix. It also tracks the maximum
// version among the cells it reads, which the recomputation engine uses
// to decide whether a dependency changed since the last sweep started.
func collectRange(snapshot cellstore.Snapshot, rng cellid.Range) (cellvalue.Argument, uint64) {
	switch rng.Shape() {
	case cellid.Rectangular:
		var matrix [][]cellvalue.Value
		var maxVer uint64
		for row := rng.Start.Row; row <= rng.End.Row; row++ {
			var line []cellvalue.Value
			for col := rng.Start.Col; col <= rng.End.Col; col++ {
				v, ver := lookup(snapshot, cellid.CellIdentifier{Col: col, Row: row})
				line = append(line, v)
				if ver > maxVer {
					maxVer = ver
				}
			}
			matrix = append(matrix, line)
		}
		return cellvalue.MatrixArg(matrix), maxVer
	default:
		var vector []cellvalue.Value
		var maxVer uint64
		for _, id := range rng.Cells() {
			v, ver := lookup(snapshot, id)
			vector = append(vector, v)
			if ver > maxVer {
				maxVer = ver
			}
		}
		return cellvalue.VectorArg(vector), maxVer
	}
}
