package engine

import (
	"sheetsrv/cellid"
	"sheetsrv/cellstore"
	"sheetsrv/cellvalue"
	"sheetsrv/env"
	"sheetsrv/formula"
)

// LegacySweep recomputes every formula cell directly against the current
// store contents, without building a dependency graph or ordering the
// pass: it is the earlier, non-cascading strategy the chained Sweep
// replaced. A single LegacySweep pass only ever reflects one level of
// dependency (a formula that depends on another formula's *freshly
// computed* value needs another pass to pick it up), but it still
// refuses to clobber a concurrent write: before committing it re-reads
// the version of every cell the formula depended on and aborts the
// commit if any of them moved since the formula was evaluated.
//
// Kept as an alternate sweep strategy: Engine.Run always uses Sweep, and
// nothing else in the module calls LegacySweep.
func LegacySweep(store *cellstore.Store) {
	before := store.Snapshot()

	type pending struct {
		id      cellid.CellIdentifier
		formula string
		origVer uint64
		depVer  map[string]uint64
		value   cellvalue.Value
		evalErr error
	}
	var work []pending

	for id, data := range before {
		if !data.HasFormula {
			continue
		}
		names := formula.FreeVariables(data.Formula)
		environment, versions := env.Build(before, names)
		newValue, err := formula.Eval(data.Formula, environment)
		work = append(work, pending{
			id:      id,
			formula: data.Formula,
			origVer: data.Version,
			depVer:  versions,
			value:   newValue,
			evalErr: err,
		})
	}

	after := store.Snapshot()
	for _, w := range work {
		id := w.id
		_, currentVersions := env.Build(after, formula.FreeVariables(w.formula))
		if !sameVersions(w.depVer, currentVersions) {
			continue
		}

		newValue := w.value
		if w.evalErr != nil {
			if w.evalErr == formula.ErrDependsOnError {
				newValue = cellvalue.Error("Cell depends on an error")
			} else {
				newValue = cellvalue.Error("Error evaluating expression in worker thread")
			}
		}
		store.CompareAndCommit(id, w.origVer, newValue)
	}
}

func sameVersions(a, b map[string]uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
