package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetsrv/cellid"
	"sheetsrv/cellstore"
	"sheetsrv/cellvalue"
)

func TestBuildScalarReference(t *testing.T) {
	store := cellstore.New()
	store.Set(cellid.CellIdentifier{Col: 0, Row: 0}, "5", true, cellvalue.Int(5))

	environment, versions := Build(store.Snapshot(), []string{"A1"})
	arg := environment["A1"]
	require.Equal(t, cellvalue.ArgScalar, arg.Kind)
	assert.Equal(t, cellvalue.Int(5), arg.Scalar)
	assert.Equal(t, uint64(1), versions["A1"])
}

func TestBuildUnsetScalarIsNone(t *testing.T) {
	environment, versions := Build(cellstore.Snapshot{}, []string{"A1"})
	arg := environment["A1"]
	require.Equal(t, cellvalue.ArgScalar, arg.Kind)
	assert.True(t, arg.Scalar.IsNone())
	assert.Equal(t, uint64(0), versions["A1"])
}

func TestBuildHorizontalRangeIsVector(t *testing.T) {
	store := cellstore.New()
	store.Set(cellid.CellIdentifier{Col: 0, Row: 0}, "1", true, cellvalue.Int(1))
	store.Set(cellid.CellIdentifier{Col: 1, Row: 0}, "2", true, cellvalue.Int(2))

	environment, _ := Build(store.Snapshot(), []string{"A1_B1"})
	arg := environment["A1_B1"]
	require.Equal(t, cellvalue.ArgVector, arg.Kind)
	assert.Equal(t, []cellvalue.Value{cellvalue.Int(1), cellvalue.Int(2)}, arg.Vector)
}

func TestBuildVerticalRangeIsVector(t *testing.T) {
	store := cellstore.New()
	store.Set(cellid.CellIdentifier{Col: 0, Row: 0}, "1", true, cellvalue.Int(1))
	store.Set(cellid.CellIdentifier{Col: 0, Row: 1}, "2", true, cellvalue.Int(2))

	environment, _ := Build(store.Snapshot(), []string{"A1_A2"})
	arg := environment["A1_A2"]
	require.Equal(t, cellvalue.ArgVector, arg.Kind)
	assert.Equal(t, []cellvalue.Value{cellvalue.Int(1), cellvalue.Int(2)}, arg.Vector)
}

func TestBuildRectangularRangeIsMatrix(t *testing.T) {
	store := cellstore.New()
	store.Set(cellid.CellIdentifier{Col: 0, Row: 0}, "1", true, cellvalue.Int(1))
	store.Set(cellid.CellIdentifier{Col: 1, Row: 0}, "2", true, cellvalue.Int(2))
	store.Set(cellid.CellIdentifier{Col: 0, Row: 1}, "3", true, cellvalue.Int(3))
	store.Set(cellid.CellIdentifier{Col: 1, Row: 1}, "4", true, cellvalue.Int(4))

	environment, versions := Build(store.Snapshot(), []string{"A1_B2"})
	arg := environment["A1_B2"]
	require.Equal(t, cellvalue.ArgMatrix, arg.Kind)
	assert.Equal(t, [][]cellvalue.Value{
		{cellvalue.Int(1), cellvalue.Int(2)},
		{cellvalue.Int(3), cellvalue.Int(4)},
	}, arg.Matrix)
	assert.Equal(t, uint64(4), versions["A1_B2"])
}

func TestBuildTracksMaxVersionAcrossRange(t *testing.T) {
	store := cellstore.New()
	store.Set(cellid.CellIdentifier{Col: 0, Row: 0}, "1", true, cellvalue.Int(1))
	store.Set(cellid.CellIdentifier{Col: 0, Row: 1}, "2", true, cellvalue.Int(2))
	store.Set(cellid.CellIdentifier{Col: 0, Row: 2}, "3", true, cellvalue.Int(3))

	_, versions := Build(store.Snapshot(), []string{"A1_A3"})
	assert.Equal(t, uint64(3), versions["A1_A3"])
}

func TestBuildSkipsUnparseableNames(t *testing.T) {
	environment, versions := Build(cellstore.Snapshot{}, []string{"not a cell ref"})
	assert.Empty(t, environment)
	assert.Empty(t, versions)
}

func TestBuildDedupesRepeatedNames(t *testing.T) {
	store := cellstore.New()
	store.Set(cellid.CellIdentifier{Col: 0, Row: 0}, "1", true, cellvalue.Int(1))

	environment, _ := Build(store.Snapshot(), []string{"A1", "A1", "A1"})
	assert.Len(t, environment, 1)
}
