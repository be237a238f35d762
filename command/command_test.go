package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetsrv/cellstore"
	"sheetsrv/cellvalue"
)

func TestParseGet(t *testing.T) {
	cmd, err := Parse("get A1")
	require.NoError(t, err)
	assert.Equal(t, Get{CellName: "A1"}, cmd)
}

func TestParseSetWithFormula(t *testing.T) {
	cmd, err := Parse("set B1 A1 * 2")
	require.NoError(t, err)
	assert.Equal(t, Set{CellName: "B1", Formula: "A1 * 2"}, cmd)
}

func TestParseIsCaseInsensitiveOnVerb(t *testing.T) {
	cmd, err := Parse("SET B1 5")
	require.NoError(t, err)
	assert.Equal(t, Set{CellName: "B1", Formula: "5"}, cmd)
}

func TestParseRejectsUnknownVerb(t *testing.T) {
	_, err := Parse("delete A1")
	assert.Error(t, err)
}

func TestParseRejectsEmptyLine(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)
}

func TestHandleGetOnUnsetCellReturnsNone(t *testing.T) {
	store := cellstore.New()
	reply, sent := Handle(store, Get{CellName: "A1"})
	require.True(t, sent)
	require.True(t, reply.IsValue)
	assert.Equal(t, "A1", reply.Name)
	assert.True(t, reply.Value.IsNone())
}

func TestHandleGetInvalidIdentifier(t *testing.T) {
	store := cellstore.New()
	reply, sent := Handle(store, Get{CellName: "a1"})
	require.True(t, sent)
	assert.True(t, reply.IsError())
	assert.Equal(t, "Invalid Key Provided", reply.Message)
}

func TestHandleSetEvaluatesImmediately(t *testing.T) {
	store := cellstore.New()
	_, sent := Handle(store, Set{CellName: "A1", Formula: "10"})
	assert.False(t, sent)

	reply, _ := Handle(store, Get{CellName: "A1"})
	assert.Equal(t, cellvalue.Int(10), reply.Value)
}

func TestHandleSetChainResolvesAtSetTime(t *testing.T) {
	store := cellstore.New()
	Handle(store, Set{CellName: "A1", Formula: "5"})
	Handle(store, Set{CellName: "B1", Formula: "A1*2"})
	Handle(store, Set{CellName: "C1", Formula: "B1+1"})

	reply, _ := Handle(store, Get{CellName: "C1"})
	assert.Equal(t, cellvalue.Int(11), reply.Value)
}

func TestHandleSetInvalidIdentifier(t *testing.T) {
	store := cellstore.New()
	reply, sent := Handle(store, Set{CellName: "1A", Formula: "5"})
	require.True(t, sent)
	assert.Equal(t, "Invalid Key Provided", reply.Message)
}

func TestHandleSetDependsOnErrorValue(t *testing.T) {
	store := cellstore.New()
	Handle(store, Set{CellName: "A1", Formula: `"hello"`})
	Handle(store, Set{CellName: "B1", Formula: "A1+1"})

	reply, _ := Handle(store, Get{CellName: "B1"})
	assert.True(t, reply.IsError())
	assert.Equal(t, "Cell depends on an error", reply.Message)
}
