package cellid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalar(t *testing.T) {
	id, err := ParseScalar("A1")
	require.NoError(t, err)
	assert.Equal(t, CellIdentifier{Col: 0, Row: 0}, id)

	id, err = ParseScalar("AB12")
	require.NoError(t, err)
	assert.Equal(t, 27, id.Col)
	assert.Equal(t, 11, id.Row)

	_, err = ParseScalar("")
	assert.Error(t, err)
	_, err = ParseScalar("a1")
	assert.Error(t, err)
	_, err = ParseScalar("1A")
	assert.Error(t, err)
	_, err = ParseScalar("A1#")
	assert.Error(t, err)
	_, err = ParseScalar("A")
	assert.Error(t, err)
}

func TestDisplayNameRoundTrip(t *testing.T) {
	for _, id := range []CellIdentifier{{0, 0}, {25, 0}, {26, 0}, {27, 11}, {701, 999}} {
		name := DisplayName(id)
		back, err := ParseScalar(name)
		require.NoError(t, err)
		assert.Equal(t, id, back)
	}
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "A", ColumnName(0))
	assert.Equal(t, "Z", ColumnName(25))
	assert.Equal(t, "AA", ColumnName(26))
	assert.Equal(t, "AB", ColumnName(27))
}

func TestParseRangeShapes(t *testing.T) {
	r, err := ParseRange("A1_A1")
	require.NoError(t, err)
	assert.Equal(t, Horizontal, r.Shape()) // single cell: same row and col
	assert.Len(t, r.Cells(), 1)

	r, err = ParseRange("A1_A3")
	require.NoError(t, err)
	assert.Equal(t, Vertical, r.Shape())
	assert.Len(t, r.Cells(), 3)

	r, err = ParseRange("A1_C1")
	require.NoError(t, err)
	assert.Equal(t, Horizontal, r.Shape())
	assert.Len(t, r.Cells(), 3)

	r, err = ParseRange("A1_B3")
	require.NoError(t, err)
	assert.Equal(t, Rectangular, r.Shape())
	assert.Len(t, r.Cells(), 6)

	_, err = ParseRange("A1")
	assert.Error(t, err)
	_, err = ParseRange("A1_B3_C4")
	assert.Error(t, err)
}

func TestIsValidKey(t *testing.T) {
	valid := []string{"A1", "AB12", "Z99"}
	invalid := []string{"", "a1", "1A", "A", "1", "A1B", "A-1", "A1 "}
	for _, s := range valid {
		assert.True(t, IsValidKey(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsValidKey(s), s)
	}
}
