package cellstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetsrv/cellid"
	"sheetsrv/cellvalue"
)

var a1 = cellid.CellIdentifier{Col: 0, Row: 0}

func TestGetOnNeverSetCell(t *testing.T) {
	s := New()
	assert.Equal(t, cellvalue.None, s.Get(a1))
}

func TestSetAssignsMonotonicVersions(t *testing.T) {
	s := New()
	d1 := s.Set(a1, "1", true, cellvalue.Int(1))
	d2 := s.Set(a1, "2", true, cellvalue.Int(2))
	assert.NotZero(t, d1.Version)
	assert.Greater(t, d2.Version, d1.Version)
}

func TestCompareAndCommitStaleVersionRejected(t *testing.T) {
	s := New()
	d := s.Set(a1, "1", true, cellvalue.Int(1))

	// A concurrent SET bumps the version.
	s.Set(a1, "2", true, cellvalue.Int(2))

	ok := s.CompareAndCommit(a1, d.Version, cellvalue.Int(99))
	assert.False(t, ok, "stale expected-version commit must be rejected")
	assert.Equal(t, cellvalue.Int(2), s.Get(a1))
}

func TestCompareAndCommitNoopSuppressed(t *testing.T) {
	s := New()
	d := s.Set(a1, "1", true, cellvalue.Int(1))
	ok := s.CompareAndCommit(a1, d.Version, cellvalue.Int(1))
	assert.False(t, ok, "identical recomputation must not bump the version")
	data, _ := s.CellData(a1)
	assert.Equal(t, d.Version, data.Version)
}

func TestCompareAndCommitSucceeds(t *testing.T) {
	s := New()
	d := s.Set(a1, "1", true, cellvalue.Int(1))
	ok := s.CompareAndCommit(a1, d.Version, cellvalue.Int(2))
	require.True(t, ok)
	assert.Equal(t, cellvalue.Int(2), s.Get(a1))
}

func TestSnapshotIsADeepCopy(t *testing.T) {
	s := New()
	s.Set(a1, "1", true, cellvalue.Int(1))
	snap := s.Snapshot()
	s.Set(a1, "2", true, cellvalue.Int(2))
	d, ok := snap.CellData(a1)
	require.True(t, ok)
	assert.Equal(t, cellvalue.Int(1), d.Value, "snapshot must not alias live store state")
}

func TestConcurrentWritesProduceUniqueVersions(t *testing.T) {
	s := New()
	const n = 200
	var wg sync.WaitGroup
	versions := make([]uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			versions[i] = s.Set(a1, "x", true, cellvalue.Int(int64(i))).Version
		}(i)
	}
	wg.Wait()
	seen := make(map[uint64]bool, n)
	for _, v := range versions {
		assert.False(t, seen[v], "version %d handed out twice", v)
		seen[v] = true
	}
}
