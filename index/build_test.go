package index

import (
	"context"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func smallParams() Params {
	return Params{AlphabetSize: 4, WordSize: 2, StepSize: 1, SepCost: 1, GapCost: 1}
}

func TestBuildRoundTrip(t *testing.T) {
	p := smallParams()
	targets := [][]int32{
		{5, Masked, 7},
		{5},
	}
	idx, err := Build(context.Background(), targets, p, []float64{1, 1, 1, 1})
	expect.NoError(t, err)

	expect.EQ(t, idx.Count[5], int32(2))
	expect.EQ(t, idx.Count[7], int32(1))
	expect.EQ(t, idx.Positions[0], int64(4)) // one kmer each at pos 1 and 3
	expect.EQ(t, idx.Positions[1], int64(2))

	targetIDs, locations := idx.Hits(5)
	expect.EQ(t, len(targetIDs), 2)
	expect.EQ(t, targetIDs[0], int32(1))
	expect.EQ(t, locations[0], int32(1))
	expect.EQ(t, targetIDs[1], int32(2))
	expect.EQ(t, locations[1], int32(1))

	targetIDs7, locations7 := idx.Hits(7)
	expect.EQ(t, len(targetIDs7), 1)
	expect.EQ(t, targetIDs7[0], int32(1))
	expect.EQ(t, locations7[0], int32(3))
}

// Determinism/idempotence: rebuilding the same targets must produce an
// identical checksum every time.
func TestBuildDeterministic(t *testing.T) {
	p := smallParams()
	targets := [][]int32{
		{5, Masked, 7},
		{5},
		{7, 7},
	}
	idx1, err := Build(context.Background(), targets, p, []float64{1, 1, 1, 1})
	expect.NoError(t, err)
	idx2, err := Build(context.Background(), targets, p, []float64{1, 1, 1, 1})
	expect.NoError(t, err)

	expect.EQ(t, idx1.Checksum(), idx2.Checksum())
}

func TestCountIndexOwnershipRefused(t *testing.T) {
	counts := make([]int32, 16)
	o1, err := NewOwned(counts)
	expect.NoError(t, err)
	defer o1.Release()

	_, err = NewOwned(counts)
	expect.True(t, err != nil)
}
