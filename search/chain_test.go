package search

import (
	"math"
	"testing"

	"github.com/grailbio/kmersearch/index"
	"github.com/grailbio/testutil/expect"
)

func testTables() *index.Tables {
	return index.BuildTables([]float64{1, 1, 1, 1}, index.Params{
		AlphabetSize: 4, WordSize: 2, StepSize: 1, SepCost: 1, GapCost: 1,
	})
}

// Two anchors separated by a one-letter gap on both the query and target
// side should chain into a single higher-scoring result than either anchor
// alone, with the score exactly the sum of both anchor scores plus the
// gap/separation cost for a gap of size 1 (sep=1, no extra gap beyond the
// shared separation).
func TestChainDPTwoAnchors(t *testing.T) {
	tables := testTables()
	anchors := []Anchor{
		{QueryPos: 1, TargetPos: 1, TargetID: 1, Len: 2, Score: 5},
		{QueryPos: 4, TargetPos: 4, TargetID: 1, Len: 2, Score: 5},
	}
	chain, origin, cov := chainDP(anchors, tables)

	expect.EQ(t, chain[0], 0)
	expect.EQ(t, origin[0], 0)
	expect.EQ(t, cov[0], int(anchors[0].Len)-1)

	// deltaTarget = 4-1-2 = 1; deltaQuery = 4-1-2 = 1; equal deltas give
	// gap=0 (deltaTarget-deltaQuery), sep=1 (deltaQuery).
	wantScore := 5.0 + 5.0 + tables.GapCostTable[0] + tables.SepCostTable[1]
	expect.EQ(t, chain[1], 0)
	expect.EQ(t, origin[1], 0)
	expect.EQ(t, cov[1], int(anchors[1].Len)-1+cov[0])
	if math.Abs(anchors[1].Score-wantScore) > 1e-9 {
		t.Fatalf("anchors[1].Score = %v, want %v", anchors[1].Score, wantScore)
	}
}

// Anchors farther apart than MaxSep on the target side never chain.
func TestChainDPBeyondMaxSepDoesNotChain(t *testing.T) {
	tables := testTables()
	far := tables.MaxSep + 5
	anchors := []Anchor{
		{QueryPos: 1, TargetPos: 1, TargetID: 1, Len: 2, Score: 5},
		{QueryPos: int32(far), TargetPos: int32(far), TargetID: 1, Len: 2, Score: 5},
	}
	chain, _, _ := chainDP(anchors, tables)
	expect.EQ(t, chain[1], 1) // stays its own chain root
	expect.EQ(t, anchors[1].Score, 5.0)
}

// Anchors against different targets never chain together even when close
// in coordinates.
func TestChainDPDifferentTargetsDoNotChain(t *testing.T) {
	tables := testTables()
	anchors := []Anchor{
		{QueryPos: 1, TargetPos: 1, TargetID: 1, Len: 2, Score: 5},
		{QueryPos: 4, TargetPos: 4, TargetID: 2, Len: 2, Score: 5},
	}
	chain, _, _ := chainDP(anchors, tables)
	expect.EQ(t, chain[0], 0)
	expect.EQ(t, chain[1], 1)
}
