package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumKmers(t *testing.T) {
	cases := []struct {
		alphabet, word int
		want           int
	}{
		{2, 1, 2},
		{2, 3, 8},
		{4, 4, 256},
		{20, 1, 20},
	}
	for _, c := range cases {
		got := Params{AlphabetSize: c.alphabet, WordSize: c.word}.NumKmers()
		assert.Equal(t, c.want, got)
	}
}

// Uniform letter frequencies make every k-mer equally likely, so every
// entry of Scores and ExtendScores should come out identical.
func TestBuildTablesUniformFrequencies(t *testing.T) {
	p := Params{AlphabetSize: 4, WordSize: 3, StepSize: 1, SepCost: 1, GapCost: 1}
	logFreqs := []float64{1.25, 1.25, 1.25, 1.25}
	tbl := BuildTables(logFreqs, p)

	assert.Len(t, tbl.Scores, 64)
	want := 1.25 * 3
	for _, s := range tbl.Scores {
		assert.InDelta(t, want, s, 1e-9)
	}
	wantExtend := 1.25 * 1 // only the final StepSize letters contribute
	for _, s := range tbl.ExtendScores {
		assert.InDelta(t, wantExtend, s, 1e-9)
	}
}

// With skewed frequencies, a k-mer built entirely from the rarest letter
// must score higher (costlier, i.e. more surprising) than one built
// entirely from the most common letter.
func TestBuildTablesSkewedFrequencies(t *testing.T) {
	p := Params{AlphabetSize: 2, WordSize: 2, StepSize: 1, SepCost: 1, GapCost: 1}
	// letter 0 is common (small -log freq), letter 1 is rare (large -log freq)
	logFreqs := []float64{0.1, 3.0}
	tbl := BuildTables(logFreqs, p)

	// code 0b00 = both common letters, code 0b11 = both rare letters.
	assert.Less(t, tbl.Scores[0], tbl.Scores[3])
}

func TestBuildTablesCostTables(t *testing.T) {
	p := Params{AlphabetSize: 4, WordSize: 2, StepSize: 1, SepCost: 2, GapCost: 3}
	tbl := BuildTables([]float64{1, 1, 1, 1}, p)

	wantMaxSep := int(math.Sqrt(16))
	assert.Equal(t, wantMaxSep, tbl.MaxSep)
	assert.Len(t, tbl.SepCostTable, wantMaxSep+1)
	assert.Len(t, tbl.GapCostTable, wantMaxSep+1)
	assert.Equal(t, 0.0, tbl.SepCostTable[0])
	assert.Equal(t, 0.0, tbl.GapCostTable[0])
	for i := 1; i <= wantMaxSep; i++ {
		assert.InDelta(t, 2*math.Sqrt(float64(i)), tbl.SepCostTable[i], 1e-9)
		assert.InDelta(t, 3*math.Sqrt(float64(i)), tbl.GapCostTable[i], 1e-9)
	}
}
