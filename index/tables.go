// Package index builds and holds the read-only inverted k-mer index
// consumed by package search: the frequency/cost tables, the CSR-style
// occurrence arrays, and the builder functions that populate them.
package index

import "math"

// Params describes the alphabet and k-mer shape used to build the
// frequency and cost tables, and later to interpret the inverted index.
type Params struct {
	// AlphabetSize is the number of distinct letters in the alphabet.
	AlphabetSize int
	// WordSize is the k-mer length.
	WordSize int
	// StepSize is the stride between sampled k-mer positions; 1 for a
	// contiguous scan.
	StepSize int
	// SepCost and GapCost are the non-negative cost coefficients applied to
	// the separation and gap terms during chaining.
	SepCost float64
	GapCost float64
}

// NumKmers returns L = AlphabetSize^WordSize, the number of distinct k-mer
// codes.
func (p Params) NumKmers() int {
	l := 1
	for i := 0; i < p.WordSize; i++ {
		l *= p.AlphabetSize
	}
	return l
}

// Tables holds the per-k-mer prior scores and the gap/separation cost
// lookup tables used by the chain DP and the hit gatherer.
type Tables struct {
	Params

	// Scores[c] is -log(expected frequency) of the full k-mer c.
	Scores []float64
	// ExtendScores[c] is the contribution of only the last StepSize letters
	// of k-mer c, used when an adjacent hit is merged into an anchor.
	ExtendScores []float64

	// MaxSep = floor(sqrt(L)): the distance beyond which a single k-mer hit
	// is expected purely by chance, and so the DP window is bounded.
	MaxSep int
	// SepCostTable[i] = SepCost * sqrt(i), for i in 0..MaxSep.
	SepCostTable []float64
	// GapCostTable[i] = GapCost * sqrt(i), for i in 0..MaxSep.
	GapCostTable []float64
}

// BuildTables computes the frequency and cost tables for the given
// per-letter -log frequencies and shape parameters. logFreqs must have
// length p.AlphabetSize.
//
// The letters of a k-mer code are extracted via the same mixed-radix
// decomposition used historically to score k-mers against a background
// model: walking codes 0..L in order while incrementing a running digit
// lets every one of the K letter positions be priced in a single pass over
// 0..L, rather than L separate base-A decompositions.
func BuildTables(logFreqs []float64, p Params) *Tables {
	l := p.NumKmers()
	scores := make([]float64, l)
	extendScores := make([]float64, l)

	c := 1
	for i := 1; i <= p.WordSize; i++ {
		k := -1
		j := 0
		next := 0 // next j at which the current letter digit advances
		for j < l {
			if j == next {
				next += c
				if k == p.AlphabetSize-1 {
					k = 0
				} else {
					k++
				}
			}
			scores[j] += logFreqs[k]
			if i > p.WordSize-p.StepSize {
				extendScores[j] += logFreqs[k]
			}
			j++
		}
		c *= p.AlphabetSize
	}

	maxSep := int(math.Sqrt(float64(l)))
	sepCost := make([]float64, maxSep+1)
	gapCost := make([]float64, maxSep+1)
	for i := 0; i <= maxSep; i++ {
		root := math.Sqrt(float64(i))
		sepCost[i] = p.SepCost * root
		gapCost[i] = p.GapCost * root
	}

	return &Tables{
		Params:       p,
		Scores:       scores,
		ExtendScores: extendScores,
		MaxSep:       maxSep,
		SepCostTable: sepCost,
		GapCostTable: gapCost,
	}
}
