package search

import (
	"github.com/grailbio/kmersearch/index"
	"github.com/pkg/errors"
)

// hit is a single occurrence of one query k-mer in one target, before
// sorting or collapsing. Every hit starts life exactly index.Tables.WordSize
// letters long.
type hit struct {
	queryPos  int32 // 1-based position of the k-mer in the query
	targetPos int32 // 1-based position of the k-mer in the target
	targetID  int32 // 1-based target id
	score     float64
	extend    float64
}

// ErrTooManyHits is returned (wrapped with the offending 1-based query
// index) when a single query's total hit count overflows a signed 32-bit
// counter. This mirrors the original implementation's defense against an
// unbounded-memory query against a very repetitive target database.
var ErrTooManyHits = errors.New("search: too many target k-mer hits for query")

// gatherHits collects every (query-kmer, target occurrence) pair for query
// against idx, along with the per-query-position run lengths the two-key
// sorter needs (each run is already sorted target-ascending, then
// position-ascending, because the index was built by appending targets in
// order). width is the number of unmasked query positions, used later for
// search-space correction.
func gatherHits(query []int32, idx *index.InvertedIndex, tables *index.Tables) (hits []hit, runLengths []int, width int, err error) {
	last := -2
	for j, code := range query {
		if code != index.Masked {
			if last == j-1 {
				width++
			} else {
				width += tables.WordSize
			}
			last = j
		}
	}

	runLengths = make([]int, len(query))
	var total int32 // signed 32-bit, matching the original counter width
	for j, code := range query {
		if code == index.Masked {
			continue
		}
		runLengths[j] = int(idx.Count[code])
		total += idx.Count[code]
		if total < 0 {
			return nil, nil, width, ErrTooManyHits
		}
	}
	if width == 0 || total == 0 {
		return nil, runLengths, width, nil
	}

	hits = make([]hit, 0, int(total))
	for j, code := range query {
		n := runLengths[j]
		if n == 0 {
			continue
		}
		targetIDs, locations := idx.Hits(code)
		for k := 0; k < n; k++ {
			hits = append(hits, hit{
				queryPos:  int32(j + 1),
				targetPos: locations[k],
				targetID:  targetIDs[k],
				score:     tables.Scores[code],
				extend:    tables.ExtendScores[code],
			})
		}
	}
	return hits, runLengths, width, nil
}
