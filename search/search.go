// Package search implements approximate sequence search over an inverted
// k-mer index built by package index: gathering per-query hits, sorting and
// collapsing them into anchors, chaining anchors into scored matches, and
// selecting the significant ones.
package search

import (
	"context"

	"github.com/grailbio/kmersearch/index"
)

// Opts configures a Search call.
type Opts struct {
	// Mode selects which chains are reported per query.
	Mode OutputMode
	// ScoreOnly skips anchor traceback, returning only target ids and
	// scores. Cheaper when callers don't need alignment coordinates.
	ScoreOnly bool
	// MinScore is the significance cutoff a chain's score must meet to be
	// reported. If nil, a per-target cutoff is computed from TotalSize.
	MinScore *float64
	// TotalSize is the combined size of the target database, used to
	// compute the default per-target significance cutoff when MinScore is
	// nil.
	TotalSize float64
	// Progress, if non-nil, is called with the fraction of queries
	// completed so far, at most once per wall-clock second.
	Progress func(fraction float64)
}

// DefaultOpts reports the single best-scoring chain per target, with
// significance judged against TotalSize.
var DefaultOpts = Opts{
	Mode: BestPerTarget,
}

// Search matches every query against idx and returns, for each query in
// input order, the significant chains found. queries[i] is a slice of
// k-mer codes (index.Masked marking unmasked-out positions) sampled at
// tables.StepSize, the same encoding idx was built from.
//
// Search returns ErrCancelled if it sees ctx done before all queries
// finish (ctx is checked when the first query completes and afterwards at
// most once per wall-clock second, as queries complete), or
// an error wrapping ErrTooManyHits naming the offending query if a single
// query's hit count overflows a signed 32-bit counter. Neither case
// returns partial results.
func Search(ctx context.Context, queries [][]int32, idx *index.InvertedIndex, tables *index.Tables, opts Opts) ([][]Result, error) {
	results := make([][]Result, len(queries))

	err := runParallel(ctx, len(queries), opts.Progress, func(i int) error {
		r, abortErr := searchOne(queries[i], idx, tables, opts)
		if abortErr != nil {
			return overflowError{queryIndex: i + 1}
		}
		results[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FlatResults holds the per-query results produced by Search, reassembled
// by Flatten into the parallel-array form used at the package's external boundary: QueryID and
// TargetID are both 1-based and all four slices share one length, the total
// hit count across every query. AnchorSets[i] is nil when results were
// gathered with ScoreOnly.
type FlatResults struct {
	QueryID    []int32
	TargetID   []int32
	Score      []float64
	AnchorSets [][]AnchorPos
}

// Flatten converts Search's per-query result slices into FlatResults,
// preserving input query order and each query's own result order.
func Flatten(results [][]Result) FlatResults {
	var total int
	for _, rs := range results {
		total += len(rs)
	}
	flat := FlatResults{
		QueryID:    make([]int32, 0, total),
		TargetID:   make([]int32, 0, total),
		Score:      make([]float64, 0, total),
		AnchorSets: make([][]AnchorPos, 0, total),
	}
	for qi, rs := range results {
		for _, r := range rs {
			flat.QueryID = append(flat.QueryID, int32(qi+1))
			flat.TargetID = append(flat.TargetID, r.TargetID)
			flat.Score = append(flat.Score, r.Score)
			flat.AnchorSets = append(flat.AnchorSets, r.Anchors)
		}
	}
	return flat
}

// searchOne runs the full hit-gather/sort/collapse/chain/select pipeline
// for a single query.
func searchOne(query []int32, idx *index.InvertedIndex, tables *index.Tables, opts Opts) ([]Result, error) {
	hits, runLengths, width, err := gatherHits(query, idx, tables)
	if err != nil {
		return nil, err
	}
	if width == 0 || len(hits) == 0 {
		return nil, nil
	}

	hits = sortHits(hits, runLengths)
	anchors := collapseAdjacent(hits, tables.StepSize, tables.WordSize)

	chain, origin, cov := chainDP(anchors, tables)
	correctScores(anchors, cov, idx.Positions, width, tables.StepSize)

	return selectResults(anchors, chain, origin, opts.Mode, idx.Positions, opts.TotalSize, tables.StepSize, opts.MinScore, opts.ScoreOnly), nil
}
