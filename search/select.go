package search

import "math"

// OutputMode selects which chains a query reports.
type OutputMode int

const (
	// AllChains reports every maximal, non-dominated chain: when several
	// chains share the same root anchor, only the highest-scoring one
	// survives.
	AllChains OutputMode = iota + 1
	// BestPerTarget reports the single best-scoring chain per target.
	BestPerTarget
	// TopHit reports only the single best-scoring chain across all
	// targets.
	TopHit
)

// AnchorPos is one span of a traced-back chain, in increasing
// query-coordinate order. Start/End are both inclusive, 1-based.
type AnchorPos struct {
	QueryStart, QueryEnd   int32
	TargetStart, TargetEnd int32
}

// Result is one reported match of a query against a target.
type Result struct {
	TargetID int32
	Score    float64
	// Anchors is nil when the caller asked for scores only.
	Anchors []AnchorPos
}

const noOrigin = -1

// selectAllOrigins keeps, for every distinct chain root, only the
// highest-scoring anchor that terminates a chain rooted there.
func selectAllOrigins(anchors []Anchor, origin []int) []int {
	s := len(anchors)
	best := make([]int, s)
	for j := 0; j < s; j++ {
		r := origin[j]
		switch {
		case r == j:
			best[j] = j
		case anchors[best[r]].Score < anchors[j].Score:
			best[r] = j
			best[j] = noOrigin
		default:
			best[j] = noOrigin
		}
	}
	var res []int
	for j := 0; j < s; j++ {
		if best[j] != noOrigin {
			res = append(res, best[j])
		}
	}
	return res
}

// selectBestPerTarget keeps the highest-scoring anchor within each run of
// anchors sharing a target id. anchors must be grouped by target id.
func selectBestPerTarget(anchors []Anchor) []int {
	var res []int
	cur := int32(-1)
	for j := range anchors {
		if anchors[j].TargetID != cur {
			cur = anchors[j].TargetID
			res = append(res, j)
		} else if anchors[j].Score > anchors[res[len(res)-1]].Score {
			res[len(res)-1] = j
		}
	}
	return res
}

// selectTopHit keeps only the single highest-scoring anchor.
func selectTopHit(anchors []Anchor) []int {
	if len(anchors) == 0 {
		return nil
	}
	best := 0
	for j := 1; j < len(anchors); j++ {
		if anchors[j].Score > anchors[best].Score {
			best = j
		}
	}
	return []int{best}
}

// filterSignificant drops candidates scoring below threshold: either the
// caller-supplied minScore, or, when minScore is nil, a per-target
// threshold estimating the score expected by chance against a database of
// totalSize positions.
func filterSignificant(anchors []Anchor, candidates []int, positions []int64, totalSize float64, step int, minScore *float64) []int {
	kept := candidates[:0:0]
	for _, j := range candidates {
		threshold := 0.0
		if minScore != nil {
			threshold = *minScore
		} else {
			threshold = math.Log((totalSize - float64(positions[anchors[j].TargetID-1])) / float64(step))
		}
		if anchors[j].Score >= threshold {
			kept = append(kept, j)
		}
	}
	return kept
}

// traceback walks the chain links from anchors[start] back to the chain's
// root and returns the spans in increasing query-coordinate order.
func traceback(anchors []Anchor, chain []int, start int) []AnchorPos {
	spans := []AnchorPos{spanOf(anchors[start])}
	p := start
	for chain[p] != p {
		p = chain[p]
		spans = append(spans, spanOf(anchors[p]))
	}
	for i, j := 0, len(spans)-1; i < j; i, j = i+1, j-1 {
		spans[i], spans[j] = spans[j], spans[i]
	}
	return spans
}

func spanOf(a Anchor) AnchorPos {
	return AnchorPos{
		QueryStart:  a.QueryPos,
		QueryEnd:    a.QueryPos + a.Len - 1,
		TargetStart: a.TargetPos,
		TargetEnd:   a.TargetPos + a.Len - 1,
	}
}

// selectResults produces the reported matches for one query's chained
// anchors: candidate selection per mode, then the significance filter,
// then (unless scoreOnly) traceback into anchor spans.
func selectResults(
	anchors []Anchor,
	chain, origin []int,
	mode OutputMode,
	positions []int64,
	totalSize float64,
	step int,
	minScore *float64,
	scoreOnly bool,
) []Result {
	if len(anchors) == 0 {
		return nil
	}

	var candidates []int
	switch mode {
	case AllChains:
		candidates = selectAllOrigins(anchors, origin)
	case BestPerTarget:
		candidates = selectBestPerTarget(anchors)
	default:
		candidates = selectTopHit(anchors)
	}
	candidates = filterSignificant(anchors, candidates, positions, totalSize, step, minScore)

	results := make([]Result, len(candidates))
	for i, j := range candidates {
		r := Result{TargetID: anchors[j].TargetID, Score: anchors[j].Score}
		if !scoreOnly {
			r.Anchors = traceback(anchors, chain, j)
		}
		results[i] = r
	}
	return results
}
