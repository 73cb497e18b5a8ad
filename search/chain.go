package search

import (
	"math"

	"github.com/grailbio/kmersearch/index"
)

// chainDP extends each anchor backward into the highest-scoring chain of
// co-linear anchors reachable within tables.MaxSep of both the query and
// the target, in place: anchors[k].Score becomes the best chain score
// ending at k. chain[k] is the predecessor anchor in that best chain (k
// itself if k starts its own chain); origin[k] is the root anchor of the
// chain chain[k] belongs to; cov[k] is the sum of Len-1 over the chain's
// anchors (its total length minus the number of anchors), used afterward
// to correct for search-space size.
//
// anchors must be sorted by (TargetID, TargetPos) ascending, as produced by
// sortHits/collapseAdjacent. The outer j index is moved up to each anchor
// found more than MaxSep target letters behind the current k, so later k
// skip every anchor before it, bounding the inner loop to a sliding window
// instead of the full O(s^2) pair count.
func chainDP(anchors []Anchor, tables *index.Tables) (chain, origin, cov []int) {
	s := len(anchors)
	chain = make([]int, s)
	origin = make([]int, s)
	cov = make([]int, s)
	for j := range anchors {
		chain[j] = j
		origin[j] = j
		cov[j] = int(anchors[j].Len) - 1
	}

	maxSep := tables.MaxSep
	j := 0
	for k := 1; k < s; k++ {
		if anchors[k].TargetID != anchors[j].TargetID {
			j = k
			continue
		}
		prevScore := anchors[k].Score
		for p := j; p < k; p++ {
			deltaTarget := int(anchors[k].TargetPos) - int(anchors[p].TargetPos) - int(anchors[p].Len)
			if deltaTarget > maxSep {
				j = p // limit search space for future k
				continue
			}
			if deltaTarget < 0 {
				continue
			}
			deltaQuery := int(anchors[k].QueryPos) - int(anchors[p].QueryPos) - int(anchors[p].Len)
			if deltaQuery < 0 || deltaQuery > maxSep {
				continue
			}
			tempScore := anchors[p].Score + prevScore
			if tempScore <= anchors[k].Score {
				continue
			}
			var gap, sep int
			if deltaQuery > deltaTarget {
				gap, sep = deltaQuery-deltaTarget, deltaTarget
			} else {
				gap, sep = deltaTarget-deltaQuery, deltaQuery
			}
			tempScore += tables.GapCostTable[gap] + tables.SepCostTable[sep]
			if tempScore > anchors[k].Score {
				anchors[k].Score = tempScore
				chain[k] = p
				origin[k] = origin[p]
				cov[k] = int(anchors[k].Len) - 1 + cov[p]
			}
		}
	}
	return chain, origin, cov
}

// correctScores subtracts, for each anchor's chain, the log of the
// remaining search space not already covered by the chain: one term for
// the target side (scaled by how many step-sized windows the target's
// unmasked length spans) and one for the query side. This keeps long
// chains from being favored merely for touching a longer target or query,
// independent of how well they actually match.
func correctScores(anchors []Anchor, cov []int, positions []int64, width, step int) {
	for j := range anchors {
		targetSpace := positions[anchors[j].TargetID-1] - int64(cov[j])
		anchors[j].Score -= math.Log(float64(targetSpace) / float64(step))
		anchors[j].Score -= math.Log(float64(width - cov[j]))
	}
}
