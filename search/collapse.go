package search

// Anchor is a maximal run of co-linear, adjacently-spaced k-mer hits
// against one target, collapsed into a single span. QueryPos and TargetPos
// are 1-based starts; Len is the span length in letters.
type Anchor struct {
	QueryPos  int32
	TargetPos int32
	TargetID  int32
	Len       int32
	Score     float64
}

// collapseAdjacent merges runs of hits that are co-linear and exactly one
// step apart in both the query and the target into single, longer anchors:
// hits[c] merges into the open anchor rooted at hits[j] when
// hits[c].targetPos-hits[j].targetPos == step and the same holds for
// queryPos. hits must already be sorted by (targetID, targetPos) (see
// sortHits). Anchors that gained no merges keep their original k-mer-length
// span.
func collapseAdjacent(hits []hit, step, wordSize int) []Anchor {
	s := len(hits)
	if s == 0 {
		return nil
	}

	length := make([]int32, s)
	origin := make([]int, s)
	score := make([]float64, s)
	keep := make([]bool, s)
	for j := range hits {
		length[j] = int32(wordSize)
		origin[j] = j
		score[j] = hits[j].score
		keep[j] = true
	}

	k := 0 // previous position with the same target as the current one
	for c := 1; c < s; c++ {
		if hits[k].targetID == hits[c].targetID {
			j := k
			for j < c {
				deltaTarget := hits[c].targetPos - hits[j].targetPos
				if deltaTarget > int32(step) {
					k = j + 1
				} else if deltaTarget == int32(step) {
					deltaQuery := hits[c].queryPos - hits[j].queryPos
					if deltaQuery == int32(step) {
						keep[c] = false
						origin[c] = origin[j]
						o := origin[j]
						length[o] += int32(step)
						score[o] += hits[c].extend
						break
					}
				} else {
					break
				}
				j++
			}
		} else {
			k = c
		}
	}

	anchors := make([]Anchor, 0, s)
	for j := range hits {
		if !keep[j] {
			continue
		}
		anchors = append(anchors, Anchor{
			QueryPos:  hits[j].queryPos,
			TargetPos: hits[j].targetPos,
			TargetID:  hits[j].targetID,
			Len:       length[j],
			Score:     score[j],
		})
	}
	return anchors
}
