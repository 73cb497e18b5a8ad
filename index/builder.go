package index

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrCancelled is returned by CountIndex and UpdateIndex when they see ctx
// cancelled mid-build; ctx is checked after a query only once pollInterval
// has passed since the previous check, so a build shorter than that never
// checks it. No partial mutation is rolled back: callers that
// cancel a build must discard the arrays they passed in.
var ErrCancelled = errors.New("index: build cancelled")

// pollInterval bounds how often a build loop checks ctx for cancellation,
// mirroring the once-per-wall-clock-second cadence used by package search's
// parallel driver.
const pollInterval = time.Second

// CountIndex tallies occurrences of each k-mer code across queries into
// counts, which must have length Tables.NumKmers(). A code value of Masked
// at a sampled position is skipped (that window was masked out upstream).
// counts is released on return, success or failure.
func CountIndex(ctx context.Context, counts *Owned[int32], queries [][]int32, step int) error {
	defer counts.Release()
	c := counts.Slice()
	start := time.Now()
	for qi, q := range queries {
		for j := 0; j < len(q); j += step {
			code := q[j]
			if code != Masked {
				c[code]++
			}
		}
		if time.Since(start) >= pollInterval {
			start = time.Now()
			select {
			case <-ctx.Done():
				return errors.Wrapf(ErrCancelled, "CountIndex: cancelled at query %d", qi+1)
			default:
			}
		}
	}
	return nil
}

// UpdateIndex writes (targetID, location) occurrence entries into location
// and targetIDs at the offsets given by offset, and accumulates per-target
// unmasked letter counts into positions (step for an unmasked code whose
// previous unmasked code is at j-step, wordSize otherwise).
//
// offset must already hold the cumulative prefix of a prior CountIndex pass
// (offset[c] is the first free slot for code c); UpdateIndex advances
// offset[c] in place as each entry is written, so offset must be rebuilt
// (e.g. via ApproxFreqs or an equivalent prefix sum) before a subsequent
// independent build pass reuses the same counts.
//
// startTargetID is the number of targets already assigned ids by previous
// calls; query i in this call is assigned target id startTargetID+i+1
// (1-based, as stored in TargetID), and its count goes to the 0-based
// slot positions[startTargetID+i]. positions must have length >=
// startTargetID+len(queries).
//
// All four Owned arguments are released on return, success or failure.
func UpdateIndex(
	ctx context.Context,
	offset *Owned[int64],
	queries [][]int32,
	wordSize, step int,
	targetIDs, location *Owned[int32],
	positions *Owned[int64],
	startTargetID int64,
) error {
	defer offset.Release()
	defer targetIDs.Release()
	defer location.Release()
	defer positions.Release()

	off := offset.Slice()
	tid := targetIDs.Slice()
	loc := location.Slice()
	pos := positions.Slice()

	start := time.Now()
	for qi, q := range queries {
		target := startTargetID + int64(qi) + 1
		posSlot := int(startTargetID) + qi

		last := -step - 1
		for j := 0; j < len(q); j++ {
			if q[j] == Masked {
				continue
			}
			if last == j-step {
				pos[posSlot] += int64(step)
			} else {
				pos[posSlot] += int64(wordSize)
			}
			last = j
		}

		for j := 0; j < len(q); j += step {
			code := q[j]
			if code == Masked {
				continue
			}
			slot := off[code]
			tid[slot] = int32(target)
			loc[slot] = int32(j + 1)
			off[code] = slot + 1
		}

		if time.Since(start) >= pollInterval {
			start = time.Now()
			select {
			case <-ctx.Done():
				return errors.Wrapf(ErrCancelled, "UpdateIndex: cancelled at query %d", qi+1)
			default:
			}
		}
	}
	return nil
}

// ApproxFreqs turns a raw per-k-mer-code count array into a cumulative
// prefix-sum offset table (the layout UpdateIndex expects), and
// simultaneously estimates per-letter background frequencies directly from
// the observed counts: the L k-mer codes are bucketed into len(freqs)
// equal-width bins in code order, and counts within a bin are summed into
// the corresponding freqs entry. This is an approximation, useful when a
// caller has no external frequency estimate and wants one derived from the
// corpus it just indexed.
//
// offset and freqs must have length len(counts) and a caller-chosen
// alphabet size respectively; both are released on return.
func ApproxFreqs(offset *Owned[int64], freqs *Owned[float64], counts []int32) {
	defer offset.Release()
	defer freqs.Release()
	off := offset.Slice()
	fr := freqs.Slice()
	l := len(off)
	s := len(fr)
	if l == 0 || s == 0 {
		return
	}
	binSize := l / s
	n := binSize
	i := 0
	k := 0
	fr[0] = float64(counts[0])
	for i < l-1 {
		j := i + 1
		off[j] = off[i] + int64(counts[i])
		i = j
		if i >= n {
			k++
			n += binSize
		}
		if k < s {
			fr[k] += float64(counts[i])
		}
	}
}
