package index

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Build constructs a complete InvertedIndex from a batch of targets in one
// pass: CountIndex tallies occurrences, a prefix sum turns those counts
// into offsets, and UpdateIndex scatters (target, position) entries into
// the resulting slots. targets[i] is the i-th target's k-mer codes, sampled
// at p.StepSize and using Masked for unmasked-out windows, matching the
// encoding Search expects at query time.
//
// Build panics if it detects an internal aliasing violation (two builder
// calls racing the same backing array) — that indicates a bug in this
// package, not a caller error, since Build owns every array it allocates.
func Build(ctx context.Context, targets [][]int32, p Params, logFreqs []float64) (*InvertedIndex, error) {
	tables := BuildTables(logFreqs, p)
	l := p.NumKmers()

	counts := make([]int32, l)
	countsOwned, err := NewOwned(counts)
	if err != nil {
		log.Panicf("index.Build: %v", err)
	}
	if err := CountIndex(ctx, countsOwned, targets, p.StepSize); err != nil {
		return nil, err
	}

	offset := make([]int64, l)
	total := int64(0)
	for c := 0; c < l; c++ {
		offset[c] = total
		total += int64(counts[c])
	}
	// UpdateIndex advances offset in place as it writes, so keep an
	// unshifted copy for the InvertedIndex's own Offset field.
	finalOffset := append([]int64(nil), offset...)

	positions := make([]int64, len(targets))
	targetIDs := make([]int32, total)
	location := make([]int32, total)

	once := errors.Once{}
	offsetOwned, err := NewOwned(offset)
	once.Set(err)
	targetIDsOwned, err := NewOwned(targetIDs)
	once.Set(err)
	locationOwned, err := NewOwned(location)
	once.Set(err)
	positionsOwned, err := NewOwned(positions)
	once.Set(err)
	if once.Err() != nil {
		// Release whichever of the four owners were acquired before the
		// first failure, per the "release partial state before surfacing a
		// shared-array failure" rule applied everywhere else in this
		// package: even though every array here is freshly allocated by
		// this call (so a collision should never happen), the acquisitions
		// must still be unwound in the order this function established
		// them.
		offsetOwned.Release()
		targetIDsOwned.Release()
		locationOwned.Release()
		positionsOwned.Release()
		log.Panicf("index.Build: %v", once.Err())
	}

	if err := UpdateIndex(ctx, offsetOwned, targets, p.WordSize, p.StepSize, targetIDsOwned, locationOwned, positionsOwned, 0); err != nil {
		return nil, err
	}

	return &InvertedIndex{
		Tables:    tables,
		Count:     counts,
		Offset:    finalOffset,
		TargetID:  targetIDs,
		Location:  location,
		Positions: positions,
	}, nil
}
