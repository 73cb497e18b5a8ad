package index

import (
	"encoding/binary"
	"sync"
	"unsafe"

	"github.com/blainsmith/seahash"
	"github.com/pkg/errors"
)

// Owned wraps a slice that a builder call will write into in place. Exactly
// one Owned wrapper may exist over a given backing array at a time: a second
// wrapper constructed over the same backing array would let two builder
// calls race each other's in-place writes, so construction fails closed
// instead. This is the Go-native analogue of the single-writer discipline a
// reference-counted array would enforce at the language boundary.
type Owned[T any] struct {
	data     []T
	released bool
}

var liveOwners sync.Map // unsafe.Pointer (first element) -> struct{}

// NewOwned claims data for the caller's exclusive use until Release is
// called. It returns an error if some other in-flight Owned already wraps
// the same backing array.
func NewOwned[T any](data []T) (*Owned[T], error) {
	if len(data) == 0 {
		return &Owned[T]{data: data}, nil
	}
	ptr := unsafe.Pointer(&data[0])
	if _, loaded := liveOwners.LoadOrStore(ptr, struct{}{}); loaded {
		return nil, errors.Errorf("index: array of length %d is already owned by an in-flight build call", len(data))
	}
	return &Owned[T]{data: data}, nil
}

// Release relinquishes ownership, allowing a future NewOwned call to wrap
// the same backing array. Idempotent.
func (o *Owned[T]) Release() {
	if o == nil || o.released || len(o.data) == 0 {
		return
	}
	o.released = true
	liveOwners.Delete(unsafe.Pointer(&o.data[0]))
}

// Slice returns the wrapped slice for direct reading and writing.
func (o *Owned[T]) Slice() []T { return o.data }

// Masked marks an unmasked-out k-mer position sentinel: a query code at this
// value is skipped by CountIndex, UpdateIndex, and the hit gatherer.
const Masked int32 = -1

// InvertedIndex is the read-only, CSR-style mapping from k-mer code to every
// (target, position) occurrence recorded for it. Count and Offset have one
// entry per k-mer code (length L = Tables.NumKmers()); TargetID and Location
// are flat, length-sum(Count) arrays addressed via Offset, so that the
// occurrences for code c live at TargetID[Offset[c]:Offset[c]+Count[c]] and
// Location[Offset[c]:Offset[c]+Count[c]].
type InvertedIndex struct {
	Tables *Tables

	Count    []int32
	Offset   []int64
	TargetID []int32
	Location []int32

	// Positions[t] is the number of unmasked letter positions in target t
	// (0-based), used by the search-space correction and the result
	// selector to judge chain significance relative to a target's length.
	Positions []int64
}

// Checksum returns a content fingerprint of the built index, stable across
// rebuilds that produce the same arrays. It hashes Offset, TargetID,
// Location and Positions in array order, so a different order of entries
// within a bucket gives a different checksum. Count is not hashed, since
// Offset and the length of TargetID determine it.
func (idx *InvertedIndex) Checksum() uint64 {
	h := seahash.New()
	var buf [8]byte
	for _, v := range idx.Offset {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	for _, v := range idx.TargetID {
		binary.LittleEndian.PutUint64(buf[:], uint64(uint32(v)))
		h.Write(buf[:])
	}
	for _, v := range idx.Location {
		binary.LittleEndian.PutUint64(buf[:], uint64(uint32(v)))
		h.Write(buf[:])
	}
	for _, v := range idx.Positions {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Hits returns the target ids and positions recorded for k-mer code c.
func (idx *InvertedIndex) Hits(c int32) (targetIDs []int32, locations []int32) {
	start := idx.Offset[c]
	n := int64(idx.Count[c])
	return idx.TargetID[start : start+n], idx.Location[start : start+n]
}
