// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package interval

import (
	"fmt"
	"iter"
	"sort"

	bstore "github.com/biogo/store/interval"
)

// Interval is a half-open range [Start, Stop).  Val is an opaque payload; the
// genome model uses it to carry chromosome lengths.
type Interval struct {
	Start PosType
	Stop  PosType
	Val   uint64
}

// Len returns Stop - Start.
func (iv Interval) Len() PosType {
	return iv.Stop - iv.Start
}

// Overlaps returns whether iv shares at least one position with [lo, hi).
func (iv Interval) Overlaps(lo, hi PosType) bool {
	return iv.Start < hi && lo < iv.Stop
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d)", iv.Start, iv.Stop)
}

// treeEntry is what gets stored in the biogo tree.  id is the entry's index
// in Set.intervals, so tree order (start, then id) matches slice order.
type treeEntry struct {
	start, end int
	id         uintptr
}

func (e treeEntry) Overlap(b bstore.IntRange) bool {
	// Half-open interval indexing.
	return e.end > b.Start && e.start < b.End
}
func (e treeEntry) ID() uintptr             { return e.id }
func (e treeEntry) Range() bstore.IntRange { return bstore.IntRange{Start: e.start, End: e.end} }

// query is a treeEntry-shaped overlap probe.
type query struct {
	start, end int
}

func (q query) Overlap(b bstore.IntRange) bool {
	return q.end > b.Start && q.start < b.End
}

// Set is a collection of possibly-overlapping intervals sorted by start
// position, with an interval tree for overlap search.
//
// A Set is safe for concurrent readers.  MergeOverlaps is the only mutating
// method; it must not run concurrently with anything else on the same Set.
type Set struct {
	intervals []Interval
	tree      *bstore.IntTree
	coverage  PosType
}

// NewSet builds a Set from ivs.  Empty or inverted intervals are dropped.
// ivs is not modified.
func NewSet(ivs []Interval) *Set {
	sorted := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.Start < iv.Stop {
			sorted = append(sorted, iv)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Stop < sorted[j].Stop
	})
	s := &Set{}
	s.reset(sorted)
	return s
}

// reset installs sorted as the contents of s, rebuilding the tree.
func (s *Set) reset(sorted []Interval) {
	tree := &bstore.IntTree{}
	for i, iv := range sorted {
		e := treeEntry{start: int(iv.Start), end: int(iv.Stop), id: uintptr(i)}
		if err := tree.Insert(e, true); err != nil {
			// Start < Stop and ids are unique, so Insert cannot fail.
			panic(fmt.Sprintf("interval.Set: insert %v: %v", iv, err))
		}
	}
	tree.AdjustRanges()
	s.intervals = sorted
	s.tree = tree
	s.coverage = unionLength(sorted)
}

// unionLength returns the number of positions covered by at least one of the
// intervals in sorted.
func unionLength(sorted []Interval) PosType {
	var total PosType
	var curStart, curStop PosType
	for i, iv := range sorted {
		if i == 0 || iv.Start > curStop {
			total += curStop - curStart
			curStart, curStop = iv.Start, iv.Stop
			continue
		}
		if iv.Stop > curStop {
			curStop = iv.Stop
		}
	}
	return total + curStop - curStart
}

// Len returns the number of intervals in the set.
func (s *Set) Len() int {
	return len(s.intervals)
}

// Intervals returns the intervals in ascending start order.  The caller must
// not modify the returned slice.
func (s *Set) Intervals() []Interval {
	return s.intervals
}

// Clone returns a Set that shares s's storage.  Since the storage is never
// modified in place, the two can be used independently; MergeOverlaps on one
// does not affect the other.
func (s *Set) Clone() *Set {
	c := *s
	return &c
}

// Coverage returns the number of positions covered by the set.  Overlapping
// intervals are counted once.
func (s *Set) Coverage() PosType {
	return s.coverage
}

// Find returns the intervals overlapping [lo, hi), in ascending start order.
// The sequence is evaluated lazily, and each call to the returned function
// runs a fresh search.
func (s *Set) Find(lo, hi PosType) iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		if lo >= hi || len(s.intervals) == 0 {
			return
		}
		s.tree.DoMatching(func(e bstore.IntInterface) bool {
			return !yield(s.intervals[e.ID()])
		}, query{start: int(lo), end: int(hi)})
	}
}

// First returns the lowest-starting interval overlapping [lo, hi).
func (s *Set) First(lo, hi PosType) (Interval, bool) {
	for iv := range s.Find(lo, hi) {
		return iv, true
	}
	return Interval{}, false
}

// Any returns whether any interval overlaps [lo, hi).
func (s *Set) Any(lo, hi PosType) bool {
	_, ok := s.First(lo, hi)
	return ok
}

// Count returns the number of intervals overlapping [lo, hi).
func (s *Set) Count(lo, hi PosType) int {
	n := 0
	for range s.Find(lo, hi) {
		n++
	}
	return n
}

// MergeOverlaps collapses overlapping and touching intervals into maximal
// spans.  Afterwards no two intervals overlap or touch.  The Val of a merged
// span is that of its first interval.
func (s *Set) MergeOverlaps() {
	if len(s.intervals) == 0 {
		return
	}
	merged := make([]Interval, 0, len(s.intervals))
	cur := s.intervals[0]
	for _, iv := range s.intervals[1:] {
		if iv.Start <= cur.Stop {
			if iv.Stop > cur.Stop {
				cur.Stop = iv.Stop
			}
			continue
		}
		merged = append(merged, cur)
		cur = iv
	}
	merged = append(merged, cur)
	s.reset(merged)
}
