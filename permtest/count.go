// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package permtest

import "github.com/grailbio/regioner/interval"

// CountFunc computes an overlap statistic between a and b.
type CountFunc func(a, b *interval.Set) uint64

// CountAny returns the number of a's intervals that overlap at least one of
// b's.
func CountAny(a, b *interval.Set) uint64 {
	var n uint64
	for _, iv := range a.Intervals() {
		if b.Any(iv.Start, iv.Stop) {
			n++
		}
	}
	return n
}

// CountAll returns, summed over a's intervals, the number of b intervals each
// one overlaps.
func CountAll(a, b *interval.Set) uint64 {
	var n uint64
	for _, iv := range a.Intervals() {
		n += uint64(b.Count(iv.Start, iv.Stop))
	}
	return n
}
