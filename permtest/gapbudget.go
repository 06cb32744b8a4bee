// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package permtest

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/regioner/genome"
	"github.com/grailbio/regioner/interval"
)

// usedLength sums the lengths of the intervals starting in [lo, hi).
func usedLength(ivs *interval.Set, lo, hi interval.PosType) interval.PosType {
	var used interval.PosType
	for iv := range ivs.Find(lo, hi) {
		if iv.Start >= lo {
			used += iv.Len()
		}
	}
	return used
}

// uncovered returns span - used, or 0 if used exceeds span.
func uncovered(span, used interval.PosType) interval.PosType {
	if used >= span {
		return 0
	}
	return span - used
}

// BuildGapBudget computes, for each region NovlIntervals lays out, the number
// of bases not taken up by ivs.  The region is the whole genome (key 0) or,
// with perChrom, each chromosome (keyed by its axis start).  The budget plus
// the lengths NovlIntervals places in a region add up to the region length,
// so relocated intervals never run past the region end.
func BuildGapBudget(g *genome.Genome, ivs *interval.Set, perChrom bool) genome.GapBudget {
	log.Printf("making gap budget")
	m := map[interval.PosType]interval.PosType{}
	if !perChrom {
		m[0] = uncovered(g.Span, usedLength(ivs, 0, g.Span))
		return genome.NewGapBudget(m)
	}
	for _, chrom := range g.Chroms.Intervals() {
		m[chrom.Start] = uncovered(chrom.Len(), usedLength(ivs, chrom.Start, chrom.Stop))
	}
	return genome.NewGapBudget(m)
}
