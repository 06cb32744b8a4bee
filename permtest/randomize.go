// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package permtest

import (
	"fmt"
	"math/rand/v2"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/regioner/genome"
	"github.com/grailbio/regioner/interval"
)

// novlMagic controls how finely novl randomization chops up the uncovered
// part of a region.  Truly random placement would break every uncovered
// span into 1bp gap pieces, which is far too slow.  Instead each piece is
// drawn uniformly from [1, remaining/novlMagic), so no single piece can
// swallow more than 1/novlMagic of the budget; this limits the bias toward
// one huge gap with the intervals packed end to end.
const novlMagic = 10000

// RandomizeFunc relocates every interval of ivs under one null model.  The
// lengths of the returned intervals are those of ivs.  When perChrom is set,
// each interval stays on the chromosome it starts in.
type RandomizeFunc func(ivs *interval.Set, g *genome.Genome, perChrom bool, r *rand.Rand) (*interval.Set, error)

// window returns the bounds an interval must be placed within, and the
// modulus used for circular shifts.
func window(g *genome.Genome, iv interval.Interval, perChrom bool) (lo, hi, modulus interval.PosType, err error) {
	if !perChrom {
		return 0, g.Span, g.Span, nil
	}
	chrom, ok := g.Chroms.First(iv.Start, iv.Stop)
	if !ok {
		return 0, 0, 0, errors.E(errors.Invalid, fmt.Sprintf("permtest: interval %v does not hit the genome", iv))
	}
	return chrom.Start, chrom.Stop, interval.PosType(chrom.Val), nil
}

func errTooLong(iv interval.Interval, lo, hi interval.PosType) error {
	return errors.E(errors.Invalid, fmt.Sprintf("permtest: interval %v does not fit in [%d,%d)", iv, lo, hi))
}

// ShuffleIntervals moves each interval to a uniformly random position at
// which it lies entirely inside its window.
func ShuffleIntervals(ivs *interval.Set, g *genome.Genome, perChrom bool, r *rand.Rand) (*interval.Set, error) {
	out := make([]interval.Interval, 0, ivs.Len())
	for _, iv := range ivs.Intervals() {
		lo, hi, _, err := window(g, iv, perChrom)
		if err != nil {
			return nil, err
		}
		n := iv.Len()
		if n > hi-lo {
			return nil, errTooLong(iv, lo, hi)
		}
		start := lo + interval.PosType(r.Uint64N(uint64(hi-lo-n+1)))
		out = append(out, interval.Interval{Start: start, Stop: start + n})
	}
	return interval.NewSet(out), nil
}

// CircleIntervals rotates all intervals downstream by one random shift,
// drawn once per call from [0, g.Span).  In per-chromosome mode the shift is
// reduced modulo each chromosome's length.  An interval rotated across the
// end of its window is split in two, the second piece resuming at the
// window start, so the output may hold more intervals than the input.
func CircleIntervals(ivs *interval.Set, g *genome.Genome, perChrom bool, r *rand.Rand) (*interval.Set, error) {
	genomeShift := interval.PosType(r.Uint64N(uint64(g.Span)))
	out := make([]interval.Interval, 0, ivs.Len())
	for _, iv := range ivs.Intervals() {
		lo, hi, modulus, err := window(g, iv, perChrom)
		if err != nil {
			return nil, err
		}
		n := iv.Len()
		if iv.Start < lo || iv.Start-lo+n > modulus {
			return nil, errTooLong(iv, lo, hi)
		}
		rel := (iv.Start - lo + genomeShift%modulus) % modulus
		if rel+n <= modulus {
			out = append(out, interval.Interval{Start: lo + rel, Stop: lo + rel + n})
			continue
		}
		out = append(out,
			interval.Interval{Start: lo + rel, Stop: lo + modulus},
			interval.Interval{Start: lo, Stop: lo + rel + n - modulus})
	}
	return interval.NewSet(out), nil
}

// novlPiece is either a gap or the length of one real interval.
type novlPiece struct {
	real   bool
	length interval.PosType
}

// NovlIntervals relocates intervals so that none of them overlap.  Each
// region's gap budget (see BuildGapBudget) is cut into random gap pieces,
// which are shuffled together with the interval lengths and laid end to end
// from the region start.  g must carry a gap budget built for ivs.
func NovlIntervals(ivs *interval.Set, g *genome.Genome, perChrom bool, r *rand.Rand) (*interval.Set, error) {
	if g.GapBudget == nil {
		return nil, errors.E(errors.Invalid, "permtest: novl randomization requires a gap budget")
	}
	regions := []interval.Interval{{Start: 0, Stop: g.Span}}
	if perChrom {
		regions = g.Chroms.Intervals()
	}
	out := make([]interval.Interval, 0, ivs.Len())
	var pieces []novlPiece
	for _, region := range regions {
		gap, ok := g.GapBudget.Get(region.Start)
		if !ok {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("permtest: no gap budget for region %v", region))
		}
		pieces = pieces[:0]
		for gap > 0 {
			maxLen := gap / novlMagic
			if maxLen < 2 {
				maxLen = 2
			}
			l := 1 + interval.PosType(r.Uint64N(uint64(maxLen-1)))
			pieces = append(pieces, novlPiece{length: l})
			gap -= l
		}
		for iv := range ivs.Find(region.Start, region.Stop) {
			if iv.Start < region.Start {
				continue
			}
			pieces = append(pieces, novlPiece{real: true, length: iv.Len()})
		}
		r.Shuffle(len(pieces), func(i, j int) { pieces[i], pieces[j] = pieces[j], pieces[i] })

		pos := region.Start
		for _, p := range pieces {
			if p.real {
				out = append(out, interval.Interval{Start: pos, Stop: pos + p.length})
			}
			pos += p.length
		}
	}
	return interval.NewSet(out), nil
}
