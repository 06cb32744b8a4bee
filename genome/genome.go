// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package genome

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/regioner/interval"
)

// ChromSize is one line of a genome file.
type ChromSize struct {
	Name   string
	Length interval.PosType
}

// Chrom describes one chromosome's place on the genome axis.
type Chrom struct {
	Name string
	// RawLength is the length listed in the genome file.
	RawLength interval.PosType
	// Length is RawLength minus masked bases.
	Length interval.PosType
	// Offset is the axis coordinate of the chromosome's first unmasked base.
	Offset interval.PosType
}

// Genome is the background against which intervals are randomized.  All
// chromosomes are laid end to end, in genome-file order, on a single axis
// [0, Span).  A Genome is read-only once built.
type Genome struct {
	// Span is the total length of the axis.
	Span interval.PosType
	// Chroms holds one interval per chromosome; Val is the chromosome length.
	Chroms *interval.Set
	// GapBudget is nil unless the genome was derived through WithGapBudget.
	GapBudget *GapBudget

	chroms []Chrom
	byName map[string]int
	mask   *Mask
}

// New lays out sizes on a genome axis, removing masked bases.  mask may be
// nil.  Chromosomes left without any unmasked base are dropped.
func New(sizes []ChromSize, mask *Mask) (*Genome, error) {
	g := &Genome{
		byName: make(map[string]int, len(sizes)),
		mask:   mask,
	}
	var spans []interval.Interval
	for _, cs := range sizes {
		if _, ok := g.byName[cs.Name]; ok {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("genome: duplicate chromosome %s", cs.Name))
		}
		length := cs.Length - mask.MaskedBefore(cs.Name, cs.Length)
		if length == 0 {
			continue
		}
		g.byName[cs.Name] = len(g.chroms)
		g.chroms = append(g.chroms, Chrom{
			Name:      cs.Name,
			RawLength: cs.Length,
			Length:    length,
			Offset:    g.Span,
		})
		spans = append(spans, interval.Interval{Start: g.Span, Stop: g.Span + length, Val: uint64(length)})
		g.Span += length
	}
	if g.Span == 0 {
		return nil, errors.E(errors.Invalid, "genome: no unmasked bases")
	}
	g.Chroms = interval.NewSet(spans)
	return g, nil
}

// Chromosomes returns the chromosomes in axis order.  The caller must not
// modify the returned slice.
func (g *Genome) Chromosomes() []Chrom {
	return g.chroms
}

// Chrom looks up a chromosome by name.
func (g *Genome) Chrom(name string) (Chrom, bool) {
	idx, ok := g.byName[name]
	if !ok {
		return Chrom{}, false
	}
	return g.chroms[idx], true
}

// Map converts the chromosome-local range [start, end) to axis coordinates.
// Masked bases inside the range are squeezed out, and an end past the
// chromosome is clipped.  It returns false if the chromosome is unknown or
// nothing unmasked remains of the range.
func (g *Genome) Map(chrName string, start, end interval.PosType) (interval.Interval, bool) {
	c, ok := g.Chrom(chrName)
	if !ok {
		return interval.Interval{}, false
	}
	if end > c.RawLength {
		end = c.RawLength
	}
	if start >= end {
		return interval.Interval{}, false
	}
	s := start - g.mask.MaskedBefore(chrName, start)
	e := end - g.mask.MaskedBefore(chrName, end)
	if s >= e {
		return interval.Interval{}, false
	}
	return interval.Interval{Start: c.Offset + s, Stop: c.Offset + e}, true
}

// Clone returns a shallow copy of g with its own chromosome Set handle.
func (g *Genome) Clone() *Genome {
	c := *g
	c.Chroms = g.Chroms.Clone()
	return &c
}

// WithGapBudget returns a copy of g carrying b.  g itself is unchanged.
func (g *Genome) WithGapBudget(b GapBudget) *Genome {
	c := *g
	c.GapBudget = &b
	return &c
}

// GapBudget maps a region's start coordinate (a chromosome's Offset, or 0
// for the whole genome) to the number of bases in that region available for
// gaps during non-overlapping relocation.  It cannot be modified once built.
type GapBudget struct {
	m map[interval.PosType]interval.PosType
}

// NewGapBudget copies m into a GapBudget.
func NewGapBudget(m map[interval.PosType]interval.PosType) GapBudget {
	c := make(map[interval.PosType]interval.PosType, len(m))
	for k, v := range m {
		c[k] = v
	}
	return GapBudget{m: c}
}

// Get returns the budget of the region starting at start.
func (b GapBudget) Get(start interval.PosType) (interval.PosType, bool) {
	v, ok := b.m[start]
	return v, ok
}

// Len returns the number of regions in the budget.
func (b GapBudget) Len() int {
	return len(b.m)
}
