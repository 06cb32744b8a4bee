// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package genome

import (
	"context"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/regioner/interval"
)

// maskedChrom is the disjoint, sorted interval-union of masked ranges on one
// chromosome.  Interval #k occupies endpoints [2k] and [2k+1], and cum[k] is
// the number of masked bases in intervals 0..k-1.
type maskedChrom struct {
	endpoints []interval.PosType
	cum       []interval.PosType
}

// Mask is a set of excluded ranges, keyed by chromosome name.  Masked bases
// are removed from the genome axis altogether.
type Mask struct {
	nameMap map[string]maskedChrom
	bases   interval.PosType
}

// NewMask builds a Mask from BED entries.  Entries may be unsorted and
// overlapping; touching and overlapping entries are merged.
func NewMask(entries []interval.Entry) *Mask {
	byChr := map[string][]interval.Entry{}
	for _, e := range entries {
		if e.End > e.Start {
			byChr[e.ChrName] = append(byChr[e.ChrName], e)
		}
	}
	m := &Mask{nameMap: make(map[string]maskedChrom, len(byChr))}
	for chr, chrEntries := range byChr {
		sort.Slice(chrEntries, func(i, j int) bool { return chrEntries[i].Start0 < chrEntries[j].Start0 })
		var mc maskedChrom
		prevStart, prevEnd := chrEntries[0].Start0, chrEntries[0].End
		flush := func() {
			mc.endpoints = append(mc.endpoints, prevStart, prevEnd)
			m.bases += prevEnd - prevStart
		}
		for _, e := range chrEntries[1:] {
			if e.Start0 > prevEnd {
				flush()
				prevStart, prevEnd = e.Start0, e.End
				continue
			}
			if e.End > prevEnd {
				prevEnd = e.End
			}
		}
		flush()
		mc.cum = make([]interval.PosType, len(mc.endpoints)/2+1)
		for k := 0; k < len(mc.endpoints)/2; k++ {
			mc.cum[k+1] = mc.cum[k] + mc.endpoints[2*k+1] - mc.endpoints[2*k]
		}
		m.nameMap[chr] = mc
	}
	return m
}

// ReadMask loads a Mask from a (possibly gzipped) BED file.
func ReadMask(ctx context.Context, path string) (*Mask, error) {
	entries, err := interval.NewEntriesFromPath(ctx, path)
	if err != nil {
		return nil, err
	}
	m := NewMask(entries)
	log.Printf("mask loaded, %d base(s) covered.", m.bases)
	return m, nil
}

// MaskedBefore returns the number of masked bases on chrName in [0, pos).  A
// nil Mask masks nothing.
func (m *Mask) MaskedBefore(chrName string, pos interval.PosType) interval.PosType {
	if m == nil {
		return 0
	}
	mc, ok := m.nameMap[chrName]
	if !ok {
		return 0
	}
	ei := interval.NewEndpointIndex(pos, mc.endpoints)
	k := ei.Ordinal()
	if ei.Contained() {
		return mc.cum[k] + pos - mc.endpoints[ei.Begin()]
	}
	return mc.cum[k]
}
