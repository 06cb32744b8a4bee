// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package permtest

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/regioner/genome"
	"github.com/grailbio/regioner/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenome(t *testing.T, lengths ...interval.PosType) *genome.Genome {
	var sizes []genome.ChromSize
	for i, l := range lengths {
		sizes = append(sizes, genome.ChromSize{Name: "chr" + string(rune('1'+i)), Length: l})
	}
	g, err := genome.New(sizes, nil)
	require.NoError(t, err)
	return g
}

func ivs(pairs ...interval.PosType) *interval.Set {
	var out []interval.Interval
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, interval.Interval{Start: pairs[i], Stop: pairs[i+1]})
	}
	return interval.NewSet(out)
}

func sortedLengths(s *interval.Set) []interval.PosType {
	var l []interval.PosType
	for _, iv := range s.Intervals() {
		l = append(l, iv.Len())
	}
	sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })
	return l
}

// chromIndex returns which chromosome of g contains pos.
func chromIndex(g *genome.Genome, pos interval.PosType) int {
	for i, c := range g.Chroms.Intervals() {
		if pos >= c.Start && pos < c.Stop {
			return i
		}
	}
	return -1
}

func assertContained(t *testing.T, g *genome.Genome, in, out *interval.Set, perChrom bool) {
	for _, iv := range out.Intervals() {
		assert.True(t, iv.Stop <= g.Span, "%v past genome end %d", iv, g.Span)
		if perChrom {
			c := g.Chroms.Intervals()[chromIndex(g, iv.Start)]
			assert.True(t, iv.Stop <= c.Stop, "%v crosses chromosome %v", iv, c)
		}
	}
}

func TestShuffleIntervalsProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g := newGenome(t, 1000, 500, 200)
	in := ivs(0, 10, 100, 300, 990, 1000, 1000, 1499, 1550, 1650)
	for _, perChrom := range []bool{false, true} {
		for trial := 0; trial < 200; trial++ {
			out, err := ShuffleIntervals(in, g, perChrom, r)
			require.NoError(t, err)
			assert.Equal(t, in.Len(), out.Len())
			assert.Equal(t, sortedLengths(in), sortedLengths(out))
			assertContained(t, g, in, out, perChrom)
		}
	}
}

func TestShuffleIntervalsStaysOnChromosome(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	g := newGenome(t, 100, 100)
	in := ivs(150, 160)
	for trial := 0; trial < 500; trial++ {
		out, err := ShuffleIntervals(in, g, true, r)
		require.NoError(t, err)
		iv := out.Intervals()[0]
		assert.True(t, iv.Start >= 100 && iv.Stop <= 200, "%v", iv)
	}
}

func TestShuffleIntervalsFullWindow(t *testing.T) {
	// An interval as long as its window has exactly one placement.
	r := rand.New(rand.NewPCG(5, 6))
	g := newGenome(t, 100)
	out, err := ShuffleIntervals(ivs(0, 100), g, false, r)
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{{Start: 0, Stop: 100}}, out.Intervals())
}

func TestShuffleIntervalsErrors(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	g := newGenome(t, 100)
	_, err := ShuffleIntervals(ivs(200, 210), g, true, r)
	assert.True(t, errors.Is(errors.Invalid, err), "%v", err)
	_, err = ShuffleIntervals(ivs(0, 150), g, false, r)
	assert.True(t, errors.Is(errors.Invalid, err), "%v", err)
}

// coveredPositions returns the positions of s, as a multiset.
func coveredPositions(s *interval.Set) map[interval.PosType]int {
	m := map[interval.PosType]int{}
	for _, iv := range s.Intervals() {
		for p := iv.Start; p < iv.Stop; p++ {
			m[p]++
		}
	}
	return m
}

func TestCircleIntervalsWrap(t *testing.T) {
	const span = 100
	g := newGenome(t, span)
	in := ivs(10, 30, 70, 95)
	for seed := uint64(0); seed < 300; seed++ {
		r := rand.New(rand.NewPCG(seed, 99))
		shift := interval.PosType(rand.New(rand.NewPCG(seed, 99)).Uint64N(span))
		out, err := CircleIntervals(in, g, false, r)
		require.NoError(t, err)

		want := map[interval.PosType]int{}
		for _, iv := range in.Intervals() {
			for p := iv.Start; p < iv.Stop; p++ {
				want[(p+shift)%span]++
			}
		}
		assert.Equal(t, want, coveredPositions(out), "shift %d", shift)
		assert.True(t, out.Len() >= in.Len() && out.Len() <= 2*in.Len())
		var total interval.PosType
		for _, iv := range out.Intervals() {
			total += iv.Len()
			assert.True(t, iv.Stop <= span, "%v", iv)
		}
		assert.Equal(t, interval.PosType(45), total)
	}
}

func TestCircleIntervalsPerChrom(t *testing.T) {
	g := newGenome(t, 100, 50)
	in := ivs(20, 40, 110, 140)
	for seed := uint64(0); seed < 300; seed++ {
		shift := interval.PosType(rand.New(rand.NewPCG(seed, 7)).Uint64N(uint64(g.Span)))
		out, err := CircleIntervals(in, g, true, rand.New(rand.NewPCG(seed, 7)))
		require.NoError(t, err)

		want := map[interval.PosType]int{}
		for p := interval.PosType(20); p < 40; p++ {
			want[(p+shift%100)%100]++
		}
		for p := interval.PosType(10); p < 40; p++ {
			want[100+(p+shift%50)%50]++
		}
		assert.Equal(t, want, coveredPositions(out), "shift %d", shift)
		assertContained(t, g, in, out, true)
	}
}

func TestCircleIntervalsSplit(t *testing.T) {
	// Rotating [90,100) by 5 in a 100bp genome splits it into [95,100) and
	// [0,5).
	g := newGenome(t, 100)
	var r *rand.Rand
	for seed := uint64(0); ; seed++ {
		if rand.New(rand.NewPCG(seed, 0)).Uint64N(100) == 5 {
			r = rand.New(rand.NewPCG(seed, 0))
			break
		}
	}
	out, err := CircleIntervals(ivs(90, 100), g, false, r)
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{{Start: 0, Stop: 5}, {Start: 95, Stop: 100}}, out.Intervals())
}

func TestCircleIntervalsErrors(t *testing.T) {
	g := newGenome(t, 100, 100)
	r := rand.New(rand.NewPCG(1, 1))
	_, err := CircleIntervals(ivs(500, 510), g, true, r)
	assert.True(t, errors.Is(errors.Invalid, err), "%v", err)
	// Crosses from chr1 into chr2.
	_, err = CircleIntervals(ivs(50, 160), g, true, r)
	assert.True(t, errors.Is(errors.Invalid, err), "%v", err)
}

func assertNoOverlap(t *testing.T, s *interval.Set) {
	ivs := s.Intervals()
	for i := 1; i < len(ivs); i++ {
		assert.True(t, ivs[i].Start >= ivs[i-1].Stop, "%v overlaps %v", ivs[i-1], ivs[i])
	}
}

func TestNovlIntervalsProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))
	g := newGenome(t, 100000, 30000)
	var raw []interval.Interval
	for i := 0; i < 50; i++ {
		start := interval.PosType(r.Uint64N(95000))
		raw = append(raw, interval.Interval{Start: start, Stop: start + 1 + interval.PosType(r.Uint64N(1000))})
	}
	for i := 0; i < 20; i++ {
		start := 100000 + interval.PosType(r.Uint64N(29000))
		raw = append(raw, interval.Interval{Start: start, Stop: start + 1 + interval.PosType(r.Uint64N(500))})
	}
	in := interval.NewSet(raw)
	in.MergeOverlaps()

	for _, perChrom := range []bool{false, true} {
		gb := g.WithGapBudget(BuildGapBudget(g, in, perChrom))
		for trial := 0; trial < 20; trial++ {
			out, err := NovlIntervals(in, gb, perChrom, r)
			require.NoError(t, err)
			assert.Equal(t, in.Len(), out.Len())
			assert.Equal(t, sortedLengths(in), sortedLengths(out))
			assertNoOverlap(t, out)
			assertContained(t, g, in, out, perChrom)
		}
	}
}

func TestNovlIntervalsLayout(t *testing.T) {
	g := newGenome(t, 100)
	in := ivs(0, 10, 50, 70)
	for _, budget := range []interval.PosType{70, 40} {
		gb := g.WithGapBudget(genome.NewGapBudget(map[interval.PosType]interval.PosType{0: budget}))
		for seed := uint64(0); seed < 100; seed++ {
			out, err := NovlIntervals(in, gb, false, rand.New(rand.NewPCG(seed, 1)))
			require.NoError(t, err)
			require.Equal(t, 2, out.Len())
			assert.Equal(t, sortedLengths(in), sortedLengths(out))
			assertNoOverlap(t, out)
			// Gaps and intervals tile [0, budget+30) exactly.
			assert.True(t, out.Intervals()[1].Stop <= budget+30, "%v", out.Intervals())
		}
	}
	// With the full budget the layout can reach the genome end.
	gb := g.WithGapBudget(BuildGapBudget(g, in, false))
	v, _ := gb.GapBudget.Get(0)
	assert.Equal(t, interval.PosType(70), v)
}

func TestNovlIntervalsErrors(t *testing.T) {
	g := newGenome(t, 100, 100)
	r := rand.New(rand.NewPCG(1, 1))
	_, err := NovlIntervals(ivs(0, 10), g, false, r)
	assert.True(t, errors.Is(errors.Invalid, err), "%v", err)

	// A whole-genome budget has no per-chromosome entries.
	gb := g.WithGapBudget(BuildGapBudget(g, ivs(0, 10), false))
	_, err = NovlIntervals(ivs(0, 10), gb, true, r)
	assert.True(t, errors.Is(errors.Invalid, err), "%v", err)
}

func TestBuildGapBudget(t *testing.T) {
	g := newGenome(t, 100, 50)
	in := ivs(10, 20, 30, 35, 120, 140)
	whole := BuildGapBudget(g, in, false)
	assert.Equal(t, 1, whole.Len())
	v, ok := whole.Get(0)
	assert.True(t, ok)
	assert.Equal(t, interval.PosType(150-35), v)

	per := BuildGapBudget(g, in, true)
	assert.Equal(t, 2, per.Len())
	v, _ = per.Get(0)
	assert.Equal(t, interval.PosType(85), v)
	v, _ = per.Get(100)
	assert.Equal(t, interval.PosType(30), v)
}
