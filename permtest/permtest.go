// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package permtest

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/regioner/genome"
	"github.com/grailbio/regioner/interval"
)

// Randomizer selects the null model.  The numeric values appear in the
// "random" field of the output record.
type Randomizer uint8

const (
	// Circle rotates all intervals by one shared random shift.
	Circle Randomizer = iota
	// Shuffle moves each interval independently.
	Shuffle
	// Novl moves intervals so that they never overlap each other.
	Novl
)

var randomizerNames = []string{"circle", "shuffle", "novl"}

func (r Randomizer) String() string {
	if int(r) < len(randomizerNames) {
		return randomizerNames[r]
	}
	return fmt.Sprintf("Randomizer(%d)", r)
}

// Func returns the randomization function for r, or nil if r is unknown.
func (r Randomizer) Func() RandomizeFunc {
	switch r {
	case Circle:
		return CircleIntervals
	case Shuffle:
		return ShuffleIntervals
	case Novl:
		return NovlIntervals
	}
	return nil
}

// ParseRandomizer parses "circle", "shuffle" or "novl".
func ParseRandomizer(s string) (Randomizer, error) {
	for i, name := range randomizerNames {
		if s == name {
			return Randomizer(i), nil
		}
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown randomizer %q", s))
}

// Counter selects the overlap statistic.  The numeric values appear in the
// "counter" field of the output record.
type Counter uint8

const (
	// Any counts A intervals overlapping some B interval.
	Any Counter = iota
	// All counts every overlapping (A, B) pair.
	All
)

var counterNames = []string{"any", "all"}

func (c Counter) String() string {
	if int(c) < len(counterNames) {
		return counterNames[c]
	}
	return fmt.Sprintf("Counter(%d)", c)
}

// Func returns the statistic for c, or nil if c is unknown.
func (c Counter) Func() CountFunc {
	switch c {
	case Any:
		return CountAny
	case All:
		return CountAll
	}
	return nil
}

// ParseCounter parses "any" or "all".
func ParseCounter(s string) (Counter, error) {
	for i, name := range counterNames {
		if s == name {
			return Counter(i), nil
		}
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown counter %q", s))
}

// Opts configures Run.
type Opts struct {
	// NumTimes is the number of permutation trials.
	NumTimes int
	// Threads is the number of trial workers.
	Threads int
	// NoMerge skips merging overlapping intervals within A and within B.
	NoMerge bool
	// NoSwap keeps A as the randomized set even if it has more intervals than
	// B.  By default the sets are swapped so the smaller one is randomized.
	NoSwap bool
	// PerChrom keeps randomized intervals on their original chromosome.
	PerChrom bool
	Count    Counter
	Random   Randomizer
	// Seed, if nonzero, makes the run reproducible.
	Seed uint64
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	NumTimes: 100,
	Threads:  1,
	Count:    Any,
	Random:   Shuffle,
}

// Validate checks that o can be passed to Run.
func (o Opts) Validate() error {
	if o.NumTimes < 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("num-times must be positive, got %d", o.NumTimes))
	}
	if o.Threads < 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("threads must be positive, got %d", o.Threads))
	}
	if o.Count.Func() == nil {
		return errors.E(errors.Invalid, fmt.Sprintf("unknown counter %v", o.Count))
	}
	if o.Random.Func() == nil {
		return errors.E(errors.Invalid, fmt.Sprintf("unknown randomizer %v", o.Random))
	}
	return nil
}

// Result is the outcome of Run.  A and B refer to the sets after any swap.
type Result struct {
	PValue   float64
	ZScore   float64
	Obs      uint64
	PermMu   float64
	PermSD   float64
	Alt      Alternative
	N        int
	Swapped  bool
	NoMerge  bool
	Random   Randomizer
	Counter  Counter
	ACount   int
	BCount   int
	PerChrom bool
	Perms    []uint64
}

// Run tests whether the overlap between a and b is unusual under the null
// model opts.Random.  Unless opts.NoMerge is set, a and b are merged in
// place first.  The smaller set becomes the randomized one unless
// opts.NoSwap is set.
func Run(opts Opts, g *genome.Genome, a, b *interval.Set) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if !opts.NoMerge {
		log.Printf("merging overlaps")
		a.MergeOverlaps()
		b.MergeOverlaps()
	}
	swapped := false
	if !opts.NoSwap && a.Len() > b.Len() {
		log.Printf("swapping A for shorter B")
		a, b = b, a
		swapped = true
	}
	count := opts.Count.Func()
	randomize := opts.Random.Func()
	if opts.Random == Novl {
		g = g.WithGapBudget(BuildGapBudget(g, a, opts.PerChrom))
	}

	obs := count(a, b)
	log.Printf("%d intersections", obs)

	trials, err := RunTrials(TrialOpts{
		NumTimes: opts.NumTimes,
		Threads:  opts.Threads,
		PerChrom: opts.PerChrom,
		Seed:     opts.Seed,
	}, a, b, g, randomize, count)
	if err != nil {
		return Result{}, err
	}
	s := Summarize(obs, trials)
	log.Printf("perm mu: %v", s.Mu)
	log.Printf("perm sd: %v", s.SD)
	log.Printf("alt: %v", s.Alt)
	log.Printf("p-val: %v", s.PValue)

	return Result{
		PValue:   s.PValue,
		ZScore:   s.ZScore,
		Obs:      obs,
		PermMu:   s.Mu,
		PermSD:   s.SD,
		Alt:      s.Alt,
		N:        opts.NumTimes,
		Swapped:  swapped,
		NoMerge:  opts.NoMerge,
		Random:   opts.Random,
		Counter:  opts.Count,
		ACount:   a.Len(),
		BCount:   b.Len(),
		PerChrom: opts.PerChrom,
		Perms:    trials,
	}, nil
}
