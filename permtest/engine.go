// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package permtest

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/regioner/genome"
	"github.com/grailbio/regioner/interval"
)

// TrialOpts configures RunTrials.
type TrialOpts struct {
	// NumTimes is the number of trials.  Must be positive.
	NumTimes int
	// Threads is the number of workers.  Must be positive.
	Threads int
	// PerChrom is passed through to the randomizer.
	PerChrom bool
	// Seed, if nonzero, makes the trials reproducible for a fixed Threads.
	// Otherwise the base seed is drawn from crypto/rand.
	Seed uint64
}

// entropySeed returns a base seed drawn from the system entropy source.
func entropySeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		log.Error.Printf("crypto/rand: %v; seeding from the clock", err)
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// deriveSeed mixes a parent seed and a stream identifier with a SplitMix64
// finalizer.  Distinct streams give unrelated seeds for the same parent.
func deriveSeed(parent, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// workerRand returns the random stream for worker jobIdx.
func workerRand(base uint64, jobIdx int) *rand.Rand {
	stream := 2 * uint64(jobIdx)
	return rand.New(rand.NewPCG(deriveSeed(base, stream), deriveSeed(base, stream+1)))
}

// chunkBounds returns the half-open trial range run by worker jobIdx:
// contiguous chunks of ceil(numTimes/threads) trials, the last ones possibly
// short or empty.
func chunkBounds(numTimes, threads, jobIdx int) (startIter, stopIter int) {
	chunkSize := (numTimes + threads - 1) / threads
	startIter = jobIdx * chunkSize
	stopIter = startIter + chunkSize
	if stopIter > numTimes {
		stopIter = numTimes
	}
	if startIter > stopIter {
		startIter = stopIter
	}
	return
}

// RunTrials runs opts.NumTimes independent trials, each randomizing a and
// counting its overlap with b, and returns the trial statistics.  The order
// of the result is unspecified.  Each worker runs one contiguous chunk of
// trials on its own clones of a, b and g with its own random stream; a, b and
// g are only read.  The first randomizer error aborts the run.
func RunTrials(opts TrialOpts, a, b *interval.Set, g *genome.Genome, randomize RandomizeFunc, count CountFunc) ([]uint64, error) {
	if opts.NumTimes < 1 || opts.Threads < 1 {
		return nil, errors.E(errors.Invalid, "permtest.RunTrials: num-times and threads must be positive")
	}
	base := opts.Seed
	if base == 0 {
		base = entropySeed()
	}
	results := make([][]uint64, opts.Threads)
	err := traverse.Each(opts.Threads, func(jobIdx int) error {
		startIter, stopIter := chunkBounds(opts.NumTimes, opts.Threads, jobIdx)
		if startIter == stopIter {
			return nil
		}
		var (
			mA      = a.Clone()
			mB      = b.Clone()
			mGenome = g.Clone()
			r       = workerRand(base, jobIdx)
			counts  = make([]uint64, 0, stopIter-startIter)
		)
		for i := startIter; i < stopIter; i++ {
			shuffled, err := randomize(mA, mGenome, opts.PerChrom, r)
			if err != nil {
				return err
			}
			counts = append(counts, count(shuffled, mB))
		}
		results[jobIdx] = counts
		log.Debug.Printf("worker %d: finished trials [%d, %d)", jobIdx, startIter, stopIter)
		return nil
	})
	if err != nil {
		return nil, err
	}
	all := make([]uint64, 0, opts.NumTimes)
	for _, counts := range results {
		all = append(all, counts...)
	}
	return all, nil
}
