// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package permtest

import (
	"github.com/grailbio/base/log"
	"gonum.org/v1/gonum/stat"
)

// Alternative is the direction of the test: whether the observed statistic
// is judged against the lower or the upper tail of the trials.
type Alternative byte

const (
	// Less means the observed statistic is below the permutation mean.
	Less Alternative = 'l'
	// Greater means the observed statistic is at or above the permutation
	// mean.
	Greater Alternative = 'g'
)

func (a Alternative) String() string {
	return string(rune(a))
}

// MarshalText encodes a as its one-letter code.
func (a Alternative) MarshalText() ([]byte, error) {
	return []byte{byte(a)}, nil
}

// Summary describes an observed statistic against its permutation
// distribution.
type Summary struct {
	// Mu and SD are the population mean and standard deviation of the trials.
	Mu, SD float64
	Alt    Alternative
	// PValue is the add-one-smoothed fraction of trials at least as extreme
	// as the observation, in the direction of Alt.  It lies in (0, 1].
	PValue float64
	ZScore float64
}

// tailCount returns the number of trials at least as extreme as obs: those
// <= obs for Less and those >= obs for Greater.
func tailCount(obs uint64, trials []uint64, alt Alternative) int {
	n := 0
	for _, x := range trials {
		if (alt == Less && x <= obs) || (alt == Greater && x >= obs) {
			n++
		}
	}
	return n
}

// Summarize reduces trials and the observation obs to a Summary.  When the
// trials and the observation are all zero the z-score is undefined; it is
// reported as 0 and a diagnostic is logged.
func Summarize(obs uint64, trials []uint64) Summary {
	if len(trials) == 0 {
		return Summary{Alt: Greater, PValue: 1}
	}
	xs := make([]float64, len(trials))
	for i, x := range trials {
		xs[i] = float64(x)
	}
	var s Summary
	s.Mu, s.SD = stat.PopMeanStdDev(xs, nil)
	o := float64(obs)
	s.Alt = Greater
	if o < s.Mu {
		s.Alt = Less
	}
	s.PValue = float64(tailCount(obs, trials, s.Alt)+1) / float64(len(trials)+1)
	if obs == 0 && s.Mu == 0 {
		log.Error.Printf("z-score cannot be computed: observed and permuted counts are all zero")
	} else {
		s.ZScore = stat.StdScore(o, s.Mu, s.SD)
	}
	return s
}
