// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package permtest

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeAllZero(t *testing.T) {
	trials := make([]uint64, 1000)
	s := Summarize(0, trials)
	assert.Equal(t, 0.0, s.Mu)
	assert.Equal(t, 0.0, s.SD)
	assert.Equal(t, Greater, s.Alt)
	assert.Equal(t, 0.0, s.ZScore)
	assert.Equal(t, 1.0, s.PValue)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		obs    uint64
		trials []uint64
		mu, sd float64
		alt    Alternative
		pval   float64
	}{
		// Population sd of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
		{9, []uint64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2, Greater, 2.0 / 9},
		{10, []uint64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2, Greater, 1.0 / 9},
		{1, []uint64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2, Less, 1.0 / 9},
		{4, []uint64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2, Less, 5.0 / 9},
		{5, []uint64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2, Greater, 5.0 / 9},
	}
	for _, tt := range tests {
		s := Summarize(tt.obs, tt.trials)
		assert.InDelta(t, tt.mu, s.Mu, 1e-12)
		assert.InDelta(t, tt.sd, s.SD, 1e-12)
		assert.Equal(t, tt.alt, s.Alt, "obs %d", tt.obs)
		assert.InDelta(t, tt.pval, s.PValue, 1e-12, "obs %d", tt.obs)
		assert.InDelta(t, (float64(tt.obs)-tt.mu)/tt.sd, s.ZScore, 1e-12)
	}
}

func TestSummarizeConstantTrials(t *testing.T) {
	s := Summarize(3, []uint64{1, 1, 1})
	assert.Equal(t, Greater, s.Alt)
	assert.Equal(t, 0.25, s.PValue)
	assert.True(t, math.IsInf(s.ZScore, 1))
}

func TestPValueBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 9))
	for trial := 0; trial < 500; trial++ {
		n := 1 + r.IntN(50)
		trials := make([]uint64, n)
		for i := range trials {
			trials[i] = r.Uint64N(20)
		}
		obs := r.Uint64N(25)
		s := Summarize(obs, trials)
		assert.True(t, s.PValue > 0 && s.PValue <= 1, "p %v", s.PValue)
		if tailCount(obs, trials, s.Alt) == 0 {
			assert.Equal(t, 1/float64(n+1), s.PValue)
		}
	}
}

func TestAlternativeText(t *testing.T) {
	b, err := Less.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "l", string(b))
	assert.Equal(t, "g", Greater.String())
}
