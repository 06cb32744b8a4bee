// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package permtest

import (
	"context"
	"encoding/json"
	"math"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// jsonFloat encodes NaN and infinities as null rather than failing.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// resultJSON is the wire form of Result.
type resultJSON struct {
	PValue   jsonFloat   `json:"pval"`
	ZScore   jsonFloat   `json:"zscore"`
	Obs      uint64      `json:"obs"`
	PermMu   jsonFloat   `json:"perm_mu"`
	PermSD   jsonFloat   `json:"perm_sd"`
	Alt      Alternative `json:"alt"`
	N        int         `json:"n"`
	Swapped  bool        `json:"swapped"`
	NoMerge  bool        `json:"no_merge"`
	Random   Randomizer  `json:"random"`
	Counter  Counter     `json:"counter"`
	ACount   int         `json:"A_cnt"`
	BCount   int         `json:"B_cnt"`
	PerChrom bool        `json:"per_chrom"`
	Perms    []uint64    `json:"perms"`
}

// MarshalJSON encodes r as the output record.  A z-score that is infinite
// (zero deviation, nonzero observation) is written as null.
func (r Result) MarshalJSON() ([]byte, error) {
	perms := r.Perms
	if perms == nil {
		perms = []uint64{}
	}
	return json.Marshal(resultJSON{
		PValue:   jsonFloat(r.PValue),
		ZScore:   jsonFloat(r.ZScore),
		Obs:      r.Obs,
		PermMu:   jsonFloat(r.PermMu),
		PermSD:   jsonFloat(r.PermSD),
		Alt:      r.Alt,
		N:        r.N,
		Swapped:  r.Swapped,
		NoMerge:  r.NoMerge,
		Random:   r.Random,
		Counter:  r.Counter,
		ACount:   r.ACount,
		BCount:   r.BCount,
		PerChrom: r.PerChrom,
		Perms:    perms,
	})
}

// WriteResult writes r as JSON to path, replacing its contents.
func WriteResult(ctx context.Context, path string, r Result) (err error) {
	data, err := json.Marshal(r)
	if err != nil {
		return errors.E(err, "encode result")
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer func() {
		if cerr := out.Close(ctx); cerr != nil && err == nil {
			err = errors.E(cerr, "close", path)
		}
	}()
	if _, err = out.Writer(ctx).Write(data); err != nil {
		return errors.E(err, "write", path)
	}
	return nil
}
