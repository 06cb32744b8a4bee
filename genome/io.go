// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package genome

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/regioner/interval"
	"github.com/grailbio/regioner/util"
)

type genomeRow struct {
	Chrom  string `tsv:"chrom"`
	Length int64  `tsv:"length"`
}

// ReadChromSizes reads a two-column "name<TAB>length" genome file.  Lines
// starting with '#' are ignored.
func ReadChromSizes(r io.Reader) ([]ChromSize, error) {
	tsvReader := tsv.NewReader(r)
	tsvReader.Comment = '#'
	var sizes []ChromSize
	for {
		var row genomeRow
		if err := tsvReader.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(errors.Invalid, err)
		}
		if row.Length < 0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("genome: negative length %d for %s", row.Length, row.Chrom))
		}
		sizes = append(sizes, ChromSize{Name: row.Chrom, Length: interval.PosType(row.Length)})
	}
	return sizes, nil
}

// ReadGenome loads a (possibly gzipped) genome file and lays it out with
// mask applied.  mask may be nil.
func ReadGenome(ctx context.Context, path string, mask *Mask) (g *Genome, err error) {
	in, err := util.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	sizes, err := ReadChromSizes(in)
	if err != nil {
		return nil, errors.E(err, "read", path)
	}
	if g, err = New(sizes, mask); err != nil {
		return nil, errors.E(err, path)
	}
	log.Printf("genome loaded, %d chromosome(s), %d base(s).", len(g.chroms), g.Span)
	return g, nil
}

// ReadIntervals loads a (possibly gzipped) BED file onto g's axis.  Records
// on chromosomes g doesn't know, and records lying entirely in the mask, are
// skipped.
func ReadIntervals(ctx context.Context, path string, g *Genome) (s *interval.Set, err error) {
	in, err := util.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	var (
		ivs     []interval.Interval
		skipped int
	)
	err = interval.ScanBED(in, func(e interval.Entry) error {
		iv, ok := g.Map(e.ChrName, e.Start0, e.End)
		if !ok {
			skipped++
			return nil
		}
		ivs = append(ivs, iv)
		return nil
	})
	if err != nil {
		return nil, errors.E(err, "read", path)
	}
	if skipped > 0 {
		log.Printf("%s: skipped %d interval(s) outside the genome or inside the mask", path, skipped)
	}
	s = interval.NewSet(ivs)
	log.Debug.Printf("%s: loaded %d interval(s)", path, s.Len())
	return s, nil
}
