// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

// See doc.go for documentation
import (
	"context"
	"flag"
	"runtime"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/regioner/genome"
	"github.com/grailbio/regioner/permtest"
)

var (
	genomePath = flag.String("genome", "", "Genome file: chromosome name and length, tab separated")
	bedAPath   = flag.String("bed-a", "", "BED file of regions to test")
	bedBPath   = flag.String("bed-b", "", "BED file of regions to test against")
	maskPath   = flag.String("mask", "", "Optional BED file of regions to remove from the genome")
	outputPath = flag.String("output", "", "Output JSON filename")
	numTimes   = flag.Int("num-times", permtest.DefaultOpts.NumTimes, "Number of permutation trials")
	threads    = flag.Int("threads", runtime.NumCPU(), "Number of trial workers")
	noMerge    = flag.Bool("no-merge", false, "Don't merge overlapping regions within each input")
	noSwap     = flag.Bool("no-swap", false, "Always randomize -bed-a, even if it has more regions than -bed-b")
	perChrom   = flag.Bool("per-chrom", false, "Keep randomized regions on their own chromosome")
	count      = flag.String("count", permtest.DefaultOpts.Count.String(), "Overlap statistic: 'any' or 'all'")
	random     = flag.String("random", permtest.DefaultOpts.Random.String(), "Null model: 'shuffle', 'circle' or 'novl'")
	seed       = flag.Uint64("seed", 0, "Random seed.  0 seeds from system entropy")
)

// checkExists returns an error if the named input doesn't exist.
func checkExists(ctx context.Context, flagName, path string) error {
	if path == "" {
		return errors.E(errors.Invalid, "-"+flagName+" is required")
	}
	if _, err := file.Stat(ctx, path); err != nil {
		return errors.E(err, "-"+flagName, path)
	}
	return nil
}

func parseOpts() (permtest.Opts, error) {
	opts := permtest.Opts{
		NumTimes: *numTimes,
		Threads:  *threads,
		NoMerge:  *noMerge,
		NoSwap:   *noSwap,
		PerChrom: *perChrom,
		Seed:     *seed,
	}
	var err error
	if opts.Count, err = permtest.ParseCounter(*count); err != nil {
		return opts, err
	}
	if opts.Random, err = permtest.ParseRandomizer(*random); err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}

func run(ctx context.Context, opts permtest.Opts) error {
	var mask *genome.Mask
	if *maskPath != "" {
		var err error
		if mask, err = genome.ReadMask(ctx, *maskPath); err != nil {
			return err
		}
	}
	g, err := genome.ReadGenome(ctx, *genomePath, mask)
	if err != nil {
		return err
	}
	log.Printf("genome: %d chromosomes, %d bases", len(g.Chromosomes()), g.Span)
	a, err := genome.ReadIntervals(ctx, *bedAPath, g)
	if err != nil {
		return err
	}
	b, err := genome.ReadIntervals(ctx, *bedBPath, g)
	if err != nil {
		return err
	}
	log.Printf("%s: %d regions, %s: %d regions", *bedAPath, a.Len(), *bedBPath, b.Len())
	res, err := permtest.Run(opts, g, a, b)
	if err != nil {
		return err
	}
	return permtest.WriteResult(ctx, *outputPath, res)
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a[len(a)-flag.NArg():], " "))
	}
	ctx := vcontext.Background()
	for _, in := range []struct{ name, path string }{
		{"genome", *genomePath},
		{"bed-a", *bedAPath},
		{"bed-b", *bedBPath},
	} {
		if err := checkExists(ctx, in.name, in.path); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *maskPath != "" {
		if err := checkExists(ctx, "mask", *maskPath); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *outputPath == "" {
		log.Fatalf("-output is required")
	}
	opts, err := parseOpts()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := run(ctx, opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
