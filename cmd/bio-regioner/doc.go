// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Command bio-regioner tests whether two sets of genomic regions overlap more
  or less than expected by chance.  The regions of -bed-a are repeatedly
  relocated at random on the genome given by -genome, the overlap with
  -bed-b is recounted after each relocation, and the observed overlap is
  compared against the resulting distribution.  If -bed-a has more regions
  than -bed-b, the two are swapped first unless -no-swap is given.

  The genome file has two tab-separated columns, chromosome name and
  length.  The BED files need at least three columns.  Any input may be
  gzipped.  Regions listed in -mask are removed from the genome before
  anything is placed on it.

  -random selects the null model:

    shuffle  each region moves to a uniform random position
    circle   all regions rotate together by one random shift
    novl     regions are laid out again in random order with random gaps,
             so that they never overlap each other

  -count selects the statistic: "any" counts regions of A that overlap some
  region of B, and "all" counts every overlapping pair.

  The result is one JSON object written to -output:

    {"pval": ..., "zscore": ..., "obs": ..., "perm_mu": ..., "perm_sd": ...,
     "alt": "g", "n": ..., "swapped": ..., "no_merge": ..., "random": 1,
     "counter": 0, "A_cnt": ..., "B_cnt": ..., "per_chrom": ..., "perms": [...]}

  Usage: bio-regioner -genome hg19.genome -bed-a a.bed -bed-b b.bed \
           -num-times 1000 -threads 8 -output result.json
*/
package main
