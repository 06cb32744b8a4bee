// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package permtest estimates how significant the overlap between two interval
  sets is, by Monte Carlo permutation.

  One set (A) is repeatedly relocated on the genome under a null model, and
  an overlap statistic against the other set (B) is recomputed each time.
  The observation is then compared to the resulting distribution:

    mu, sd   population mean and standard deviation of the trials
    alt      'l' if obs < mu, else 'g'
    p-value  (#trials at least as extreme as obs in direction alt + 1) / (N + 1)
    z-score  (obs - mu) / sd

  Null models:

    shuffle  each interval moves to a uniformly random position
    circle   all intervals rotate by one random shift, wrapping around
    novl     intervals are placed so none overlap, interleaved with random gaps

  Overlap statistics:

    any      number of A intervals overlapping at least one B interval
    all      number of overlapping (A, B) pairs

  With per-chromosome mode, relocated intervals stay on their chromosome.
*/
package permtest
