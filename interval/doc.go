// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package interval implements the half-open interval collections used by the
  overlap permutation test, along with BED loading.
  (Unlike a union, a Set keeps overlapping intervals separate until
  MergeOverlaps is called.)
  Positions are PosType, which is 64 bits wide since whole-genome
  coordinates are concatenated onto a single axis and exceed int32.
*/
package interval
