// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package genome lays a genome's chromosomes end to end on one coordinate
// axis, optionally squeezing out masked ranges, and maps BED records onto
// that axis.
package genome
