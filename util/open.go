// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package util contains the file helpers shared by the interval, genome
// and permtest packages.
package util

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
)

// Reader is an input file opened by Open.  Close releases both the
// decompressor, if any, and the underlying file.
type Reader struct {
	io.Reader
	ctx context.Context
	in  file.File
	gz  *gzip.Reader
}

// Open opens path for reading.  Paths that fileio identifies as gzip are
// decompressed transparently.
func Open(ctx context.Context, path string) (*Reader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open", path)
	}
	r := &Reader{Reader: in.Reader(ctx), ctx: ctx, in: in}
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if r.gz, err = gzip.NewReader(r.Reader); err != nil {
			_ = in.Close(ctx)
			return nil, errors.E(err, "gzip", path)
		}
		r.Reader = r.gz
	}
	return r, nil
}

// Close closes the file.
func (r *Reader) Close() (err error) {
	if r.gz != nil {
		err = r.gz.Close()
	}
	if cerr := r.in.Close(r.ctx); cerr != nil && err == nil {
		err = errors.E(cerr, "close", r.in.Name())
	}
	return
}
