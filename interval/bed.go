// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package interval

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/regioner/util"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// Entry represents a single BED record, with 0-based coordinates.
type Entry struct {
	ChrName string
	Start0  PosType
	End     PosType
}

var (
	bedTrack   = []byte("track")
	bedBrowser = []byte("browser")
)

// isBEDHeader returns whether the first token of a line marks a comment or
// one of the UCSC header lines.
func isBEDHeader(first []byte) bool {
	return first[0] == '#' || bytes.Equal(first, bedTrack) || bytes.Equal(first, bedBrowser)
}

// ScanBED calls fn on every record in a BED stream, in file order.  Only the
// first three columns are interpreted.  Input need not be sorted, and
// overlapping records are passed through unchanged.  Scanning stops at the
// first error returned by fn.
func ScanBED(reader io.Reader, fn func(Entry) error) error {
	scanner := bufio.NewScanner(reader)
	var tokens [3][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 || isBEDHeader(tokens[0]) {
			continue
		}
		if nToken != 3 {
			return errors.E(errors.Invalid, fmt.Sprintf("interval.ScanBED: line %d has fewer tokens than expected", lineIdx))
		}
		start, err := strconv.ParseUint(gunsafe.BytesToString(tokens[1]), 10, 64)
		if err != nil {
			return errors.E(errors.Invalid, err, fmt.Sprintf("interval.ScanBED: line %d", lineIdx))
		}
		end, err := strconv.ParseUint(gunsafe.BytesToString(tokens[2]), 10, 64)
		if err != nil {
			return errors.E(errors.Invalid, err, fmt.Sprintf("interval.ScanBED: line %d", lineIdx))
		}
		if end < start {
			return errors.E(errors.Invalid, fmt.Sprintf("interval.ScanBED: invalid coordinate pair on line %d", lineIdx))
		}
		// The chromosome name must be copied, since it refers to bytes on
		// curLine that will be overwritten soon.
		entry := Entry{ChrName: string(tokens[0]), Start0: PosType(start), End: PosType(end)}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// NewEntriesFromPath loads every record of a (possibly gzipped) BED file.
func NewEntriesFromPath(ctx context.Context, path string) (entries []Entry, err error) {
	in, err := util.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	err = ScanBED(in, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, errors.E(err, "read", path)
	}
	return entries, nil
}
