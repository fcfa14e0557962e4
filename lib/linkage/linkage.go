//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package linkage converts mapped paired-end alignments into the tabulated
// linkage records used by assembly scaffolders: one line per pair giving the
// reference span of each mate. Pairs are reconstructed from the read-one
// record alone, using its mate fields, so the input does not need to be name
// sorted and each pair is emitted exactly once.
package linkage

import (
	"bufio"
	"fmt"
	"io"

	"github.com/biogo/hts/sam"
)

// Record is one linkage line: the 1-based inclusive spans of both mates of
// an accepted pair.
type Record struct {
	Ref1   string
	Start1 int
	End1   int
	Ref2   string
	Start2 int
	End2   int
}

// Stats holds the running counters of one extraction pass.
type Stats struct {
	Reads   uint64 // alignment records seen
	Pairs   uint64 // linkage records emitted
	Crossed uint64 // pairs spanning two references

	// Observed |TLEN| range among same-reference pairs with a non-zero
	// template length.
	MinTempLen int
	MaxTempLen int

	seenTempLen bool
}

// HasTempLen reports whether MinTempLen and MaxTempLen are valid.
func (s Stats) HasTempLen() bool { return s.seenTempLen }

func (s *Stats) foldTempLen(tlen int) {
	if !s.seenTempLen {
		s.MinTempLen, s.MaxTempLen = tlen, tlen
		s.seenTempLen = true
		return
	}
	if tlen < s.MinTempLen {
		s.MinTempLen = tlen
	}
	if tlen > s.MaxTempLen {
		s.MaxTempLen = tlen
	}
}

// A LengthFunc reports the mapped length of a record on its reference. The
// same length is used for the mate, whose CIGAR is not available on this
// record.
type LengthFunc func(r *sam.Record) int

// ConstLength returns a LengthFunc reporting n for every record. ConstLength(1)
// is the historical placeholder used when the true mapped length is not
// wanted; spans then degenerate to the leftmost (forward) or rightmost
// (reverse) mapped position.
func ConstLength(n int) LengthFunc {
	return func(*sam.Record) int { return n }
}

// CigarLength sums the reference-consuming operations of the record CIGAR.
func CigarLength(r *sam.Record) int {
	var l int
	for _, co := range r.Cigar {
		l += co.Len() * co.Type().Consumes().Reference
	}
	return l
}

// An Extractor derives linkage records from alignment records.
type Extractor struct {
	// MappedLength is the mapped-length policy applied to both mates.
	MappedLength LengthFunc

	stats Stats
}

// NewExtractor returns an Extractor using the given mapped-length policy,
// or ConstLength(1) when length is nil.
func NewExtractor(length LengthFunc) *Extractor {
	if length == nil {
		length = ConstLength(1)
	}
	return &Extractor{MappedLength: length}
}

// usable reports whether f describes the read-one record of a pair with
// both mates uniquely and primarily placed. Bits are checked independently;
// unknown bits are ignored.
func usable(f sam.Flags) bool {
	if f&sam.Paired == 0 ||
		f&sam.Unmapped != 0 ||
		f&sam.MateUnmapped != 0 ||
		f&sam.Read2 != 0 || f&sam.Read1 == 0 ||
		f&sam.Secondary != 0 || f&sam.Supplementary != 0 ||
		f&sam.QCFail != 0 ||
		f&sam.Duplicate != 0 {
		return false
	}
	return true
}

// span converts a 0-based leftmost position into the 1-based inclusive
// interval covered by a mate of the given mapped length. On the reverse
// strand the leftmost position is the span end.
func span(pos, length int, reverse bool) (start, end int) {
	if reverse {
		end = pos + 1
		start = end - length + 1
		return start, end
	}
	start = pos + 1
	end = start + length - 1
	return start, end
}

// Extract derives the linkage record for r, updating the pass counters.
// ok is false when r was rejected; rejected records only increment the
// read counter.
func (e *Extractor) Extract(r *sam.Record) (rec Record, ok bool) {
	e.stats.Reads++
	if !usable(r.Flags) {
		return rec, false
	}
	length := e.MappedLength(r)
	rec.Ref1 = r.Ref.Name()
	rec.Start1, rec.End1 = span(r.Pos, length, r.Flags&sam.Reverse != 0)
	// The "=" mate reference is already aliased to Ref by the SAM parser,
	// so Ref2 is always the literal name.
	rec.Ref2 = r.MateRef.Name()
	rec.Start2, rec.End2 = span(r.MatePos, length, r.Flags&sam.MateReverse != 0)
	e.stats.Pairs++
	if rec.Ref1 == rec.Ref2 {
		if tlen := abs(r.TempLen); tlen != 0 {
			e.stats.foldTempLen(tlen)
		}
	} else {
		e.stats.Crossed++
	}
	return rec, true
}

// Run streams records from rr until EOF, writing one tab-separated line per
// accepted pair to w. Any read error aborts the pass.
func (e *Extractor) Run(rr sam.RecordReader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for {
		r, err := rr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		rec, ok := e.Extract(r)
		if !ok {
			continue
		}
		_, err = fmt.Fprintf(bw, "%s\t%d\t%d\t%s\t%d\t%d\n", rec.Ref1, rec.Start1, rec.End1, rec.Ref2, rec.Start2, rec.End2)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Stats returns a copy of the running counters.
func (e *Extractor) Stats() Stats { return e.stats }

// WriteSummary writes the human-readable end-of-pass report to w.
func (e *Extractor) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "Extracted %d pairs from %d reads\n", e.stats.Pairs, e.stats.Reads)
	fmt.Fprintf(w, "Of these, %d pairs are mapped to different contigs\n", e.stats.Crossed)
	if e.stats.HasTempLen() {
		fmt.Fprintf(w, "Size range when mapped to same contig %d to %d\n", e.stats.MinTempLen, e.stats.MaxTempLen)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
