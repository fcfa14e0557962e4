//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package coverage accumulates per-position alignment depth over the
// references of a SAM/BAM header, one depth row per input file, and writes
// the stacked matrix consumed by downstream coverage plotting.
package coverage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
	"github.com/biogo/store/interval"
)

// Region is a half-open interval on a named reference.
type Region struct {
	Ref   string
	Start int
	End   int
}

// OpenRegions parses a three-column tabulated file of ref, start and end
// (0-based, half-open). Blank lines and lines starting with # are skipped.
func OpenRegions(path string) (regions []Region, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("region line %q: expected 3 tab-separated fields", line)
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, err
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, err
		}
		regions = append(regions, Region{Ref: fields[0], Start: start, End: end})
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}

type regionInterval struct {
	start, end int
	id         uintptr
}

func (i regionInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.end > b.Start && i.start < b.End
}

func (i regionInterval) ID() uintptr { return i.id }

func (i regionInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.start, End: i.end}
}

// BuildTrees builds one interval tree per reference from regions.
func BuildTrees(regions []Region) (map[string]*interval.IntTree, error) {
	trees := make(map[string]*interval.IntTree)
	for i, rg := range regions {
		t, ok := trees[rg.Ref]
		if !ok {
			t = &interval.IntTree{}
			trees[rg.Ref] = t
		}
		err := t.Insert(regionInterval{start: rg.Start, end: rg.End, id: uintptr(i)}, false)
		if err != nil {
			return nil, err
		}
	}
	for _, t := range trees {
		t.AdjustRanges()
	}
	return trees, nil
}

// Matrix holds one row of per-position depths per input file for each
// reference of a SAM/BAM header. Rows belonging to different inputs are
// independent, so concurrent Accumulate calls are safe as long as each
// input uses its own row.
type Matrix struct {
	names []string
	depth map[string][][]float32
}

// NewMatrix sizes a Matrix from the header references for nRows inputs.
func NewMatrix(refs []*sam.Reference, nRows int) *Matrix {
	m := Matrix{depth: make(map[string][][]float32, len(refs))}
	for _, ref := range refs {
		m.names = append(m.names, ref.Name())
		rows := make([][]float32, nRows)
		for i := range rows {
			rows[i] = make([]float32, ref.Len())
		}
		m.depth[ref.Name()] = rows
	}
	return &m
}

// Accumulate adds the depth of r to the given row. Unmapped, secondary and
// supplementary records are skipped. When trees is non-nil, only records
// overlapping a region are counted. Records referencing a sequence missing
// from the header are an error.
func (m *Matrix) Accumulate(row int, r *sam.Record, trees map[string]*interval.IntTree) error {
	if r.Flags&sam.Unmapped != 0 || r.Flags&sam.Secondary != 0 || r.Flags&sam.Supplementary != 0 {
		return nil
	}
	name := r.Ref.Name()
	rows, ok := m.depth[name]
	if !ok {
		return fmt.Errorf("reference %q not in header", name)
	}
	if trees != nil {
		t, ok := trees[name]
		if !ok {
			return nil
		}
		hits := t.Get(regionInterval{start: r.Pos, end: r.End()})
		if len(hits) == 0 {
			return nil
		}
	}
	depth := rows[row]
	pos := r.Pos
	for _, co := range r.Cigar {
		con := co.Type().Consumes()
		lr := co.Len() * con.Reference
		if con.Query == 1 && con.Reference == 1 {
			for p := pos; p < pos+lr && p < len(depth); p++ {
				if p >= 0 {
					depth[p]++
				}
			}
		}
		pos += lr
	}
	return nil
}

// WriteTo writes the matrix as one ">name" line per reference followed by
// one tab-separated row of depths per input, in header order.
func (m *Matrix) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range m.names {
		if _, err := fmt.Fprintf(bw, ">%s\n", name); err != nil {
			return err
		}
		for _, row := range m.depth[name] {
			for i, v := range row {
				if i > 0 {
					bw.WriteByte('\t')
				}
				bw.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
