//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package coverage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/klauspost/compress/gzip"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const samText = "" +
	"@HD\tVN:1.5\tSO:coordinate\n" +
	"@SQ\tSN:chrA\tLN:10\n" +
	"@SQ\tSN:chrB\tLN:5\n" +
	"r1\t0\tchrA\t1\t60\t4M\t*\t0\t0\t*\t*\n" +
	"r2\t0\tchrA\t3\t60\t2M2D2M\t*\t0\t0\t*\t*\n" +
	"r3\t16\tchrB\t2\t60\t3M\t*\t0\t0\t*\t*\n" +
	"r4\t4\t*\t0\t0\t*\t*\t0\t0\t*\t*\n" +
	"r5\t256\tchrA\t1\t60\t4M\t*\t0\t0\t*\t*\n"

func readAll(c *check.C, text string) (*sam.Header, []*sam.Record) {
	rr, err := sam.NewReader(strings.NewReader(text))
	c.Assert(err, check.Equals, nil)
	var recs []*sam.Record
	for {
		r, err := rr.Read()
		if err == io.EOF {
			break
		}
		c.Assert(err, check.Equals, nil)
		recs = append(recs, r)
	}
	return rr.Header(), recs
}

func (s *S) TestAccumulate(c *check.C) {
	h, recs := readAll(c, samText)
	m := NewMatrix(h.Refs(), 1)
	for _, r := range recs {
		c.Assert(m.Accumulate(0, r, nil), check.Equals, nil)
	}
	// r1 covers chrA 0..3, r2 covers 2,3 then skips the deletion and
	// covers 6,7. r4 is unmapped and r5 secondary, both skipped.
	c.Check(m.depth["chrA"][0], check.DeepEquals, []float32{1, 1, 2, 2, 0, 0, 1, 1, 0, 0})
	c.Check(m.depth["chrB"][0], check.DeepEquals, []float32{0, 1, 1, 1, 0})
}

func (s *S) TestAccumulateRegions(c *check.C) {
	h, recs := readAll(c, samText)
	trees, err := BuildTrees([]Region{{Ref: "chrA", Start: 0, End: 2}})
	c.Assert(err, check.Equals, nil)
	m := NewMatrix(h.Refs(), 1)
	for _, r := range recs {
		c.Assert(m.Accumulate(0, r, trees), check.Equals, nil)
	}
	// Only r1 overlaps the chrA region; chrB has no region at all.
	c.Check(m.depth["chrA"][0], check.DeepEquals, []float32{1, 1, 1, 1, 0, 0, 0, 0, 0, 0})
	c.Check(m.depth["chrB"][0], check.DeepEquals, []float32{0, 0, 0, 0, 0})
}

func (s *S) TestWriteTo(c *check.C) {
	h, recs := readAll(c, samText)
	m := NewMatrix(h.Refs(), 2)
	for _, r := range recs {
		c.Assert(m.Accumulate(0, r, nil), check.Equals, nil)
	}
	var buf bytes.Buffer
	c.Assert(m.WriteTo(&buf), check.Equals, nil)
	c.Check(buf.String(), check.Equals, ""+
		">chrA\n"+
		"1\t1\t2\t2\t0\t0\t1\t1\t0\t0\n"+
		"0\t0\t0\t0\t0\t0\t0\t0\t0\t0\n"+
		">chrB\n"+
		"0\t1\t1\t1\t0\n"+
		"0\t0\t0\t0\t0\n")
}

func (s *S) TestOpenRegions(c *check.C) {
	path := filepath.Join(c.MkDir(), "regions.tab")
	err := os.WriteFile(path, []byte("# comment\nchrA\t0\t100\n\nchrB\t50\t60\n"), 0666)
	c.Assert(err, check.Equals, nil)
	regions, err := OpenRegions(path)
	c.Assert(err, check.Equals, nil)
	c.Check(regions, check.DeepEquals, []Region{
		{Ref: "chrA", Start: 0, End: 100},
		{Ref: "chrB", Start: 50, End: 60},
	})
}

func (s *S) TestOpenRegionsMalformed(c *check.C) {
	path := filepath.Join(c.MkDir(), "regions.tab")
	err := os.WriteFile(path, []byte("chrA\t0\n"), 0666)
	c.Assert(err, check.Equals, nil)
	_, err = OpenRegions(path)
	c.Check(err, check.Not(check.Equals), nil)
}

func (s *S) TestNewWriterGzip(c *check.C) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "gzip")
	c.Assert(err, check.Equals, nil)
	_, err = w.Write([]byte(">chrA\n1\t2\n"))
	c.Assert(err, check.Equals, nil)
	c.Assert(w.Close(), check.Equals, nil)
	zr, err := gzip.NewReader(&buf)
	c.Assert(err, check.Equals, nil)
	got, err := io.ReadAll(zr)
	c.Assert(err, check.Equals, nil)
	c.Check(string(got), check.Equals, ">chrA\n1\t2\n")
}

func (s *S) TestNewWriterUnknown(c *check.C) {
	_, err := NewWriter(io.Discard, "bzip2")
	c.Check(err, check.Not(check.Equals), nil)
}
