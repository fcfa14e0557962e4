//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package samio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const samText = "" +
	"@HD\tVN:1.5\n" +
	"@SQ\tSN:chrA\tLN:100\n" +
	"r1\t0\tchrA\t10\t60\t4M\t*\t0\t0\tACGT\t*\n" +
	"r2\t16\tchrA\t20\t60\t4M\t*\t0\t0\tACGT\t*\n"

func writeSAM(c *check.C) string {
	path := filepath.Join(c.MkDir(), "test.sam")
	err := os.WriteFile(path, []byte(samText), 0666)
	c.Assert(err, check.Equals, nil)
	return path
}

func (s *S) TestOpenSAMFile(c *check.C) {
	f, pp, rr, err := Open(Input{Path: writeSAM(c)}, nil, 1)
	c.Assert(err, check.Equals, nil)
	c.Assert(f, check.NotNil)
	c.Check(pp, check.IsNil)
	defer f.Close()

	var names []string
	for {
		r, err := rr.Read()
		if err == io.EOF {
			break
		}
		c.Assert(err, check.Equals, nil)
		names = append(names, r.Name)
	}
	c.Check(names, check.DeepEquals, []string{"r1", "r2"})
}

func (s *S) TestOpenMissingFile(c *check.C) {
	_, _, _, err := Open(Input{Path: filepath.Join(c.MkDir(), "absent.sam")}, nil, 1)
	c.Check(err, check.Not(check.Equals), nil)
}

func (s *S) TestHeader(c *check.C) {
	h, err := Header(Input{Path: writeSAM(c)}, nil)
	c.Assert(err, check.Equals, nil)
	c.Assert(len(h.Refs()), check.Equals, 1)
	c.Check(h.Refs()[0].Name(), check.Equals, "chrA")
	c.Check(h.Refs()[0].Len(), check.Equals, 100)
}

func (s *S) TestOpenCommand(c *check.C) {
	f, pp, rr, err := Open(Input{Path: writeSAM(c)}, []string{"cat"}, 1)
	c.Assert(err, check.Equals, nil)
	c.Check(f, check.IsNil)
	c.Assert(pp, check.NotNil)
	defer pp.Close()

	r, err := rr.Read()
	c.Assert(err, check.Equals, nil)
	c.Check(r.Name, check.Equals, "r1")
}
