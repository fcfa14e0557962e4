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
	"os/exec"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Input locates a SAM (Binary=false) or BAM (Binary=true) stream. An empty
// Path or "-" means standard input.
type Input struct {
	Path   string
	Binary bool
}

func (in Input) stdin() bool {
	return in.Path == "" || in.Path == "-"
}

// Open opens the alignment stream described by in. If cmd is non-empty, the
// SAM stream is read from the standard output of cmd run with in.Path
// appended (for example "samtools view -h"). nWorker sets the number of BAM
// decompression workers. The returned file and pipe, when non-nil, must be
// closed by the caller.
func Open(in Input, cmd []string, nWorker int) (f *os.File, pp io.ReadCloser, rr sam.RecordReader, err error) {
	if in.Binary {
		f, err = os.Open(in.Path)
		if err != nil {
			return f, pp, rr, err
		}
		rr, err = bam.NewReader(f, nWorker)
		return f, pp, rr, err
	}
	if len(cmd) > 0 {
		cmd = append(cmd, in.Path)
		p := exec.Command(cmd[0], cmd[1:]...)
		if pp, err = p.StdoutPipe(); err != nil {
			return f, pp, rr, err
		}
		if err = p.Start(); err != nil {
			return f, pp, rr, err
		}
		rr, err = sam.NewReader(pp)
		return f, pp, rr, err
	}
	if in.stdin() {
		rr, err = sam.NewReader(os.Stdin)
		return f, pp, rr, err
	}
	f, err = os.Open(in.Path)
	if err != nil {
		return f, pp, rr, err
	}
	rr, err = sam.NewReader(f)
	return f, pp, rr, err
}

// Header reads only the header of the alignment stream described by in.
// It must not be used with standard input, which cannot be rewound.
func Header(in Input, cmd []string) (*sam.Header, error) {
	f, pp, rr, err := Open(in, cmd, 1)
	if err != nil {
		return nil, err
	}
	if f != nil {
		defer f.Close()
	}
	if pp != nil {
		defer pp.Close()
	}
	switch rr := rr.(type) {
	case *bam.Reader:
		return rr.Header(), nil
	case *sam.Reader:
		return rr.Header(), nil
	}
	return nil, nil
}
