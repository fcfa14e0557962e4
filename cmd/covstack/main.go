//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// covstack builds the stacked per-reference coverage matrix from one or
// more SAM/BAM files, one depth row per input. The output lists each
// reference as a ">name" line followed by the rows, and is the input of
// downstream stacked-coverage plotting.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/biogo/store/interval"

	"golang.org/x/sync/errgroup"

	"git.sr.ht/~mgaillard/AsmKit/lib/coverage"
	"git.sr.ht/~mgaillard/AsmKit/lib/samio"
)

var version = "DEV"

func main() {
	// Arguments: Input
	var pathSAMsRaw, pathBAMsRaw, rawSAMCmdIn, pathRegions string
	flag.StringVar(&pathSAMsRaw, "path_sam", "", "Path to SAM file(s) (comma separated)")
	flag.StringVar(&pathBAMsRaw, "path_bam", "", "Path to BAM file(s) (comma separated)")
	flag.StringVar(&rawSAMCmdIn, "sam_command_in", "", "Command line to execute for opening each of the SAM file (comma separated)")
	flag.StringVar(&pathRegions, "path_regions", "", "Path to regions file (ref<TAB>start<TAB>end); only overlapping alignments are counted")
	// Arguments: Output
	var pathCov, zip string
	var nWorker int
	var verbose, printVersion bool
	flag.StringVar(&pathCov, "path_cov", "stacks.cov", "Path to coverage matrix output")
	flag.StringVar(&zip, "zip", "", "Compress output: 'gzip', 'zstd', 'lz4' or 'lz4hc'")
	flag.IntVar(&nWorker, "num_worker", 1, "Number of BAM decompression worker(s)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	// Arguments: Parse
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Parse raw arguments
	var inputs []samio.Input
	if len(pathSAMsRaw) > 0 {
		for _, p := range strings.Split(pathSAMsRaw, ",") {
			if _, err := os.Stat(p); os.IsNotExist(err) {
				log.Fatalln(p, "not found")
			}
			inputs = append(inputs, samio.Input{Path: p, Binary: false})
		}
	}
	if len(pathBAMsRaw) > 0 {
		for _, p := range strings.Split(pathBAMsRaw, ",") {
			if _, err := os.Stat(p); os.IsNotExist(err) {
				log.Fatalln(p, "not found")
			}
			inputs = append(inputs, samio.Input{Path: p, Binary: true})
		}
	}
	if len(inputs) == 0 {
		log.Fatal("No SAM/BAM input")
	}
	var cmdIn []string
	if len(rawSAMCmdIn) > 0 {
		cmdIn = strings.Split(rawSAMCmdIn, ",")
	}

	// Regions
	var trees map[string]*interval.IntTree
	if pathRegions != "" {
		regions, err := coverage.OpenRegions(pathRegions)
		if err != nil {
			log.Fatal(err)
		}
		trees, err = coverage.BuildTrees(regions)
		if err != nil {
			log.Fatal(err)
		}
	}

	// Size the matrix from the first header
	h, err := samio.Header(inputs[0], cmdIn)
	if err != nil {
		log.Fatal(err)
	}
	if len(h.Refs()) == 0 {
		log.Fatal("No reference sequence in header")
	}
	m := coverage.NewMatrix(h.Refs(), len(inputs))

	// One row per input
	var g errgroup.Group
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if verbose {
				fmt.Fprintf(os.Stderr, "Opening %s\n", in.Path)
			}
			f, pp, rr, err := samio.Open(in, cmdIn, nWorker)
			if err != nil {
				return err
			}
			if f != nil {
				defer f.Close()
			}
			if pp != nil {
				defer pp.Close()
			}
			for {
				r, err := rr.Read()
				if err == io.EOF {
					break
				} else if err != nil {
					return err
				}
				if err := m.Accumulate(i, r, trees); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}

	// Write matrix
	f, err := os.Create(pathCov)
	if err != nil {
		log.Fatal(err)
	}
	w, err := coverage.NewWriter(f, zip)
	if err != nil {
		log.Fatal(err)
	}
	if err := m.WriteTo(w); err != nil {
		log.Fatal(err)
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
}
