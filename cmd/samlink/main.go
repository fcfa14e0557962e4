//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// samlink converts mapped paired-end SAM/BAM data into the tab separated
// linkage format used by assembly scaffolders:
//
//	<contig1> <start1> <end1> <contig2> <start2> <end2>
//
// Pairs are identified from the FLAG field, not from read name suffixes, so
// any coordinate or name order is accepted.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"git.sr.ht/~mgaillard/AsmKit/lib/linkage"
	"git.sr.ht/~mgaillard/AsmKit/lib/samio"
)

var version = "DEV"

func main() {
	// Arguments: Input
	var pathSAM, pathBAM, rawSAMCmdIn string
	flag.StringVar(&pathSAM, "path_sam", "", "Path to SAM file (default stdin)")
	flag.StringVar(&pathBAM, "path_bam", "", "Path to BAM file")
	flag.StringVar(&rawSAMCmdIn, "sam_command_in", "", "Command line to execute for opening the SAM file (comma separated)")
	// Arguments: Mapped length
	var mappedLength int
	var lengthFromCigar bool
	flag.IntVar(&mappedLength, "mapped_length", 1, "Constant mapped length used for both mates")
	flag.BoolVar(&lengthFromCigar, "length_from_cigar", false, "Derive the mapped length from the CIGAR string instead of the constant")
	// Arguments: Output
	var pathTab, pathReport string
	var nWorker int
	var printVersion bool
	flag.StringVar(&pathTab, "path_tab", "-", "Path to linkage output (stdout with -)")
	flag.StringVar(&pathReport, "path_report", "", "Write JSON report to path (stdout with -)")
	flag.IntVar(&nWorker, "num_worker", 1, "Number of BAM decompression worker(s)")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	// Arguments: Parse
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Check arguments
	if pathSAM != "" && pathBAM != "" {
		log.Fatal("Options path_sam and path_bam are exclusive")
	}
	in := samio.Input{Path: pathSAM}
	if pathBAM != "" {
		if _, err := os.Stat(pathBAM); os.IsNotExist(err) {
			log.Fatalln(pathBAM, "not found")
		}
		in = samio.Input{Path: pathBAM, Binary: true}
	} else if pathSAM != "" && pathSAM != "-" {
		if _, err := os.Stat(pathSAM); os.IsNotExist(err) {
			log.Fatalln(pathSAM, "not found")
		}
	}
	var cmdIn []string
	if rawSAMCmdIn != "" {
		cmdIn = strings.Split(rawSAMCmdIn, ",")
	}

	// Mapped length policy
	length := linkage.ConstLength(mappedLength)
	if lengthFromCigar {
		length = linkage.CigarLength
	}

	// Open input
	f, pp, rr, err := samio.Open(in, cmdIn, nWorker)
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		defer f.Close()
	}
	if pp != nil {
		defer pp.Close()
	}

	// Open output
	out := os.Stdout
	if pathTab != "-" && pathTab != "" {
		out, err = os.Create(pathTab)
		if err != nil {
			log.Fatal(err)
		}
		defer out.Close()
	}

	// Extract
	e := linkage.NewExtractor(length)
	if err := e.Run(rr, out); err != nil {
		log.Fatal(err)
	}
	e.WriteSummary(os.Stderr)

	// Report
	if pathReport != "" {
		if err := WriteReport(pathReport, e.Stats()); err != nil {
			log.Fatal(err)
		}
	}
}
