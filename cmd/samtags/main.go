//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// samtags is a SAM stream filter removing auxiliary tags. It reads SAM on
// stdin and writes SAM on stdout, forwarding the header unchanged. By
// default only the tags named with -tags are kept; with -invert the named
// tags are removed instead, like grep -v:
//
//	samtools view -h original.bam | samtags -tags RG | samtools view -S -b - > only_RG.bam
//	samtags -tags OQ -invert < original.sam > no_OQ.sam
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/biogo/hts/sam"

	"git.sr.ht/~mgaillard/AsmKit/lib/tagfilter"
)

var version = "DEV"

func main() {
	// Arguments
	var rawTags string
	var invert, printVersion bool
	flag.StringVar(&rawTags, "tags", "", "Two-letter tag ID(s) (comma separated)")
	flag.BoolVar(&invert, "invert", false, "Remove the named tags instead of keeping only them")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Parse raw arguments
	var tags []string
	if rawTags != "" {
		tags = strings.Split(rawTags, ",")
	}
	filter, err := tagfilter.New(tags, invert)
	if err != nil {
		log.Fatal(err)
	}
	if invert {
		fmt.Fprintf(os.Stderr, "Removing these tags: %s\n", strings.Join(tags, ", "))
	} else {
		fmt.Fprintf(os.Stderr, "Keeping only these tags: %s\n", strings.Join(tags, ", "))
	}

	// Open input
	rr, err := sam.NewReader(os.Stdin)
	if err != nil {
		log.Fatal(err)
	}

	// Open output, forwarding the header
	w, err := sam.NewWriter(os.Stdout, rr.Header(), sam.FlagDecimal)
	if err != nil {
		log.Fatal(err)
	}

	// Filter records
	for {
		r, err := rr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			log.Fatal(err)
		}
		filter.Apply(r)
		if err := w.Write(r); err != nil {
			log.Fatal(err)
		}
	}
}
