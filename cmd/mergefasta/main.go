//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// mergefasta prepares merged FASTA files to use for BLAST databases. Each
// list file names one group of accessions; the per-accession FASTA files
// are concatenated into one dated file per group with BLAST-friendly
// identifiers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/biogo/biogo/io/seqio/fasta"

	"golang.org/x/sync/errgroup"

	"git.sr.ht/~mgaillard/AsmKit/lib/fastamerge"
)

var version = "DEV"

func main() {
	// Arguments
	var pathListsRaw, dirSeq, dirOut, date, suffix, alphaRaw string
	var printVersion bool
	flag.StringVar(&pathListsRaw, "path_lists", "", "Path to group list file(s), one accession per line (comma separated)")
	flag.StringVar(&dirSeq, "dir_seq", "GenBank", "Directory holding <accession>.fasta files")
	flag.StringVar(&dirOut, "dir_out", ".", "Directory for merged output files")
	flag.StringVar(&date, "date", "", "Date stamp used in output filenames (default today)")
	flag.StringVar(&suffix, "suffix", "genes", "Suffix used in output filenames")
	flag.StringVar(&alphaRaw, "alphabet", "dna", "Sequence alphabet: 'dna', 'rna' or 'protein'")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Check arguments
	if pathListsRaw == "" {
		log.Fatal("No group list input")
	}
	pathLists := strings.Split(pathListsRaw, ",")
	for _, p := range pathLists {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			log.Fatalln(p, "not found")
		}
	}
	alpha, err := fastamerge.ParseAlphabet(alphaRaw)
	if err != nil {
		log.Fatal(err)
	}
	if date == "" {
		date = time.Now().Format("20060102")
	}

	// Merge each group; output files are independent so the groups can run
	// concurrently.
	var g errgroup.Group
	for _, pathList := range pathLists {
		pathList := pathList
		g.Go(func() error {
			group := strings.TrimSuffix(filepath.Base(pathList), filepath.Ext(pathList))
			accessions, err := fastamerge.ReadList(pathList)
			if err != nil {
				return err
			}
			pathOut := filepath.Join(dirOut, fmt.Sprintf("%s_%s_%s.fasta", group, date, suffix))
			f, err := os.Create(pathOut)
			if err != nil {
				return err
			}
			w := fasta.NewWriter(f, 60)
			st, err := fastamerge.MergeGroup(w, dirSeq, accessions, alpha)
			if err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s: %d sequences from %d accessions (%d duplicates skipped, %d accessions missing)\n",
				group, st.Merged, len(accessions), st.Duplicates, st.Missing)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
