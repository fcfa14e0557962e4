//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// fetchseq retrieves a set of sequences from NCBI Entrez in pages, retrying
// failed pages, and writes them to a file ready for mergefasta. NCBI
// requires a contact email address for E-utilities traffic.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/biogo/ncbi/entrez"
)

var version = "DEV"

const tool = "asmkit.fetchseq"

func main() {
	// Arguments
	var db, query, rettype, email, out string
	var retmax, retries int
	var printVersion bool
	flag.StringVar(&db, "db", "nuccore", "Entrez database to search")
	flag.StringVar(&query, "query", "", "Entrez search term")
	flag.StringVar(&rettype, "rettype", "fasta", "Format of the returned data")
	flag.StringVar(&email, "email", "", "Email address sent to the server (required)")
	flag.StringVar(&out, "out", "", "Destination of the returned data (default stdout)")
	flag.IntVar(&retmax, "retmax", 500, "Number of records retrieved per request")
	flag.IntVar(&retries, "retry", 5, "Number of attempts per page")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Check arguments
	if query == "" {
		log.Fatal("No search term")
	}
	if email == "" {
		log.Fatal("No email address")
	}

	h := entrez.History{}
	s, err := entrez.DoSearch(db, query, nil, &h, tool, email)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(os.Stderr, "Will retrieve %d records.\n", s.Count)

	var of *os.File
	if out == "" {
		of = os.Stdout
	} else {
		of, err = os.Create(out)
		if err != nil {
			log.Fatal(err)
		}
		defer of.Close()
	}

	var (
		buf   = &bytes.Buffer{}
		p     = &entrez.Parameters{RetMax: retmax, RetType: rettype, RetMode: "text"}
		bn, n int64
	)
	for p.RetStart = 0; p.RetStart < s.Count; p.RetStart += p.RetMax {
		fmt.Fprintf(os.Stderr, "Retrieving %d records starting from %d.\n", p.RetMax, p.RetStart)
		for t := 0; t < retries; t++ {
			buf.Reset()
			var (
				r   io.ReadCloser
				_bn int64
			)
			r, err = entrez.Fetch(db, p, tool, email, &h)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to retrieve on attempt %d... retrying.\n", t)
				continue
			}
			_bn, err = io.Copy(buf, r)
			bn += _bn
			r.Close()
			if err == nil {
				break
			}
			fmt.Fprintf(os.Stderr, "Failed to buffer on attempt %d... retrying.\n", t)
		}
		if err != nil {
			log.Fatalf("Exceeded retries: last error: %v", err)
		}

		_n, err := io.Copy(of, buf)
		n += _n
		if err != nil {
			log.Fatal(err)
		}
	}
	if bn != n {
		fmt.Fprintf(os.Stderr, "Writethrough mismatch: %d != %d\n", bn, n)
	}
}
