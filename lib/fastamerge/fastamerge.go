//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package fastamerge merges per-accession FASTA files into a single set
// suitable for building a BLAST database, rewriting record identifiers to a
// BLAST-friendly form and suppressing duplicates.
package fastamerge

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"gopkg.in/fatih/set.v0"
)

// Stats reports what happened to one merged group.
type Stats struct {
	Merged     int // sequences written
	Duplicates int // identifiers skipped as already seen
	Missing    int // accessions without a sequence file
}

// ReadList parses a one-accession-per-line list file. Blank lines and lines
// starting with # are skipped.
func ReadList(path string) (accessions []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		accessions = append(accessions, line)
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return accessions, nil
}

// ParseAlphabet maps a name to a sequence alphabet.
func ParseAlphabet(name string) (alphabet.Alphabet, error) {
	switch strings.ToLower(name) {
	case "dna":
		return alphabet.DNA, nil
	case "rna":
		return alphabet.RNA, nil
	case "protein":
		return alphabet.Protein, nil
	}
	return nil, fmt.Errorf("unknown alphabet %q", name)
}

// BlastFriendly rewrites a record identifier to "<accession>|<id>" with
// spaces replaced, since BLAST database identifiers cannot contain spaces.
func BlastFriendly(accession, id string) string {
	return accession + "|" + strings.ReplaceAll(id, " ", "_")
}

// MergeGroup reads <dir>/<accession>.fasta for every accession and appends
// the renamed records to w. Accessions without a file are counted as
// missing, identifiers already written are counted as duplicates and
// skipped.
func MergeGroup(w *fasta.Writer, dir string, accessions []string, alpha alphabet.Alphabet) (Stats, error) {
	var st Stats
	seen := set.New(set.NonThreadSafe)
	for _, acc := range accessions {
		path := filepath.Join(dir, acc+".fasta")
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			st.Missing++
			continue
		} else if err != nil {
			return st, err
		}
		r := fasta.NewReader(f, linear.NewSeq("", nil, alpha))
		sc := seqio.NewScanner(r)
		for sc.Next() {
			s := sc.Seq().(*linear.Seq)
			s.ID = BlastFriendly(acc, s.ID)
			if seen.Has(s.ID) {
				st.Duplicates++
				continue
			}
			seen.Add(s.ID)
			if _, err := w.Write(s); err != nil {
				f.Close()
				return st, err
			}
			st.Merged++
		}
		if err := sc.Error(); err != nil {
			f.Close()
			return st, err
		}
		f.Close()
	}
	return st, nil
}
