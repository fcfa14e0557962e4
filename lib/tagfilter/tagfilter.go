//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package tagfilter removes auxiliary fields from SAM records by two-letter
// tag ID, keeping either a white list or, inverted, everything but a black
// list.
package tagfilter

import (
	"fmt"

	"github.com/biogo/hts/sam"

	"gopkg.in/fatih/set.v0"
)

// A Filter selects which auxiliary fields of a record survive.
type Filter struct {
	tags   set.Interface
	invert bool
}

// New returns a Filter keeping only the named tags, or removing them when
// invert is true. Tag IDs must be two characters long.
func New(tags []string, invert bool) (*Filter, error) {
	ts := set.New(set.NonThreadSafe)
	for _, t := range tags {
		if len(t) != 2 {
			return nil, fmt.Errorf("invalid tag ID %q: must be two characters", t)
		}
		ts.Add(t)
	}
	return &Filter{tags: ts, invert: invert}, nil
}

// Keep reports whether the tag with the given ID survives the filter.
func (f *Filter) Keep(id sam.Tag) bool {
	return f.tags.Has(id.String()) != f.invert
}

// Apply rewrites the auxiliary fields of r in place, dropping the fields
// rejected by the filter.
func (f *Filter) Apply(r *sam.Record) {
	kept := r.AuxFields[:0]
	for _, aux := range r.AuxFields {
		if f.Keep(aux.Tag()) {
			kept = append(kept, aux)
		}
	}
	r.AuxFields = kept
}
