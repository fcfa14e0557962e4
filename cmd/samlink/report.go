//
// Copyright (C) 2014-2023 Marc Gaillard
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"git.sr.ht/~mgaillard/AsmKit/lib/linkage"
)

func WriteReport(pathReport string, stats linkage.Stats) error {
	countReport := map[string]int64{
		"reads":              int64(stats.Reads),
		"pairs":              int64(stats.Pairs),
		"pairs_cross_contig": int64(stats.Crossed),
	}
	if stats.HasTempLen() {
		countReport["template_length_min"] = int64(stats.MinTempLen)
		countReport["template_length_max"] = int64(stats.MaxTempLen)
	}
	report, _ := json.MarshalIndent(countReport, "", "  ")
	if pathReport != "-" {
		if f, err := os.Create(pathReport); err != nil {
			return err
		} else {
			f.Write(report)
			f.Close()
		}
	} else {
		fmt.Println(string(report))
	}
	return nil
}
