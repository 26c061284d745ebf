//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package shift

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// RefMotif is one entry of a reference motif table: the expected base
// frequencies (rows A, C, G, T) around the enzyme cut site.
type RefMotif struct {
	Name  string
	Freqs [4][]float64
}

// Width returns the number of positions covered by the motif.
func (m RefMotif) Width() int {
	return len(m.Freqs[0])
}

// ReadRefMotifs parses a reference motif table: one or more blocks of a
// ">name" line followed by four whitespace-separated rows of frequencies
// (A, C, G, T).
func ReadRefMotifs(mpath string) ([]RefMotif, error) {
	mfos, err := os.Open(mpath)
	if err != nil {
		return nil, fmt.Errorf("reference motif file: %w", err)
	}
	defer mfos.Close()

	var motifs []RefMotif
	var cur *RefMotif
	var iRow int
	mscanner := bufio.NewScanner(mfos)
	for mscanner.Scan() {
		line := strings.TrimSpace(mscanner.Text())
		if len(line) == 0 {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if cur != nil && iRow != 4 {
				return nil, fmt.Errorf("%s: motif %s has %d rows, expected 4", mpath, cur.Name, iRow)
			}
			motifs = append(motifs, RefMotif{Name: strings.TrimSpace(line[1:])})
			cur = &motifs[len(motifs)-1]
			iRow = 0
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("%s: frequencies before first motif header", mpath)
		}
		if iRow == 4 {
			return nil, fmt.Errorf("%s: motif %s has more than 4 rows", mpath, cur.Name)
		}
		fields := strings.Fields(line)
		row := make([]float64, len(fields))
		for i, field := range fields {
			if row[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("%s: motif %s: invalid frequency %s", mpath, cur.Name, field)
			}
		}
		if iRow > 0 && len(row) != len(cur.Freqs[0]) {
			return nil, fmt.Errorf("%s: motif %s: rows of unequal width", mpath, cur.Name)
		}
		cur.Freqs[iRow] = row
		iRow++
	}
	if err := mscanner.Err(); err != nil {
		return nil, err
	}
	if cur != nil && iRow != 4 {
		return nil, fmt.Errorf("%s: motif %s has %d rows, expected 4", mpath, cur.Name, iRow)
	}
	if len(motifs) == 0 {
		return nil, fmt.Errorf("%s: no motif found", mpath)
	}
	return motifs, nil
}
