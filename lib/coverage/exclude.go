//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package coverage

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"
)

// IntInterval is an integer interval with half-open indexing.
type IntInterval struct {
	Start, End int
	UID        uintptr
}

func (i IntInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.End > b.Start && i.Start < b.End
}

func (i IntInterval) ID() uintptr {
	return i.UID
}

func (i IntInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

// Exclude holds per-chromosome trees of regions whose cut sites are dropped
// from the track (e.g. a blacklist).
type Exclude struct {
	trees map[string]*interval.IntTree
}

// OpenExclude parses a BED file (3+ columns) of regions to exclude.
func OpenExclude(bpath string) (*Exclude, error) {
	bfos, err := os.Open(bpath)
	if err != nil {
		return nil, err
	}
	defer bfos.Close()

	e := &Exclude{trees: make(map[string]*interval.IntTree)}
	var uid uintptr
	bscanner := bufio.NewScanner(bfos)
	for bscanner.Scan() {
		line := bscanner.Text()
		if len(line) == 0 || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("%s: expected at least 3 columns, got %d", bpath, len(fields))
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid start %s", bpath, fields[1])
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid end %s", bpath, fields[2])
		}
		// New tree for unseen chromosome
		tree, ok := e.trees[fields[0]]
		if !ok {
			tree = &interval.IntTree{}
			e.trees[fields[0]] = tree
		}
		if err := tree.Insert(IntInterval{Start: start, End: end, UID: uid}, false); err != nil {
			return nil, err
		}
		uid++
	}
	if err := bscanner.Err(); err != nil {
		return nil, err
	}
	for _, tree := range e.trees {
		tree.AdjustRanges()
	}
	return e, nil
}

// Contains reports whether the single-base position is inside an excluded
// region.
func (e *Exclude) Contains(chrom string, pos int) bool {
	tree, ok := e.trees[chrom]
	if !ok {
		return false
	}
	return len(tree.Get(IntInterval{Start: pos, End: pos + 1})) > 0
}
