//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package coverage

import (
	"fmt"
	"sort"

	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/CutTrack/lib/genome"
	"git.sr.ht/~vejnar/CutTrack/lib/reads"
	"git.sr.ht/~vejnar/CutTrack/lib/shift"
)

// Run is a maximal run of positions sharing the same depth (0-based,
// half-open). Runs of depth 0 are never emitted.
type Run struct {
	Chrom string
	Start int
	End   int
	Depth int
}

func (r Run) String() string {
	return fmt.Sprintf("%s\t%d\t%d\t%d", r.Chrom, r.Start, r.End, r.Depth)
}

// Aggregator accumulates delta-corrected cut sites into per-base depth of
// coverage. Cut sites landing outside their chromosome or in an excluded
// region are dropped and counted; unknown chromosomes are dropped and their
// names collected.
type Aggregator struct {
	sizes  *genome.Sizes
	delta  shift.Delta
	excl   *Exclude
	events map[string]map[int]int

	NCutSites uint64
	NClipped  uint64
	NExcluded uint64
	unknown   set.Interface
}

func NewAggregator(sizes *genome.Sizes, delta shift.Delta, excl *Exclude) *Aggregator {
	return &Aggregator{
		sizes:   sizes,
		delta:   delta,
		excl:    excl,
		events:  make(map[string]map[int]int),
		unknown: set.New(set.ThreadSafe),
	}
}

// Add derives the cut site of one read interval and records its coverage
// events: +1 at the site, -1 one base after.
func (a *Aggregator) Add(iv reads.ReadInterval) {
	// Corrected 5' end
	var pos int
	if iv.Strand == 1 {
		pos = iv.Start + a.delta.Plus
	} else {
		pos = iv.End - 1 + a.delta.Minus
	}
	length, ok := a.sizes.Length(iv.Chrom)
	if !ok {
		a.unknown.Add(iv.Chrom)
		return
	}
	if pos < 0 || pos >= length {
		a.NClipped++
		return
	}
	if a.excl != nil && a.excl.Contains(iv.Chrom, pos) {
		a.NExcluded++
		return
	}
	events, ok := a.events[iv.Chrom]
	if !ok {
		events = make(map[int]int)
		a.events[iv.Chrom] = events
	}
	events[pos]++
	events[pos+1]--
	a.NCutSites++
}

// Emit sweeps the recorded events and calls fn for every coalesced
// positive-depth run, grouped by chromosome in chrom-sizes declaration order
// and sorted by start within each chromosome.
func (a *Aggregator) Emit(fn func(Run) error) error {
	for _, chrom := range a.sizes.Names() {
		events, ok := a.events[chrom]
		if !ok {
			continue
		}
		positions := make([]int, 0, len(events))
		for pos := range events {
			positions = append(positions, pos)
		}
		sort.Ints(positions)
		// Running sum of signed deltas; a zero net change at a position
		// does not break the current run
		var depth, runStart int
		for _, pos := range positions {
			d := events[pos]
			if d == 0 {
				continue
			}
			if depth > 0 {
				if err := fn(Run{Chrom: chrom, Start: runStart, End: pos, Depth: depth}); err != nil {
					return err
				}
			}
			depth += d
			runStart = pos
		}
		if depth != 0 {
			return fmt.Errorf("coverage: unbalanced events on %s (depth %d after sweep)", chrom, depth)
		}
	}
	return nil
}

// UnknownChroms returns the chromosome names seen in the input but absent
// from the chrom-sizes table.
func (a *Aggregator) UnknownChroms() []string {
	var names []string
	for _, item := range a.unknown.List() {
		names = append(names, item.(string))
	}
	sort.Strings(names)
	return names
}
