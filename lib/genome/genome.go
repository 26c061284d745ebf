//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package genome

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	gonetics "github.com/pbenner/gonetics"
)

// Sizes is a chromosome-sizes table. Declaration order is preserved: the
// coverage track is emitted chromosome by chromosome in this order.
type Sizes struct {
	Genome  gonetics.Genome
	lengths map[string]int
}

// Open parses a UCSC chrom-sizes file (chromosome name and length,
// whitespace separated).
func Open(tpath string) (*Sizes, error) {
	tfos, err := os.Open(tpath)
	if err != nil {
		return nil, err
	}
	defer tfos.Close()

	var seqnames []string
	var lengths []int
	s := &Sizes{lengths: make(map[string]int)}
	tscanner := bufio.NewScanner(tfos)
	for tscanner.Scan() {
		fields := strings.Fields(tscanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s: expected chromosome name and length, got %q", tpath, tscanner.Text())
		}
		length, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid length for %s: %s", tpath, fields[0], fields[1])
		}
		if _, ok := s.lengths[fields[0]]; ok {
			return nil, fmt.Errorf("%s: duplicated chromosome %s", tpath, fields[0])
		}
		seqnames = append(seqnames, fields[0])
		lengths = append(lengths, length)
		s.lengths[fields[0]] = length
	}
	if err := tscanner.Err(); err != nil {
		return nil, err
	}
	if len(seqnames) == 0 {
		return nil, fmt.Errorf("%s: empty chromosome sizes file", tpath)
	}
	s.Genome = gonetics.NewGenome(seqnames, lengths)
	return s, nil
}

// Length returns the length of a chromosome and whether it is known.
func (s *Sizes) Length(chrom string) (int, bool) {
	length, ok := s.lengths[chrom]
	return length, ok
}

// Names returns the chromosome names in declaration order.
func (s *Sizes) Names() []string {
	return s.Genome.Seqnames
}
