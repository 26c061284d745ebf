//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package reads

import (
	"fmt"
)

// Input kinds
const (
	KindBAM = iota
	KindFragment
	KindTagAlign
)

// Input designates one alignment source.
type Input struct {
	Path string
	Kind int
}

// ReadInterval is one genomic interval derived from an alignment record
// (0-based, half-open). Strand is +1 or -1.
type ReadInterval struct {
	Chrom  string
	Start  int
	End    int
	Name   string
	Score  float64
	Strand int8
}

// Stream is a finite, single-pass source of ReadInterval. Read returns
// io.EOF after the last record. Streams are not restartable: open a new
// one for a second pass.
type Stream interface {
	Read() (ReadInterval, error)
	Close() error
}

// Open opens a new stream over the input. nWorker is the number of BAM
// decompression workers, ignored for text inputs.
func Open(input Input, nWorker int) (Stream, error) {
	switch input.Kind {
	case KindBAM:
		return OpenBAM(input.Path, nWorker)
	case KindFragment:
		return OpenFragment(input.Path)
	case KindTagAlign:
		return OpenTagAlign(input.Path)
	}
	return nil, fmt.Errorf("unknown input kind %d", input.Kind)
}

// ParseStrand parses a strand field. The second return value is false for
// anything other than + or -.
func ParseStrand(strandRaw string) (int8, bool) {
	if strandRaw == "+" || strandRaw == "1" || strandRaw == "+1" {
		return 1, true
	}
	if strandRaw == "-" || strandRaw == "-1" {
		return -1, true
	}
	return 0, false
}
