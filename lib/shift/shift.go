//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package shift

import (
	"fmt"
	"strings"

	"git.sr.ht/~vejnar/CutTrack/lib/reads"
)

// AssayType determines the cut-site convention and the default reference
// motifs used for shift estimation.
type AssayType int

const (
	AssayATAC AssayType = iota
	AssayDNASE
)

func ParseAssay(raw string) (AssayType, error) {
	switch strings.ToUpper(raw) {
	case "ATAC":
		return AssayATAC, nil
	case "DNASE":
		return AssayDNASE, nil
	}
	return 0, fmt.Errorf("unsupported assay type %q (ATAC or DNASE)", raw)
}

func (a AssayType) String() string {
	if a == AssayDNASE {
		return "DNASE"
	}
	return "ATAC"
}

// Pair is a per-strand shift, either user-supplied or estimated.
type Pair struct {
	Plus  int
	Minus int
}

// Delta is the additional per-strand offset applied to read 5' ends so that
// the final cut-site coordinate follows the assay convention.
type Delta struct {
	Plus  int
	Minus int
}

// ComputeDelta returns the correction to apply on top of the detected or
// supplied shift. ATAC coordinates are moved to the +4/-4 Tn5 convention,
// DNase coordinates to 0/+1.
func ComputeDelta(assay AssayType, shift Pair) Delta {
	if assay == AssayDNASE {
		return Delta{Plus: -shift.Plus, Minus: 1 - shift.Minus}
	}
	return Delta{Plus: 4 - shift.Plus, Minus: -4 - shift.Minus}
}

// Resolve returns the user-supplied shift pair unchanged when present,
// otherwise estimates both shifts from sampleCount reads of the input. The
// second return value reports whether estimation ran.
func Resolve(user *Pair, input reads.Input, sampleCount int, genomePath, motifPath string) (Pair, bool, error) {
	if user != nil {
		return *user, false, nil
	}
	pair, err := Estimate(input, sampleCount, genomePath, motifPath)
	return pair, true, err
}
