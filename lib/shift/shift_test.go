//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package shift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/CutTrack/lib/reads"
)

func TestComputeDeltaATAC(t *testing.T) {
	for plus := -10; plus <= 10; plus++ {
		for minus := -10; minus <= 10; minus++ {
			d := ComputeDelta(AssayATAC, Pair{Plus: plus, Minus: minus})
			assert.Equal(t, 4, d.Plus+plus)
			assert.Equal(t, -4, d.Minus+minus)
		}
	}
}

func TestComputeDeltaDNase(t *testing.T) {
	for plus := -10; plus <= 10; plus++ {
		for minus := -10; minus <= 10; minus++ {
			d := ComputeDelta(AssayDNASE, Pair{Plus: plus, Minus: minus})
			assert.Equal(t, 0, d.Plus+plus)
			assert.Equal(t, 1, d.Minus+minus)
		}
	}
}

func TestComputeDeltaNoShift(t *testing.T) {
	// Tn5 convention for raw ATAC coordinates
	assert.Equal(t, Delta{Plus: 4, Minus: -4}, ComputeDelta(AssayATAC, Pair{}))
	// DNase cuts are reported directly on the plus strand
	assert.Equal(t, Delta{Plus: 0, Minus: 1}, ComputeDelta(AssayDNASE, Pair{}))
}

func TestParseAssay(t *testing.T) {
	a, err := ParseAssay("ATAC")
	require.NoError(t, err)
	assert.Equal(t, AssayATAC, a)
	a, err = ParseAssay("dnase")
	require.NoError(t, err)
	assert.Equal(t, AssayDNASE, a)
	_, err = ParseAssay("CHIP")
	assert.Error(t, err)
}

func TestResolvePassThrough(t *testing.T) {
	// User-supplied shifts skip estimation entirely: no input is opened
	user := &Pair{Plus: 4, Minus: -4}
	input := reads.Input{Path: "does/not/exist.bam", Kind: reads.KindBAM}
	pair, estimated, err := Resolve(user, input, 10000, "", "")
	require.NoError(t, err)
	assert.False(t, estimated)
	assert.Equal(t, *user, pair)
}
