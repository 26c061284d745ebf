//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package shift

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/CutTrack/lib/reads"
)

const testMotif = `>tn5
1 0 0 0 0
0 1 0 0 1
0 0 1 0 0
0 0 0 1 0
`

func TestReadRefMotifs(t *testing.T) {
	mpath := filepath.Join(t.TempDir(), "motifs.txt")
	require.NoError(t, os.WriteFile(mpath, []byte(testMotif), 0666))

	motifs, err := ReadRefMotifs(mpath)
	require.NoError(t, err)
	require.Len(t, motifs, 1)
	assert.Equal(t, "tn5", motifs[0].Name)
	assert.Equal(t, 5, motifs[0].Width())
	assert.Equal(t, []float64{1, 0, 0, 0, 0}, motifs[0].Freqs[0])
}

func TestReadRefMotifsMalformed(t *testing.T) {
	dir := t.TempDir()

	mpath := filepath.Join(dir, "short.txt")
	require.NoError(t, os.WriteFile(mpath, []byte(">m\n1 0\n0 1\n0 0\n"), 0666))
	_, err := ReadRefMotifs(mpath)
	assert.Error(t, err)

	mpath = filepath.Join(dir, "ragged.txt")
	require.NoError(t, os.WriteFile(mpath, []byte(">m\n1 0\n0 1 0\n0 0\n1 0\n"), 0666))
	_, err = ReadRefMotifs(mpath)
	assert.Error(t, err)

	_, err = ReadRefMotifs(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

// writeTestGenome builds a chromosome of background T with the estimation
// motif ACGTC planted 2 bases downstream of every plus-strand 5' end and its
// reverse complement 1 base upstream of every minus-strand 5' end, so the
// expected estimate is +2/-1.
func writeTestGenome(t *testing.T, dir string) (gpath, tpath string) {
	t.Helper()
	seq := make([]byte, 1200)
	for i := range seq {
		seq[i] = 'T'
	}
	var lines []byte
	for i := 0; i < 10; i++ {
		// Plus read starting at p, motif center at p+2
		p := 100 + i*30
		copy(seq[p:], "ACGTC")
		lines = append(lines, []byte(fmt.Sprintf("chrT\t%d\t%d\tr%dp\t0\t+\n", p, p+20, i))...)
		// Minus read ending at q, 5' end q-1, motif center at q-2
		q := 600 + i*30
		copy(seq[q-4:], "GACGT")
		lines = append(lines, []byte(fmt.Sprintf("chrT\t%d\t%d\tr%dm\t0\t-\n", q-20, q, i))...)
	}

	gpath = filepath.Join(dir, "genome.fa")
	require.NoError(t, os.WriteFile(gpath, append(append([]byte(">chrT\n"), seq...), '\n'), 0666))
	fai := fmt.Sprintf("chrT\t%d\t6\t%d\t%d\n", len(seq), len(seq), len(seq)+1)
	require.NoError(t, os.WriteFile(gpath+".fai", []byte(fai), 0666))

	tpath = filepath.Join(dir, "reads.tagAlign")
	require.NoError(t, os.WriteFile(tpath, lines, 0666))
	return gpath, tpath
}

func TestEstimate(t *testing.T) {
	dir := t.TempDir()
	gpath, tpath := writeTestGenome(t, dir)
	mpath := filepath.Join(dir, "motifs.txt")
	require.NoError(t, os.WriteFile(mpath, []byte(testMotif), 0666))

	input := reads.Input{Path: tpath, Kind: reads.KindTagAlign}
	pair, err := Estimate(input, 20, gpath, mpath)
	require.NoError(t, err)
	assert.Equal(t, Pair{Plus: 2, Minus: -1}, pair)
}

func TestEstimateInsufficientReads(t *testing.T) {
	dir := t.TempDir()
	gpath, tpath := writeTestGenome(t, dir)
	mpath := filepath.Join(dir, "motifs.txt")
	require.NoError(t, os.WriteFile(mpath, []byte(testMotif), 0666))

	input := reads.Input{Path: tpath, Kind: reads.KindTagAlign}
	_, err := Estimate(input, 100, gpath, mpath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientReads))
}
