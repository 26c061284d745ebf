//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	gonetics "github.com/pbenner/gonetics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/CutTrack/lib/reads"
	"git.sr.ht/~vejnar/CutTrack/lib/shift"
)

func TestGenerateTrack(t *testing.T) {
	dir := t.TempDir()

	spath := filepath.Join(dir, "test.chrom.sizes")
	require.NoError(t, os.WriteFile(spath, []byte("chr1\t100000\nchr2\t50000\n"), 0666))

	tpath := filepath.Join(dir, "reads.tagAlign")
	tagAlign := "chr1\t100\t150\tr1\t255\t+\n" +
		"chr1\t100\t180\tr2\t255\t+\n" +
		"chr1\t101\t150\tr3\t255\t-\n" +
		"chr2\t0\t50\tr4\t255\t+\n" +
		"chrUn\t10\t60\tr5\t255\t+\n"
	require.NoError(t, os.WriteFile(tpath, []byte(tagAlign), 0666))

	prefix := filepath.Join(dir, "sample")
	rpath := filepath.Join(dir, "report.json")
	opts := Options{
		Input:        reads.Input{Path: tpath, Kind: reads.KindTagAlign},
		ChromSizes:   spath,
		OutputPrefix: prefix,
		Assay:        shift.AssayATAC,
		UserShift:    &shift.Pair{Plus: 4, Minus: -4},
		Formats:      []string{"bigwig", "bedgraph"},
		PathReport:   rpath,
		NWorker:      1,
	}
	require.NoError(t, GenerateTrack(opts, time.Now(), 0))

	// With a +4/-4 shift the ATAC correction is zero: cut sites at the raw
	// 5' ends
	raw, err := os.ReadFile(prefix + "_unstranded.bedgraph")
	require.NoError(t, err)
	expected := "chr1\t100\t101\t2\n" +
		"chr1\t149\t150\t1\n" +
		"chr2\t0\t1\t1\n"
	assert.Equal(t, expected, string(raw))

	ok, err := gonetics.IsBigWigFile(prefix + "_unstranded.bw")
	require.NoError(t, err)
	assert.True(t, ok)

	var report Report
	rawReport, err := os.ReadFile(rpath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(rawReport, &report))
	assert.Equal(t, uint64(5), report.NReads)
	assert.Equal(t, uint64(4), report.NCutSites)
	assert.Equal(t, []string{"chrUn"}, report.UnknownChroms)
	assert.Equal(t, 4, report.PlusShift)
	assert.Equal(t, -4, report.MinusShift)
	assert.False(t, report.ShiftEstimated)

	// No stray temporary output left behind
	_, err = os.Stat(prefix + "_unstranded.bw.tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateTrackUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	spath := filepath.Join(dir, "test.chrom.sizes")
	require.NoError(t, os.WriteFile(spath, []byte("chr1\t1000\n"), 0666))
	tpath := filepath.Join(dir, "reads.tagAlign")
	require.NoError(t, os.WriteFile(tpath, []byte("chr1\t100\t150\tr1\t255\t+\n"), 0666))

	opts := Options{
		Input:        reads.Input{Path: tpath, Kind: reads.KindTagAlign},
		ChromSizes:   spath,
		OutputPrefix: filepath.Join(dir, "sample"),
		Assay:        shift.AssayATAC,
		UserShift:    &shift.Pair{},
		Formats:      []string{"wig"},
		NWorker:      1,
	}
	assert.Error(t, GenerateTrack(opts, time.Now(), 0))
}

func TestGenerateTrackDecodeError(t *testing.T) {
	dir := t.TempDir()
	spath := filepath.Join(dir, "test.chrom.sizes")
	require.NoError(t, os.WriteFile(spath, []byte("chr1\t1000\n"), 0666))
	tpath := filepath.Join(dir, "reads.tagAlign")
	require.NoError(t, os.WriteFile(tpath, []byte("chr1\t100\t150\tr1\t255\t+\nchr1\tnot_a_number\t200\tr2\t255\t+\n"), 0666))

	opts := Options{
		Input:        reads.Input{Path: tpath, Kind: reads.KindTagAlign},
		ChromSizes:   spath,
		OutputPrefix: filepath.Join(dir, "sample"),
		Assay:        shift.AssayATAC,
		UserShift:    &shift.Pair{},
		Formats:      []string{"bedgraph"},
		NWorker:      1,
	}
	require.Error(t, GenerateTrack(opts, time.Now(), 0))
	// Aborted runs leave no partial output in place
	_, err := os.Stat(filepath.Join(dir, "sample_unstranded.bedgraph"))
	assert.True(t, os.IsNotExist(err))
}
