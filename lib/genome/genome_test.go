//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package genome

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	spath := filepath.Join(t.TempDir(), "test.chrom.sizes")
	require.NoError(t, os.WriteFile(spath, []byte("chr1\t248956422\nchr2\t242193529\nchrM\t16569\n"), 0666))

	sizes, err := Open(spath)
	require.NoError(t, err)
	// Declaration order preserved
	assert.Equal(t, []string{"chr1", "chr2", "chrM"}, sizes.Names())

	length, ok := sizes.Length("chrM")
	assert.True(t, ok)
	assert.Equal(t, 16569, length)

	_, ok = sizes.Length("chr3")
	assert.False(t, ok)

	assert.Equal(t, []int{248956422, 242193529, 16569}, sizes.Genome.Lengths)
}

func TestOpenInvalid(t *testing.T) {
	dir := t.TempDir()

	spath := filepath.Join(dir, "dup.chrom.sizes")
	require.NoError(t, os.WriteFile(spath, []byte("chr1\t1000\nchr1\t2000\n"), 0666))
	_, err := Open(spath)
	assert.Error(t, err)

	spath = filepath.Join(dir, "bad.chrom.sizes")
	require.NoError(t, os.WriteFile(spath, []byte("chr1\tlong\n"), 0666))
	_, err = Open(spath)
	assert.Error(t, err)

	spath = filepath.Join(dir, "empty.chrom.sizes")
	require.NoError(t, os.WriteFile(spath, nil, 0666))
	_, err = Open(spath)
	assert.Error(t, err)

	_, err = Open(filepath.Join(dir, "missing.chrom.sizes"))
	assert.Error(t, err)
}
