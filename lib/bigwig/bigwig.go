//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bigwig

import (
	"io"
	"math"
	"os"

	gonetics "github.com/pbenner/gonetics"

	"git.sr.ht/~vejnar/CutTrack/lib/bedgraph"
	"git.sr.ht/~vejnar/CutTrack/lib/genome"
)

// Encode writes the sorted bedGraph artifact to a BigWig file, with zoomed
// overviews. The artifact is re-read once per zoom level so that only one
// chromosome is densified in memory at a time. Uncovered positions are NaN:
// the writer encodes sparse chromosomes as bedgraph-style variable-step
// blocks.
func Encode(artifactPath string, sizes *genome.Sizes, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	parameters := gonetics.DefaultBigWigParameters()
	parameters.ReductionLevels = reductionLevels(sizes, parameters.ItemsPerSlot)

	bww, err := gonetics.NewBigWigWriter(f, sizes.Genome, parameters)
	if err != nil {
		return err
	}
	// Raw data
	err = eachChromSequence(artifactPath, sizes, func(name string, sequence []float64) error {
		return bww.Write(name, sequence, 1)
	})
	if err != nil {
		return err
	}
	if err := bww.WriteIndex(); err != nil {
		return err
	}
	// Zoomed data
	for i, reductionLevel := range parameters.ReductionLevels {
		if err := bww.StartZoomData(i); err != nil {
			return err
		}
		rl := reductionLevel
		err = eachChromSequence(artifactPath, sizes, func(name string, sequence []float64) error {
			return bww.WriteZoom(name, sequence, 1, rl, i)
		})
		if err != nil {
			return err
		}
		if err := bww.WriteIndexZoom(i); err != nil {
			return err
		}
	}
	if err := bww.Close(); err != nil {
		return err
	}
	return f.Close()
}

// reductionLevels computes the zoom reduction levels for base-resolution
// data, following the UCSC convention of a fixed increment per level.
func reductionLevels(sizes *genome.Sizes, itemsPerSlot int) []int {
	// Length of the longest chromosome
	var l int
	for _, length := range sizes.Genome.Lengths {
		if length > l {
			l = length
		}
	}
	var n []int
	r := gonetics.BbiResIncrement
	if r < 100 {
		r = 100
	}
	for len(n) <= gonetics.BbiMaxZoomLevels {
		if l/r > itemsPerSlot {
			n = append(n, r)
			r = r * gonetics.BbiResIncrement
		} else {
			break
		}
	}
	return n
}

// eachChromSequence streams the sorted artifact, densifying runs into one
// per-base vector per covered chromosome.
func eachChromSequence(artifactPath string, sizes *genome.Sizes, fn func(string, []float64) error) error {
	f, err := os.Open(artifactPath)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bedgraph.NewReader(f, sizes)
	var chrom string
	var sequence []float64
	flush := func() error {
		if chrom == "" {
			return nil
		}
		return fn(chrom, sequence)
	}
	for {
		run, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if run.Chrom != chrom {
			if err := flush(); err != nil {
				return err
			}
			chrom = run.Chrom
			length, _ := sizes.Length(chrom)
			sequence = make([]float64, length)
			for i := range sequence {
				sequence[i] = math.NaN()
			}
		}
		for i := run.Start; i < run.End; i++ {
			sequence[i] = float64(run.Depth)
		}
	}
	return flush()
}
