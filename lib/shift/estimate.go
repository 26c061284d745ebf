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
	"io"
	"math"

	"git.sr.ht/~vejnar/CutTrack/lib/fasta"
	"git.sr.ht/~vejnar/CutTrack/lib/reads"
)

// ErrInsufficientReads is returned when fewer than half the requested sample
// reads were usable for estimation.
var ErrInsufficientReads = errors.New("insufficient reads for shift estimation")

var baseIdx [256]int8

func init() {
	for i := range baseIdx {
		baseIdx[i] = -1
	}
	baseIdx['A'], baseIdx['C'], baseIdx['G'], baseIdx['T'] = 0, 1, 2, 3
}

// obsMatrix accumulates base counts in a window around sampled 5' ends.
type obsMatrix struct {
	counts [4][]float64
	width  int
}

func newObsMatrix(width int) *obsMatrix {
	m := &obsMatrix{width: width}
	for i := range m.counts {
		m.counts[i] = make([]float64, width)
	}
	return m
}

func (m *obsMatrix) add(seq []byte) {
	for i, b := range seq {
		if j := baseIdx[b]; j >= 0 {
			m.counts[j][i]++
		}
	}
}

// freqs normalizes counts column-wise to frequencies.
func (m *obsMatrix) freqs() [4][]float64 {
	var fr [4][]float64
	for i := range fr {
		fr[i] = make([]float64, m.width)
	}
	for j := 0; j < m.width; j++ {
		var total float64
		for i := 0; i < 4; i++ {
			total += m.counts[i][j]
		}
		if total == 0 {
			continue
		}
		for i := 0; i < 4; i++ {
			fr[i][j] = m.counts[i][j] / total
		}
	}
	return fr
}

// Estimate samples up to sampleCount reads from the input, accumulates the
// genomic base composition around uncorrected 5' ends (minus-strand windows
// reverse-complemented) and matches the per-strand composition against the
// reference motif table. The returned pair is, for each strand, the offset
// from the reported 5' coordinate to the best-scoring motif center.
func Estimate(input reads.Input, sampleCount int, genomePath, motifPath string) (Pair, error) {
	var pair Pair
	motifs, err := ReadRefMotifs(motifPath)
	if err != nil {
		return pair, err
	}
	// Window sized from the widest motif so that all candidate offsets fit
	flank := 0
	for _, m := range motifs {
		if m.Width() > flank {
			flank = m.Width()
		}
	}
	width := 2*flank + 1

	fa, err := fasta.Open(genomePath)
	if err != nil {
		return pair, err
	}
	defer fa.Close()

	stream, err := reads.Open(input, 1)
	if err != nil {
		return pair, err
	}
	defer stream.Close()

	obsPlus := newObsMatrix(width)
	obsMinus := newObsMatrix(width)
	var nUsable int
	for nUsable < sampleCount {
		iv, err := stream.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return pair, err
		}
		// Uncorrected 5' end
		var pos int
		if iv.Strand == 1 {
			pos = iv.Start
		} else {
			pos = iv.End - 1
		}
		length, ok := fa.Length(iv.Chrom)
		if !ok || pos-flank < 0 || pos+flank+1 > length {
			continue
		}
		seq, err := fa.Fetch(iv.Chrom, pos-flank, pos+flank+1)
		if err != nil {
			return pair, err
		}
		if iv.Strand == 1 {
			obsPlus.add(seq)
		} else {
			obsMinus.add(fasta.ReverseComplement(seq))
		}
		nUsable++
	}
	if nUsable*2 < sampleCount {
		return pair, fmt.Errorf("%w: %d usable of %d requested from %s", ErrInsufficientReads, nUsable, sampleCount, input.Path)
	}

	plusOffset, err := bestOffset(obsPlus.freqs(), motifs, flank)
	if err != nil {
		return pair, err
	}
	minusOffset, err := bestOffset(obsMinus.freqs(), motifs, flank)
	if err != nil {
		return pair, err
	}
	// The minus-strand window is reverse-complemented: a motif displaced
	// downstream in window coordinates sits upstream on the genome.
	pair.Plus = plusOffset
	pair.Minus = -minusOffset
	return pair, nil
}

// bestOffset slides every reference motif over the observed frequency window
// and returns the displacement of the best Pearson correlation relative to
// the window center.
func bestOffset(obs [4][]float64, motifs []RefMotif, flank int) (int, error) {
	width := 2*flank + 1
	bestScore := math.Inf(-1)
	bestD := 0
	found := false
	for _, motif := range motifs {
		w := motif.Width()
		halfW := w / 2
		for d := halfW - flank; flank+d-halfW+w <= width; d++ {
			start := flank + d - halfW
			score := correlate(motif.Freqs, obs, start, w)
			if score > bestScore {
				bestScore = score
				bestD = d
				found = true
			}
		}
	}
	if !found {
		return 0, fmt.Errorf("no motif narrow enough for a %d bp window", width)
	}
	return bestD, nil
}

// correlate computes the Pearson correlation between a motif and the
// observed frequencies starting at column start.
func correlate(motif [4][]float64, obs [4][]float64, start, w int) float64 {
	n := float64(4 * w)
	var sx, sy, sxx, syy, sxy float64
	for i := 0; i < 4; i++ {
		for j := 0; j < w; j++ {
			x := motif[i][j]
			y := obs[i][start+j]
			sx += x
			sy += y
			sxx += x * x
			syy += y * y
			sxy += x * y
		}
	}
	cov := sxy - sx*sy/n
	vx := sxx - sx*sx/n
	vy := syy - sy*sy/n
	if vx <= 0 || vy <= 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}
