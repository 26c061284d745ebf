//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bedgraph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pierrec/lz4"

	"git.sr.ht/~vejnar/CutTrack/lib/coverage"
	"git.sr.ht/~vejnar/CutTrack/lib/genome"
)

// ErrUnsorted is returned when the input runs are not grouped by chromosome
// in chrom-sizes order and sorted by start, or overlap.
var ErrUnsorted = errors.New("bedgraph: unsorted input")

// Writer writes coverage runs in bedGraph format, optionally compressed
// ("lz4" or "lz4hc"). It does not own the underlying writer.
type Writer struct {
	bw *bufio.Writer
	zw *lz4.Writer
}

func NewWriter(w io.Writer, zip string) (*Writer, error) {
	bgw := &Writer{}
	switch zip {
	case "lz4":
		bgw.zw = lz4.NewWriter(w)
	case "lz4hc":
		bgw.zw = lz4.NewWriter(w)
		bgw.zw.Header = lz4.Header{CompressionLevel: 9}
	case "":
	default:
		return nil, fmt.Errorf("bedgraph: unknown compression %q", zip)
	}
	if bgw.zw != nil {
		bgw.bw = bufio.NewWriter(bgw.zw)
	} else {
		bgw.bw = bufio.NewWriter(w)
	}
	return bgw, nil
}

func (w *Writer) WriteRun(r coverage.Run) error {
	_, err := fmt.Fprintf(w.bw, "%s\t%d\t%d\t%d\n", r.Chrom, r.Start, r.End, r.Depth)
	return err
}

// Close flushes buffered data and terminates the compressed stream. The
// underlying writer is left open.
func (w *Writer) Close() error {
	err := w.bw.Flush()
	if w.zw != nil {
		if errz := w.zw.Close(); err == nil {
			err = errz
		}
	}
	return err
}

// Reader reads coverage runs back from a bedGraph stream, validating the
// ordering the track encoder depends on: chromosomes in chrom-sizes
// declaration order, runs sorted and non-overlapping within a chromosome.
type Reader struct {
	scanner *bufio.Scanner
	rank    map[string]int
	sizes   *genome.Sizes

	lastRank int
	lastEnd  int
	nLine    int
}

func NewReader(r io.Reader, sizes *genome.Sizes) *Reader {
	rank := make(map[string]int)
	for i, name := range sizes.Names() {
		rank[name] = i
	}
	return &Reader{scanner: bufio.NewScanner(r), rank: rank, sizes: sizes, lastRank: -1}
}

// Read returns the next run or io.EOF.
func (r *Reader) Read() (coverage.Run, error) {
	var run coverage.Run
	for r.scanner.Scan() {
		r.nLine++
		line := r.scanner.Text()
		if len(line) == 0 {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			return run, fmt.Errorf("bedgraph: line %d: expected 4 columns, got %d", r.nLine, len(fields))
		}
		var err error
		run.Chrom = fields[0]
		if run.Start, err = strconv.Atoi(fields[1]); err != nil {
			return run, fmt.Errorf("bedgraph: line %d: invalid start %s", r.nLine, fields[1])
		}
		if run.End, err = strconv.Atoi(fields[2]); err != nil {
			return run, fmt.Errorf("bedgraph: line %d: invalid end %s", r.nLine, fields[2])
		}
		if run.Depth, err = strconv.Atoi(fields[3]); err != nil {
			return run, fmt.Errorf("bedgraph: line %d: invalid depth %s", r.nLine, fields[3])
		}
		if err = r.check(run); err != nil {
			return run, err
		}
		return run, nil
	}
	if err := r.scanner.Err(); err != nil {
		return run, err
	}
	return run, io.EOF
}

func (r *Reader) check(run coverage.Run) error {
	rank, ok := r.rank[run.Chrom]
	if !ok {
		return fmt.Errorf("bedgraph: line %d: unknown chromosome %s", r.nLine, run.Chrom)
	}
	length, _ := r.sizes.Length(run.Chrom)
	if run.Start < 0 || run.Start >= run.End || run.End > length {
		return fmt.Errorf("bedgraph: line %d: invalid interval [%d,%d) on %s (length %d)", r.nLine, run.Start, run.End, run.Chrom, length)
	}
	if rank < r.lastRank || (rank == r.lastRank && run.Start < r.lastEnd) {
		return fmt.Errorf("%w: line %d (%s:%d)", ErrUnsorted, r.nLine, run.Chrom, run.Start)
	}
	if rank != r.lastRank {
		r.lastRank, r.lastEnd = rank, run.End
	} else {
		r.lastEnd = run.End
	}
	return nil
}
