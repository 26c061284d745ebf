//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"git.sr.ht/~vejnar/CutTrack/lib/bedgraph"
	"git.sr.ht/~vejnar/CutTrack/lib/bigwig"
	"git.sr.ht/~vejnar/CutTrack/lib/coverage"
	"git.sr.ht/~vejnar/CutTrack/lib/genome"
	"git.sr.ht/~vejnar/CutTrack/lib/reads"
	"git.sr.ht/~vejnar/CutTrack/lib/shift"
)

const batchLength = 64

type Options struct {
	Input        reads.Input
	ChromSizes   string
	OutputPrefix string
	Assay        shift.AssayType
	UserShift    *shift.Pair
	GenomePath   string
	MotifPath    string
	SampleCount  int
	ExcludePath  string
	Formats      []string
	PathReport   string
	NWorker      int
}

// AddCommas adds commas after every 3 characters.
func AddCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return AddCommas(s[0:len(s)-3]) + "," + s[len(s)-3:]
}

func Max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

// GenerateTrack resolves the shift, streams the input through the coverage
// aggregator and writes the requested track outputs.
func GenerateTrack(opts Options, timeStart time.Time, verboseLevel int) error {
	// Chromosome sizes
	sizes, err := genome.Open(opts.ChromSizes)
	if err != nil {
		return err
	}

	// Exclude regions
	var excl *coverage.Exclude
	if opts.ExcludePath != "" {
		if excl, err = coverage.OpenExclude(opts.ExcludePath); err != nil {
			return err
		}
	}

	// Resolve shift
	if opts.UserShift == nil && verboseLevel > 0 {
		timeNow := time.Now()
		fmt.Printf("%.1fmin - Estimating enzyme shift in %s\n", timeNow.Sub(timeStart).Minutes(), opts.Input.Path)
	}
	pair, estimated, err := shift.Resolve(opts.UserShift, opts.Input, opts.SampleCount, opts.GenomePath, opts.MotifPath)
	if err != nil {
		return fmt.Errorf("shift estimation: %w", err)
	}
	if verboseLevel > 0 {
		timeNow := time.Now()
		if estimated {
			fmt.Printf("%.1fmin - The estimated shift is: %+d/%+d\n", timeNow.Sub(timeStart).Minutes(), pair.Plus, pair.Minus)
		} else {
			fmt.Printf("%.1fmin - The specified shift is: %+d/%+d\n", timeNow.Sub(timeStart).Minutes(), pair.Plus, pair.Minus)
		}
	}
	delta := shift.ComputeDelta(opts.Assay, pair)

	// Aggregate cut-site coverage over a fresh pass of the input
	agg := coverage.NewAggregator(sizes, delta, excl)
	var nRead uint64

	ctx := context.Background()
	g, gctx := errgroup.WithContext(ctx)
	chIv := make(chan []reads.ReadInterval, Max(1, opts.NWorker)*10)

	g.Go(func() error {
		defer close(chIv)
		timeLog := time.Now()
		if verboseLevel > 0 {
			fmt.Printf("%.1fmin - Opening %s\n", timeLog.Sub(timeStart).Minutes(), opts.Input.Path)
		}
		stream, err := reads.Open(opts.Input, Max(1, opts.NWorker))
		if err != nil {
			return err
		}
		defer stream.Close()
		batch := make([]reads.ReadInterval, 0, batchLength)
		for {
			iv, err := stream.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return fmt.Errorf("decoding %s: %w", opts.Input.Path, err)
			}
			batch = append(batch, iv)
			if len(batch) == batchLength {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case chIv <- batch:
				}
				batch = make([]reads.ReadInterval, 0, batchLength)
			}
			nRead++

			if verboseLevel > 0 {
				timeNow := time.Now()
				if timeNow.Sub(timeLog).Minutes() > 1. {
					fmt.Printf("%.1fmin - %s align. - %.2f Ma/hr\n", timeNow.Sub(timeStart).Minutes(), AddCommas(strconv.FormatUint(nRead, 10)), (float64(nRead)/timeNow.Sub(timeStart).Hours())/1000000.)
					timeLog = timeNow
				}
			}
		}
		if len(batch) > 0 {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chIv <- batch:
			}
		}
		return nil
	})

	g.Go(func() error {
		for batch := range chIv {
			for _, iv := range batch {
				agg.Add(iv)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	// Output targets
	doBigWig := false
	var bgZip string
	doBedGraph := false
	for _, format := range opts.Formats {
		zip := ""
		if i := strings.Index(format, "+"); i != -1 {
			format, zip = format[:i], format[i+1:]
		}
		switch format {
		case "bigwig":
			doBigWig = true
		case "bedgraph":
			doBedGraph = true
			bgZip = zip
		default:
			return fmt.Errorf("unknown output format %q", format)
		}
	}

	// Materialize sorted runs: temporary artifact for the BigWig encoder,
	// final bedgraph output if requested
	var writers []*bedgraph.Writer
	var artifactPath string
	if doBigWig {
		artifact, err := os.CreateTemp("", "cuttrack_*.bedgraph")
		if err != nil {
			return err
		}
		artifactPath = artifact.Name()
		defer os.Remove(artifactPath)
		w, _ := bedgraph.NewWriter(artifact, "")
		writers = append(writers, w)
		defer artifact.Close()
	}
	var pathBedGraph string
	if doBedGraph {
		pathBedGraph = opts.OutputPrefix + "_unstranded.bedgraph"
		if bgZip != "" {
			pathBedGraph += ".lz4"
		}
		f, err := os.Create(pathBedGraph + ".tmp")
		if err != nil {
			return err
		}
		defer os.Remove(pathBedGraph + ".tmp")
		w, err := bedgraph.NewWriter(f, bgZip)
		if err != nil {
			f.Close()
			return err
		}
		writers = append(writers, w)
		defer f.Close()
	}

	if verboseLevel > 0 {
		timeNow := time.Now()
		fmt.Printf("%.1fmin - Making BedGraph\n", timeNow.Sub(timeStart).Minutes())
	}
	err = agg.Emit(func(r coverage.Run) error {
		for _, w := range writers {
			if err := w.WriteRun(r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, w := range writers {
		if err := w.Close(); err != nil {
			return err
		}
	}
	if doBedGraph {
		if err := os.Rename(pathBedGraph+".tmp", pathBedGraph); err != nil {
			return err
		}
	}

	// Encode BigWig
	if doBigWig {
		if verboseLevel > 0 {
			timeNow := time.Now()
			fmt.Printf("%.1fmin - Making BigWig\n", timeNow.Sub(timeStart).Minutes())
		}
		pathBigWig := opts.OutputPrefix + "_unstranded.bw"
		if err := bigwig.Encode(artifactPath, sizes, pathBigWig+".tmp"); err != nil {
			os.Remove(pathBigWig + ".tmp")
			return fmt.Errorf("encoding %s: %w", pathBigWig, err)
		}
		if err := os.Rename(pathBigWig+".tmp", pathBigWig); err != nil {
			return err
		}
	}

	// Report
	if opts.PathReport != "" {
		report := Report{
			NReads:         nRead,
			NCutSites:      agg.NCutSites,
			NClipped:       agg.NClipped,
			NExcluded:      agg.NExcluded,
			UnknownChroms:  agg.UnknownChroms(),
			PlusShift:      pair.Plus,
			MinusShift:     pair.Minus,
			ShiftEstimated: estimated,
		}
		if err := WriteReport(opts.PathReport, report); err != nil {
			return err
		}
	}

	if verboseLevel > 0 {
		timeNow := time.Now()
		fmt.Printf("%.1fmin - Done %s align., %s cut sites (%d clipped, %d excluded)\n", timeNow.Sub(timeStart).Minutes(), AddCommas(strconv.FormatUint(nRead, 10)), AddCommas(strconv.FormatUint(agg.NCutSites, 10)), agg.NClipped, agg.NExcluded)
	}
	return nil
}
