//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~vejnar/CutTrack/lib/reads"
	"git.sr.ht/~vejnar/CutTrack/lib/shift"
)

var version = "DEV"

func main() {
	// Arguments: General
	var pathReport string
	var nWorker, verboseLevel int
	var verbose, printVersion bool
	flag.StringVar(&pathReport, "path_report", "", "Write report to path (stdout with -)")
	flag.IntVar(&nWorker, "num_worker", 1, "Number of worker(s)")
	flag.IntVar(&verboseLevel, "verbose_level", 0, "Verbose level")
	flag.BoolVar(&verbose, "verbose", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	// Arguments: Input
	var pathBAM, pathFragment, pathTagAlign, pathGenome, pathChromSizes, pathExclude string
	flag.StringVar(&pathBAM, "path_bam", "", "Path to BAM file")
	flag.StringVar(&pathFragment, "path_fragment", "", "Path to fragment file (plain or gzip)")
	flag.StringVar(&pathTagAlign, "path_tagalign", "", "Path to tagAlign file (plain or gzip)")
	flag.StringVar(&pathGenome, "path_genome", "", "Path to reference genome FASTA (with .fai index, required for shift estimation)")
	flag.StringVar(&pathChromSizes, "path_chrom_sizes", "", "Path to chromosome sizes file")
	flag.StringVar(&pathExclude, "path_exclude", "", "Path to BED file of regions to exclude from the track")
	// Arguments: Shift
	var dataType, plusShiftRaw, minusShiftRaw, pathMotifs string
	var numSamples int
	flag.StringVar(&dataType, "data_type", "", "Assay type: 'ATAC' or 'DNASE'")
	flag.StringVar(&plusShiftRaw, "plus_shift", "", "Plus strand shift applied to reads (estimated if not specified)")
	flag.StringVar(&minusShiftRaw, "minus_shift", "", "Minus strand shift applied to reads (estimated if not specified)")
	flag.StringVar(&pathMotifs, "path_motifs", "", "Path to reference motifs for shift estimation (default <assay>.ref.motifs.txt next to the executable)")
	flag.IntVar(&numSamples, "num_samples", 10000, "Number of reads to sample for shift estimation")
	// Arguments: Output
	var outputPrefix, formatsRaw string
	flag.StringVar(&outputPrefix, "output_prefix", "", "Output prefix (path/to/prefix)")
	flag.StringVar(&formatsRaw, "formats", "bigwig", "Output format(s): 'bigwig' or 'bedgraph[+lz4]' (comma separated)")
	// Arguments: Parse
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Verbose
	if verbose && verboseLevel == 0 {
		verboseLevel = 1
	}

	// Max CPU
	runtime.GOMAXPROCS(nWorker * 2)

	// Time start
	timeStart := time.Now()

	// Check arguments: exactly one input
	var input reads.Input
	nInput := 0
	if len(pathBAM) > 0 {
		input = reads.Input{Path: pathBAM, Kind: reads.KindBAM}
		nInput++
	}
	if len(pathFragment) > 0 {
		input = reads.Input{Path: pathFragment, Kind: reads.KindFragment}
		nInput++
	}
	if len(pathTagAlign) > 0 {
		input = reads.Input{Path: pathTagAlign, Kind: reads.KindTagAlign}
		nInput++
	}
	if nInput != 1 {
		log.Fatal("Exactly one of -path_bam, -path_fragment or -path_tagalign is required")
	}
	if _, err := os.Stat(input.Path); os.IsNotExist(err) {
		log.Fatalln(input.Path, "not found")
	}
	if len(pathChromSizes) == 0 {
		log.Fatal("No chromosome sizes input (see path_chrom_sizes option)")
	} else if _, err := os.Stat(pathChromSizes); os.IsNotExist(err) {
		log.Fatalln(pathChromSizes, "not found")
	}
	if len(outputPrefix) == 0 {
		log.Fatal("No output prefix (see output_prefix option)")
	}

	// Assay type
	assay, err := shift.ParseAssay(dataType)
	if err != nil {
		log.Fatal(err)
	}

	// User-supplied shift: both or none
	var userShift *shift.Pair
	if len(plusShiftRaw) > 0 && len(minusShiftRaw) > 0 {
		var pair shift.Pair
		if pair.Plus, err = strconv.Atoi(plusShiftRaw); err != nil {
			log.Fatalln("Invalid plus_shift", plusShiftRaw)
		}
		if pair.Minus, err = strconv.Atoi(minusShiftRaw); err != nil {
			log.Fatalln("Invalid minus_shift", minusShiftRaw)
		}
		userShift = &pair
	} else if len(plusShiftRaw) > 0 || len(minusShiftRaw) > 0 {
		log.Println("Warning: only one of plus_shift/minus_shift specified, both will be estimated")
	}
	if userShift == nil {
		if len(pathGenome) == 0 {
			log.Fatal("Shift estimation requires the reference genome (see path_genome option)")
		}
		if len(pathMotifs) == 0 {
			if pathMotifs, err = defaultMotifPath(assay); err != nil {
				log.Fatal(err)
			}
		}
	}

	// Run
	opts := Options{
		Input:        input,
		ChromSizes:   pathChromSizes,
		OutputPrefix: outputPrefix,
		Assay:        assay,
		UserShift:    userShift,
		GenomePath:   pathGenome,
		MotifPath:    pathMotifs,
		SampleCount:  numSamples,
		ExcludePath:  pathExclude,
		Formats:      strings.Split(formatsRaw, ","),
		PathReport:   pathReport,
		NWorker:      nWorker,
	}
	if err := GenerateTrack(opts, timeStart, verboseLevel); err != nil {
		log.Fatal(err)
	}
}

// defaultMotifPath resolves the assay-specific reference motif table shipped
// next to the executable.
func defaultMotifPath(assay shift.AssayType) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), assay.String()+".ref.motifs.txt"), nil
}
