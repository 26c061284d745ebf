//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package reads

import (
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

type bamStream struct {
	f  *os.File
	br *bam.Reader
}

// OpenBAM opens a stream over the primary aligned records of a BAM file.
func OpenBAM(path string, nWorker int) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br, err := bam.NewReader(f, nWorker)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &bamStream{f: f, br: br}, nil
}

func (s *bamStream) Read() (ReadInterval, error) {
	for {
		r, err := s.br.Read()
		if err != nil {
			return ReadInterval{}, err
		}
		// Ignore unmapped read and secondary/supplementary alignment
		if r.Flags&sam.Unmapped != 0 || r.Flags&sam.Secondary != 0 || r.Flags&sam.Supplementary != 0 {
			continue
		}
		return FromRecord(r), nil
	}
}

func (s *bamStream) Close() error {
	err := s.br.Close()
	if errf := s.f.Close(); err == nil {
		err = errf
	}
	return err
}

// FromRecord converts an aligned SAM record to its reference interval.
func FromRecord(r *sam.Record) ReadInterval {
	return ReadInterval{
		Chrom:  r.Ref.Name(),
		Start:  r.Start(),
		End:    r.End(),
		Name:   r.Name,
		Score:  float64(r.MapQ),
		Strand: r.Strand(),
	}
}
