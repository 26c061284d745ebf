//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package reads

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

type textStream struct {
	path    string
	f       *os.File
	zr      *gzip.Reader
	scanner *bufio.Scanner
	nLine   int
}

func openText(path string) (*textStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s := &textStream{path: path, f: f}
	if strings.HasSuffix(path, ".gz") {
		if s.zr, err = gzip.NewReader(f); err != nil {
			f.Close()
			return nil, err
		}
		s.scanner = bufio.NewScanner(s.zr)
	} else {
		s.scanner = bufio.NewScanner(f)
	}
	return s, nil
}

// next returns the fields of the next non-empty line, or io.EOF.
func (s *textStream) next() ([]string, error) {
	for s.scanner.Scan() {
		s.nLine++
		line := s.scanner.Text()
		if len(line) == 0 {
			continue
		}
		return strings.Split(line, "\t"), nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (s *textStream) errLine(msg string) error {
	return fmt.Errorf("%s: line %d: %s", s.path, s.nLine, msg)
}

func (s *textStream) Close() error {
	var err error
	if s.zr != nil {
		err = s.zr.Close()
	}
	if errf := s.f.Close(); err == nil {
		err = errf
	}
	return err
}

type tagAlignStream struct {
	*textStream
}

// OpenTagAlign opens a stream over a 6-column tagAlign file, gzipped or not.
func OpenTagAlign(path string) (Stream, error) {
	ts, err := openText(path)
	if err != nil {
		return nil, err
	}
	return &tagAlignStream{ts}, nil
}

func (s *tagAlignStream) Read() (ReadInterval, error) {
	var iv ReadInterval
	fields, err := s.next()
	if err != nil {
		return iv, err
	}
	if len(fields) < 6 {
		return iv, s.errLine(fmt.Sprintf("expected 6 columns, got %d", len(fields)))
	}
	iv.Chrom = fields[0]
	if iv.Start, err = strconv.Atoi(fields[1]); err != nil {
		return iv, s.errLine("invalid start " + fields[1])
	}
	if iv.End, err = strconv.Atoi(fields[2]); err != nil {
		return iv, s.errLine("invalid end " + fields[2])
	}
	if iv.Start >= iv.End {
		return iv, s.errLine(fmt.Sprintf("empty interval [%d,%d)", iv.Start, iv.End))
	}
	iv.Name = fields[3]
	if iv.Score, err = strconv.ParseFloat(fields[4], 64); err != nil {
		return iv, s.errLine("invalid score " + fields[4])
	}
	strand, ok := ParseStrand(fields[5])
	if !ok {
		return iv, s.errLine("invalid strand " + fields[5])
	}
	iv.Strand = strand
	return iv, nil
}

type fragmentStream struct {
	*textStream
	pending *ReadInterval
}

// OpenFragment opens a stream over a fragment file (chrom, start, end,
// barcode, count), gzipped or not. Both fragment ends are insertion sites:
// each fragment yields a + and a - record over the same interval.
func OpenFragment(path string) (Stream, error) {
	ts, err := openText(path)
	if err != nil {
		return nil, err
	}
	return &fragmentStream{textStream: ts}, nil
}

func (s *fragmentStream) Read() (ReadInterval, error) {
	var iv ReadInterval
	if s.pending != nil {
		iv, s.pending = *s.pending, nil
		return iv, nil
	}
	fields, err := s.next()
	if err != nil {
		return iv, err
	}
	if len(fields) < 3 {
		return iv, s.errLine(fmt.Sprintf("expected at least 3 columns, got %d", len(fields)))
	}
	iv.Chrom = fields[0]
	if iv.Start, err = strconv.Atoi(fields[1]); err != nil {
		return iv, s.errLine("invalid start " + fields[1])
	}
	if iv.End, err = strconv.Atoi(fields[2]); err != nil {
		return iv, s.errLine("invalid end " + fields[2])
	}
	if iv.Start >= iv.End {
		return iv, s.errLine(fmt.Sprintf("empty interval [%d,%d)", iv.Start, iv.End))
	}
	if len(fields) > 3 {
		iv.Name = fields[3]
	}
	if len(fields) > 4 {
		if iv.Score, err = strconv.ParseFloat(fields[4], 64); err != nil {
			return iv, s.errLine("invalid count " + fields[4])
		}
	}
	iv.Strand = 1
	minus := iv
	minus.Strand = -1
	s.pending = &minus
	return iv, nil
}
