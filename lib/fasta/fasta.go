//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// faiEntry is one line of a .fai index file.
type faiEntry struct {
	name         string
	length       int
	offset       int64
	basesPerLine int
	bytesPerLine int
}

// Reader provides random access to an uncompressed FASTA file through its
// samtools .fai index.
type Reader struct {
	f       *os.File
	entries map[string]faiEntry
}

// Open opens a FASTA file and its index at path+".fai".
func Open(fpath string) (*Reader, error) {
	entries, err := readIndex(fpath + ".fai")
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	return &Reader{f: f, entries: entries}, nil
}

func readIndex(ipath string) (map[string]faiEntry, error) {
	ifos, err := os.Open(ipath)
	if err != nil {
		return nil, err
	}
	defer ifos.Close()

	entries := make(map[string]faiEntry)
	iscanner := bufio.NewScanner(ifos)
	for iscanner.Scan() {
		fields := strings.Split(iscanner.Text(), "\t")
		if len(fields) < 5 {
			return nil, fmt.Errorf("%s: expected 5 columns, got %d", ipath, len(fields))
		}
		var e faiEntry
		e.name = fields[0]
		cols := []*int{&e.length, nil, &e.basesPerLine, &e.bytesPerLine}
		for i, col := range cols {
			if col == nil {
				continue
			}
			if *col, err = strconv.Atoi(fields[i+1]); err != nil {
				return nil, fmt.Errorf("%s: invalid index field %s", ipath, fields[i+1])
			}
		}
		if e.offset, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
			return nil, fmt.Errorf("%s: invalid offset %s", ipath, fields[2])
		}
		entries[e.name] = e
	}
	if err := iscanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Length returns the length of a sequence and whether it is indexed.
func (r *Reader) Length(name string) (int, bool) {
	e, ok := r.entries[name]
	return e.length, ok
}

// Fetch returns the uppercased bases of [start,end) from the named sequence.
func (r *Reader) Fetch(name string, start, end int) ([]byte, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("sequence %s not in index", name)
	}
	if start < 0 || end > e.length || start >= end {
		return nil, fmt.Errorf("%s: invalid range [%d,%d) for length %d", name, start, end, e.length)
	}
	// File offset of the first requested base
	offset := e.offset + int64(start/e.basesPerLine)*int64(e.bytesPerLine) + int64(start%e.basesPerLine)
	// Enough bytes to cover the bases plus the line terminators in between
	n := end - start
	nNewline := e.bytesPerLine - e.basesPerLine
	raw := make([]byte, n+((start%e.basesPerLine+n)/e.basesPerLine+1)*nNewline)
	if _, err := r.f.ReadAt(raw, offset); err != nil && err != io.EOF {
		return nil, err
	}
	seq := make([]byte, 0, n)
	for _, b := range raw {
		if b == '\n' || b == '\r' {
			continue
		}
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		seq = append(seq, b)
		if len(seq) == n {
			break
		}
	}
	if len(seq) != n {
		return nil, fmt.Errorf("%s: short read at [%d,%d)", name, start, end)
	}
	return seq, nil
}

func (r *Reader) Close() error {
	return r.f.Close()
}

// ReverseComplement reverse-complements a sequence in place and returns it.
// Non-ACGT bases are mapped to N.
func ReverseComplement(seq []byte) []byte {
	for i, j := 0, len(seq)-1; i <= j; i, j = i+1, j-1 {
		seq[i], seq[j] = complement(seq[j]), complement(seq[i])
	}
	return seq
}

func complement(b byte) byte {
	switch b {
	case 'A', 'a':
		return 'T'
	case 'C', 'c':
		return 'G'
	case 'G', 'g':
		return 'C'
	case 'T', 't':
		return 'A'
	}
	return 'N'
}
