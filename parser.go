package csvetl

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"strings"
)

// RecordReader reads one record at a time and returns io.EOF at the end.
// *csv.Reader satisfies it.
type RecordReader interface {
	Read() ([]string, error)
}

// Parser parses source files into records.
type Parser func(context.Context, io.Reader) (RecordReader, error)

// CSVParser provides a parser for comma separated files.
func CSVParser() Parser {
	return DelimitedParser(',')
}

// DelimitedParser provides a parser for files separated by sep.
// Rows may have fewer fields than the header.
func DelimitedParser(sep rune) Parser {
	return func(_ context.Context, r io.Reader) (RecordReader, error) {
		cr := csv.NewReader(r)
		cr.Comma = sep
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		return cr, nil
	}
}

// LinesParser provides a parser which reads each non-empty line as a single field.
// It suits fixed width text files whose columns are split by later steps.
func LinesParser() Parser {
	return func(_ context.Context, r io.Reader) (RecordReader, error) {
		s := bufio.NewScanner(r)
		s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		return &lineReader{scanner: s}, nil
	}
}

type lineReader struct {
	scanner *bufio.Scanner
}

func (l *lineReader) Read() ([]string, error) {
	for l.scanner.Scan() {
		line := strings.TrimRight(l.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return []string{line}, nil
	}

	if err := l.scanner.Err(); err != nil {
		return nil, err
	}

	return nil, io.EOF
}

// sliceReader serves records which are already in memory.
type sliceReader struct {
	records [][]string
	i       int
}

func (s *sliceReader) Read() ([]string, error) {
	if s.i >= len(s.records) {
		return nil, io.EOF
	}
	r := s.records[s.i]
	s.i++
	return r, nil
}

// readAll drains a RecordReader.
func readAll(rr RecordReader) ([][]string, error) {
	var records [][]string
	for {
		r, err := rr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
}
