package csvetl

import (
	"context"
	"errors"
	"io"

	"github.com/extrame/xls"
	"gitlab.com/osaki-lab/iowrapper"
	"golang.org/x/xerrors"
)

var errNoSheet = errors.New("no sheet found")

// XLSParser provides a parser for Excel 97-2003 workbooks.
// Rows of the sheet at index sheet are read from the first to the last used cell.
func XLSParser(sheet int) Parser {
	getRow := func(s *xls.WorkSheet, i int) (r *xls.Row, ok bool) {
		// xls panics on rows which are not stored in the sheet.
		defer func() {
			if recover() != nil {
				r, ok = nil, false
			}
		}()

		return s.Row(i), true
	}

	open := func(r io.Reader) (wb *xls.WorkBook, err error) {
		// Broken workbooks can make xls panic as well.
		defer func() {
			if p := recover(); p != nil {
				wb, err = nil, xerrors.Errorf("broken xls file: %v", p)
			}
		}()

		return xls.OpenReader(iowrapper.NewSeeker(r), "utf-8")
	}

	return func(_ context.Context, r io.Reader) (RecordReader, error) {
		wb, err := open(r)
		if err != nil {
			return nil, xerrors.Errorf("failed to open xls file: %w", err)
		}
		if wb == nil {
			return nil, xerrors.Errorf("failed to open xls file: %w", errNoSheet)
		}

		s := wb.GetSheet(sheet)
		if s == nil {
			return nil, xerrors.Errorf("sheet %d: %w", sheet, errNoSheet)
		}

		records := [][]string{}
		for i := 0; i <= int(s.MaxRow); i++ {
			row, ok := getRow(s, i)
			if !ok || row == nil {
				continue
			}

			record := []string{}
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				record = append(record, row.Col(c))
			}

			records = append(records, record)
		}

		return &sliceReader{records: records}, nil
	}
}
