package csvetl

import (
	"context"
	"regexp"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

// Step transforms a frame in place.
type Step func(context.Context, *Frame) error

// Layouts commonly found in source files.
const (
	LayoutUSDate         = "01/02/2006"
	LayoutUSDateTime12   = "01/02/2006 03:04:05 PM"
	LayoutUSDateTime24   = "01/02/2006 15:04:05"
	LayoutUSDateTime24PM = "01/02/2006 15:04:05 PM"
	LayoutDate           = "2006-01-02"
	LayoutDateTime       = "2006-01-02 15:04:05"
)

// RenameColumns renames columns. Columns missing from the frame are ignored.
func RenameColumns(mapping map[string]string) Step {
	return func(_ context.Context, f *Frame) error {
		return f.Rename(mapping)
	}
}

// SelectColumns keeps the columns in the given order.
func SelectColumns(cols ...string) Step {
	return func(_ context.Context, f *Frame) error {
		return f.Select(cols)
	}
}

// DropColumns removes columns.
func DropColumns(cols ...string) Step {
	return func(_ context.Context, f *Frame) error {
		return f.Drop(cols...)
	}
}

// ConvertTimes parses values of cols with the first matching layout of ins
// and formats them with out. Empty values are kept as they are.
func ConvertTimes(out string, ins []string, cols ...string) Step {
	convert := func(v string) (string, error) {
		v = strings.TrimSpace(v)
		if v == "" {
			return v, nil
		}

		for _, layout := range ins {
			if t, err := time.Parse(layout, v); err == nil {
				return t.Format(out), nil
			}
		}

		return "", xerrors.Errorf("%q doesn't match any of %q", v, ins)
	}

	return func(_ context.Context, f *Frame) error {
		for _, c := range cols {
			if err := f.Map(c, convert); err != nil {
				return err
			}
		}
		return nil
	}
}

// ConvertDates converts dates like "12/31/2020" into "2020-12-31".
func ConvertDates(cols ...string) Step {
	return ConvertTimes(LayoutDate, []string{LayoutUSDate}, cols...)
}

// ConvertDateTimes converts values like "12/31/2020 01:02:03 PM" into
// "2020-12-31 13:02:03". Date-only values become midnight.
func ConvertDateTimes(cols ...string) Step {
	return ConvertTimes(
		LayoutDateTime,
		[]string{LayoutUSDateTime12, LayoutUSDateTime24PM, LayoutUSDateTime24, LayoutUSDate},
		cols...,
	)
}

// MapValues replaces values of col found in mapping. Other values are kept.
func MapValues(col string, mapping map[string]string) Step {
	return func(_ context.Context, f *Frame) error {
		return f.Map(col, func(v string) (string, error) {
			if n, ok := mapping[v]; ok {
				return n, nil
			}
			return v, nil
		})
	}
}

// DeriveColumn sets col to fn(row), adding the column when it doesn't exist.
func DeriveColumn(col string, fn func(Row) (string, error)) Step {
	return func(_ context.Context, f *Frame) error {
		return f.Derive(col, fn)
	}
}

// FilterRows keeps rows for which keep returns true.
func FilterRows(keep func(Row) bool) Step {
	return func(_ context.Context, f *Frame) error {
		f.Filter(keep)
		return nil
	}
}

// DropEmpty removes rows whose col is empty.
func DropEmpty(col string) Step {
	return func(_ context.Context, f *Frame) error {
		if !f.Has(col) {
			return xerrors.Errorf("%q: %w", col, ErrColumnNotFound)
		}
		f.Filter(func(r Row) bool { return strings.TrimSpace(r.Get(col)) != "" })
		return nil
	}
}

// ReplaceRegexp replaces matches of re in col with repl, expanding $1 style references.
func ReplaceRegexp(col string, re *regexp.Regexp, repl string) Step {
	return func(_ context.Context, f *Frame) error {
		return f.Map(col, func(v string) (string, error) {
			return re.ReplaceAllString(v, repl), nil
		})
	}
}

// TrimSpace trims surrounding white space of cols, or of every column when none is given.
func TrimSpace(cols ...string) Step {
	return func(_ context.Context, f *Frame) error {
		targets := cols
		if len(targets) == 0 {
			targets = f.Columns()
		}
		for _, c := range targets {
			if err := f.Map(c, func(v string) (string, error) { return strings.TrimSpace(v), nil }); err != nil {
				return err
			}
		}
		return nil
	}
}
