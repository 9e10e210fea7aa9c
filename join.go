package csvetl

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/xerrors"
)

// leftJoin joins right onto left by keys. Key columns come first in the
// result, followed by the other columns of left and then of right.
// Rows of left without a match get empty values for the columns of right.
func leftJoin(left, right *Frame, keys []string) (*Frame, error) {
	for _, k := range keys {
		if !left.Has(k) || !right.Has(k) {
			return nil, xerrors.Errorf("join key %q: %w", k, ErrColumnNotFound)
		}
	}

	if left.Len() == 0 || right.Len() == 0 {
		return padJoin(left, right, keys)
	}

	opts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	}

	a := dataframe.LoadRecords(left.Records(), opts...)
	if a.Err != nil {
		return nil, xerrors.Errorf("failed to load left side of join: %w", a.Err)
	}

	b := dataframe.LoadRecords(right.Records(), opts...)
	if b.Err != nil {
		return nil, xerrors.Errorf("failed to load right side of join: %w", b.Err)
	}

	joined := a.LeftJoin(b, keys...)
	if joined.Err != nil {
		return nil, xerrors.Errorf("failed to join on %v: %w", keys, joined.Err)
	}

	names := joined.Names()
	rows := make([][]string, joined.Nrow())
	for i := range rows {
		rows[i] = make([]string, len(names))
	}

	for j, name := range names {
		s := joined.Col(name)
		for i := range rows {
			if e := s.Elem(i); !e.IsNA() {
				rows[i][j] = e.String()
			}
		}
	}

	return NewFrame(names, rows)
}

// padJoin handles joins with an empty side, which dataframe refuses to load.
func padJoin(left, right *Frame, keys []string) (*Frame, error) {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	cols := append([]string{}, keys...)
	for _, c := range left.columns {
		if !isKey[c] {
			cols = append(cols, c)
		}
	}
	var extra []string
	for _, c := range right.columns {
		if !isKey[c] {
			extra = append(extra, c)
		}
	}
	cols = append(cols, extra...)

	var matches map[string][][]string
	if right.Len() > 0 {
		matches = map[string][][]string{}
		for j := range right.rows {
			r := Row{frame: right, i: j}
			k := joinKey(r, keys)
			vs := make([]string, len(extra))
			for i, c := range extra {
				vs[i] = r.Get(c)
			}
			matches[k] = append(matches[k], vs)
		}
	}

	var rows [][]string
	for j := range left.rows {
		r := Row{frame: left, i: j}
		base := make([]string, 0, len(cols))
		for _, c := range cols[:len(cols)-len(extra)] {
			base = append(base, r.Get(c))
		}

		ms := matches[joinKey(r, keys)]
		if len(ms) == 0 {
			rows = append(rows, append(base, make([]string, len(extra))...))
			continue
		}
		for _, m := range ms {
			rows = append(rows, append(append([]string{}, base...), m...))
		}
	}

	return NewFrame(cols, rows)
}

func joinKey(r Row, keys []string) string {
	k := ""
	for _, c := range keys {
		k += r.Get(c) + "\x00"
	}
	return k
}
