package csvetl_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.nownabe.dev/csvetl"
)

func newTestFrame(t *testing.T, columns []string, rows [][]string) *csvetl.Frame {
	t.Helper()

	f, err := csvetl.NewFrame(columns, rows)
	if err != nil {
		t.Fatalf("failed to build frame: %v", err)
	}

	return f
}

func assertRecords(t *testing.T, expected [][]string, f *csvetl.Frame) {
	t.Helper()

	if diff := cmp.Diff(expected, f.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFrame(t *testing.T) {
	t.Parallel()

	f := newTestFrame(t, []string{"a", "b", "c"}, [][]string{{"1", "2", "3"}, {"4"}})
	assertRecords(t, [][]string{{"a", "b", "c"}, {"1", "2", "3"}, {"4", "", ""}}, f)

	if _, err := csvetl.NewFrame([]string{"a"}, [][]string{{"1", "2"}}); err == nil {
		t.Error("expected error for a row longer than the header")
	}

	if _, err := csvetl.NewFrame([]string{"a", "a"}, nil); !errors.Is(err, csvetl.ErrDuplicateColumn) {
		t.Errorf("expected ErrDuplicateColumn but %v", err)
	}
}

func TestFrame_Rename(t *testing.T) {
	t.Parallel()

	f := newTestFrame(t, []string{"Date", "Name"}, [][]string{{"01/02/2020", "foo"}})

	if err := f.Rename(map[string]string{"Date": "date", "Missing": "missing"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRecords(t, [][]string{{"date", "Name"}, {"01/02/2020", "foo"}}, f)

	err := f.Rename(map[string]string{"Name": "date"})
	if !errors.Is(err, csvetl.ErrDuplicateColumn) {
		t.Errorf("expected ErrDuplicateColumn but %v", err)
	}
	if diff := cmp.Diff([]string{"date", "Name"}, f.Columns()); diff != "" {
		t.Errorf("failed rename must keep columns (-want +got):\n%s", diff)
	}
}

func TestFrame_SelectAndDrop(t *testing.T) {
	t.Parallel()

	f := newTestFrame(t, []string{"a", "b", "c"}, [][]string{{"1", "2", "3"}})

	if err := f.Select([]string{"c", "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRecords(t, [][]string{{"c", "a"}, {"3", "1"}}, f)

	if err := f.Select([]string{"b"}); !errors.Is(err, csvetl.ErrColumnNotFound) {
		t.Errorf("expected ErrColumnNotFound but %v", err)
	}

	if err := f.Drop("c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRecords(t, [][]string{{"a"}, {"1"}}, f)

	if err := f.Drop("c"); !errors.Is(err, csvetl.ErrColumnNotFound) {
		t.Errorf("expected ErrColumnNotFound but %v", err)
	}
}

func TestFrame_DeriveAndFilter(t *testing.T) {
	t.Parallel()

	f := newTestFrame(t, []string{"x", "y"}, [][]string{{"1", "2"}, {"", "4"}, {"5", "6"}})

	err := f.Derive("xy", func(r csvetl.Row) (string, error) {
		return r.Get("x") + r.Get("y"), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.Filter(func(r csvetl.Row) bool { return r.Get("x") != "" })

	assertRecords(t, [][]string{{"x", "y", "xy"}, {"1", "2", "12"}, {"5", "6", "56"}}, f)

	if f.Len() != 2 {
		t.Fatalf("expected 2 rows but %d", f.Len())
	}

	err = f.Derive("z", func(r csvetl.Row) (string, error) {
		if _, ok := r.Lookup("missing"); ok {
			t.Error("missing column must not be found")
		}
		return "", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Has("z") || f.Len() != 2 {
		t.Errorf("unexpected frame: %v", f.Records())
	}
}

func TestFrame_Append(t *testing.T) {
	t.Parallel()

	a := newTestFrame(t, []string{"a", "b"}, [][]string{{"1", "2"}})
	b := newTestFrame(t, []string{"a", "b"}, [][]string{{"3", "4"}})
	c := newTestFrame(t, []string{"b", "a"}, nil)

	if err := a.Append(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRecords(t, [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}}, a)

	if err := a.Append(c); err == nil {
		t.Error("expected error for different columns")
	}
}
