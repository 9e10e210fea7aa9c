package csvetl

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		parser Parser
		body   string
		expect [][]string
	}{
		{
			name:   "csv",
			parser: CSVParser(),
			body:   "a,b,c\n1,\"2,3\",4\n5,6\n",
			expect: [][]string{{"a", "b", "c"}, {"1", "2,3", "4"}, {"5", "6"}},
		},
		{
			name:   "lazy quotes",
			parser: CSVParser(),
			body:   "a,b\n1,x\"y\n",
			expect: [][]string{{"a", "b"}, {"1", "x\"y"}},
		},
		{
			name:   "tab",
			parser: DelimitedParser('\t'),
			body:   "a\tb\r\n1\t2\r\n",
			expect: [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:   "lines",
			parser: LinesParser(),
			body:   "AC Antigua and Barbuda\r\n\r\nAE United Arab Emirates  \n",
			expect: [][]string{{"AC Antigua and Barbuda"}, {"AE United Arab Emirates  "}},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			rr, err := c.parser(context.Background(), strings.NewReader(c.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			actual, err := readAll(rr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(c.expect, actual); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestXLSParser_broken(t *testing.T) {
	t.Parallel()

	_, err := XLSParser(0)(context.Background(), strings.NewReader("not a workbook"))
	if err == nil {
		t.Error("expected error for a broken workbook")
	}
}
