package csvetl_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.nownabe.dev/csvetl"
)

const testDefinitions = `
pipelines:
  - name: austin_waste.waste_and_diversion
    description: Austin waste and diversion
    schedule: "@daily"
    rename:
      Load ID: load_id
      Report Date: report_date
      Load Type: load_type
    dates: [report_date]
    headers: [load_id, report_date, load_type]
    schema:
      - {name: load_id, type: integer, mode: required}
      - {name: report_date, type: date}
      - {name: load_type, type: string}
  - name: custom.tsv
    schedule: "0 3 * * 1"
    format: delimited
    delimiter: "\t"
    encoding: shift_jis
    compression: gzip
    skip_leading_rows: 2
    values:
      sex: {"2": Male, "3": Female}
    drop: [unused]
`

func TestLoadDefinitions(t *testing.T) {
	t.Parallel()

	ps, err := csvetl.LoadDefinitions(strings.NewReader(testDefinitions), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ps) != 2 {
		t.Fatalf("expected 2 pipelines but %d", len(ps))
	}

	waste := ps[0]
	if waste.Name != "austin_waste.waste_and_diversion" || waste.Schedule != "@daily" {
		t.Errorf("unexpected pipeline: %+v", waste)
	}
	if diff := cmp.Diff([]string{"load_id", "report_date", "load_type"}, csvetl.SchemaColumns(waste.Schema)); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
	if !waste.Schema[0].Required {
		t.Error("load_id should be required")
	}
	if len(waste.Steps) != 1 {
		t.Errorf("expected 1 step but %d", len(waste.Steps))
	}

	custom := ps[1]
	if custom.Encoding == nil || custom.Compression != csvetl.CompressionGzip || custom.SkipLeadingRows != 2 {
		t.Errorf("unexpected pipeline: %+v", custom)
	}
	if len(custom.Steps) != 2 {
		t.Errorf("expected 2 steps but %d", len(custom.Steps))
	}
}

func TestLoadDefinitions_errors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown key":     "pipelines:\n  - name: a\n    colour: red\n",
		"bad schedule":    "pipelines:\n  - name: a\n    schedule: every day\n",
		"bad format":      "pipelines:\n  - name: a\n    format: parquet\n",
		"bad delimiter":   "pipelines:\n  - name: a\n    format: delimited\n    delimiter: '||'\n",
		"bad encoding":    "pipelines:\n  - name: a\n    encoding: klingon\n",
		"no name":         "pipelines:\n  - schedule: '@daily'\n",
		"schema mismatch": "pipelines:\n  - name: a\n    headers: [x]\n    schema: [{name: y, type: string}]\n",
	}

	for name, doc := range cases {
		doc := doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := csvetl.LoadDefinitions(strings.NewReader(doc), nil); err == nil {
				t.Error("expected error didn't occur")
			}
		})
	}
}

func TestNextRun(t *testing.T) {
	t.Parallel()

	from := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	next, ok := csvetl.NextRun("@daily", from)
	if !ok || !next.Equal(time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected next run %s (%v)", next, ok)
	}

	if _, ok := csvetl.NextRun(csvetl.ScheduleOnce, from); ok {
		t.Error("manual schedule must not have a next run")
	}

	if err := csvetl.ValidateSchedule("0 2 * * *"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := csvetl.ValidateSchedule("@sometimes"); err == nil {
		t.Error("expected error for invalid schedule")
	}
}
