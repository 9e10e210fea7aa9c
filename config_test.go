package csvetl_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.nownabe.dev/csvetl"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestJobFromEnv(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		env    map[string]string
		expect csvetl.Job
	}{
		{
			name: "single source",
			env: map[string]string{
				"PIPELINE_NAME":     "iowa_liquor_sales.sales",
				"SOURCE_URL":        "https://example.com/sales.csv",
				"SOURCE_FILE":       "files/data.csv",
				"TARGET_FILE":       "files/data_output.csv",
				"TARGET_GCS_BUCKET": "bucket",
				"TARGET_GCS_PATH":   "data/iowa/data_output.csv",
				"CSV_HEADERS":       `["a","b"]`,
				"RENAME_MAPPINGS":   `{"A":"a","B":"b"}`,
				"CHUNKSIZE":         "1000",
			},
			expect: csvetl.Job{
				Pipeline:       "iowa_liquor_sales.sales",
				Sources:        []csvetl.Source{{URL: "https://example.com/sales.csv", File: "files/data.csv"}},
				TargetFile:     "files/data_output.csv",
				TargetBucket:   "bucket",
				TargetPath:     "data/iowa/data_output.csv",
				Headers:        []string{"a", "b"},
				RenameMappings: map[string]string{"A": "a", "B": "b"},
				ChunkSize:      1000,
			},
		},
		{
			name: "source lists",
			env: map[string]string{
				"SOURCE_URL":  `["gs://b/a.csv","gs://b/b.csv"]`,
				"SOURCE_FILE": "files/data.csv",
				"START_YEAR":  "1990",
				"DATA_NAMES":  `["x","y"]`,
				"FILE_NAME":   "member.csv",
			},
			expect: csvetl.Job{
				Sources: []csvetl.Source{
					{URL: "gs://b/a.csv", File: "files/data_0.csv"},
					{URL: "gs://b/b.csv", File: "files/data_1.csv"},
				},
				StartYear:     1990,
				TargetFile:    "files/data_output.csv",
				SourceColumns: []string{"x", "y"},
				ArchiveMember: "member.csv",
			},
		},
		{
			name: "ftp",
			env: map[string]string{
				"FTP_HOST":     "ftp.ncdc.noaa.gov",
				"FTP_DIR":      "pub/data/ghcn/daily",
				"FTP_FILENAME": "ghcnd-countries.txt",
				"SOURCE_FILE":  "files/data.csv",
			},
			expect: csvetl.Job{
				Sources: []csvetl.Source{
					{URL: "ftp://ftp.ncdc.noaa.gov/pub/data/ghcn/daily/ghcnd-countries.txt", File: "files/data.csv"},
				},
				TargetFile: "files/data_output.csv",
			},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			actual, err := csvetl.JobFromEnv(lookupFrom(c.env))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(c.expect, actual); diff != "" {
				t.Errorf("job mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJobFromEnv_errors(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]string{
		"bucket without path": {"TARGET_GCS_BUCKET": "bucket"},
		"broken headers":      {"CSV_HEADERS": `["a",`},
		"broken mappings":     {"RENAME_MAPPINGS": `["a"]`},
		"negative chunk":      {"CHUNKSIZE": "-1"},
		"non numeric year":    {"START_YEAR": "nineteen"},
		"mismatched files": {
			"SOURCE_URL":  `["a","b","c"]`,
			"SOURCE_FILE": `["x","y"]`,
		},
	}

	for name, env := range cases {
		env := env
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := csvetl.JobFromEnv(lookupFrom(env)); err == nil {
				t.Error("expected error didn't occur")
			}
		})
	}
}
