package csvetl

import (
	"cloud.google.com/go/bigquery"
	"golang.org/x/xerrors"
)

// SchemaColumns returns the field names of schema in order.
func SchemaColumns(schema bigquery.Schema) []string {
	cols := make([]string, len(schema))
	for i, f := range schema {
		cols[i] = f.Name
	}
	return cols
}

// ValidateColumns checks that columns are exactly the fields of schema in order,
// which is what a CSV load with a fixed schema requires.
func ValidateColumns(schema bigquery.Schema, columns []string) error {
	if len(schema) == 0 {
		return nil
	}

	want := SchemaColumns(schema)
	if len(want) != len(columns) {
		return xerrors.Errorf("schema has %d fields but output has %d columns: %v", len(want), len(columns), columns)
	}

	for i := range want {
		if want[i] != columns[i] {
			return xerrors.Errorf("column %d is %q but schema expects %q", i, columns[i], want[i])
		}
	}

	return nil
}

// SchemaJSON renders schema as a BigQuery JSON schema file.
func SchemaJSON(schema bigquery.Schema) ([]byte, error) {
	b, err := schema.ToJSONFields()
	if err != nil {
		return nil, xerrors.Errorf("failed to render schema: %w", err)
	}
	return b, nil
}

// MustSchemaFromJSON parses a BigQuery JSON schema and panics on failure.
// It is meant for schemas embedded in the binary.
func MustSchemaFromJSON(b []byte) bigquery.Schema {
	s, err := bigquery.SchemaFromJSON(b)
	if err != nil {
		panic(xerrors.Errorf("failed to parse schema: %w", err))
	}
	return s
}
