package csvetl

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/bigquery"
	"github.com/gorhill/cronexpr"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// ScheduleOnce marks pipelines which are triggered manually.
const ScheduleOnce = "@once"

// Definitions is the document read by LoadDefinitions.
type Definitions struct {
	Pipelines []Definition `yaml:"pipelines"`
}

// Definition declares a pipeline without code.
type Definition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Schedule    string `yaml:"schedule"`

	// Format is one of csv, delimited, lines or xls.
	Format          string `yaml:"format"`
	Delimiter       string `yaml:"delimiter"`
	Sheet           int    `yaml:"sheet"`
	Encoding        string `yaml:"encoding"`
	Compression     string `yaml:"compression"`
	ArchiveMember   string `yaml:"archive_member"`
	SkipLeadingRows int    `yaml:"skip_leading_rows"`

	SourceColumns []string                     `yaml:"source_columns"`
	Rename        map[string]string            `yaml:"rename"`
	Trim          bool                         `yaml:"trim"`
	Dates         []string                     `yaml:"dates"`
	DateTimes     []string                     `yaml:"datetimes"`
	Values        map[string]map[string]string `yaml:"values"`
	DropEmpty     []string                     `yaml:"drop_empty"`
	Drop          []string                     `yaml:"drop"`
	Headers       []string                     `yaml:"headers"`
	Schema        []FieldDefinition            `yaml:"schema"`
	JoinKeys      []string                     `yaml:"join_keys"`
	ChunkSize     int                          `yaml:"chunk_size"`
}

// FieldDefinition is a column of the warehouse schema.
type FieldDefinition struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Mode        string `yaml:"mode,omitempty" json:"mode,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// LoadDefinitions reads pipelines from a YAML document.
// Unknown keys are rejected.
func LoadDefinitions(r io.Reader, n Notifier) ([]*Pipeline, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var defs Definitions
	if err := dec.Decode(&defs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, xerrors.Errorf("failed to decode definitions: %w", err)
	}

	ps := make([]*Pipeline, 0, len(defs.Pipelines))
	for i, d := range defs.Pipelines {
		p, err := d.Pipeline(n)
		if err != nil {
			return nil, xerrors.Errorf("invalid definition %d (%s): %w", i, d.Name, err)
		}
		ps = append(ps, p)
	}

	return ps, nil
}

// Pipeline builds the pipeline the definition declares.
func (d *Definition) Pipeline(n Notifier) (*Pipeline, error) {
	if err := ValidateSchedule(d.Schedule); err != nil {
		return nil, err
	}

	parser, err := d.parser()
	if err != nil {
		return nil, err
	}

	c, err := ParseCompression(d.Compression)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Name:            d.Name,
		Description:     d.Description,
		Schedule:        d.Schedule,
		Parser:          parser,
		Compression:     c,
		ArchiveMember:   d.ArchiveMember,
		SkipLeadingRows: d.SkipLeadingRows,
		SourceColumns:   d.SourceColumns,
		Rename:          d.Rename,
		Steps:           d.steps(),
		Headers:         d.Headers,
		JoinKeys:        d.JoinKeys,
		ChunkSize:       d.ChunkSize,
		Notifier:        n,
	}

	if d.Encoding != "" {
		e, err := htmlindex.Get(d.Encoding)
		if err != nil {
			return nil, xerrors.Errorf("unknown encoding %q: %w", d.Encoding, err)
		}
		p.Encoding = e
	}

	if len(d.Schema) > 0 {
		p.Schema, err = schemaFromDefinitions(d.Schema)
		if err != nil {
			return nil, err
		}
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func (d *Definition) parser() (Parser, error) {
	switch strings.ToLower(d.Format) {
	case "", "csv":
		return CSVParser(), nil
	case "delimited":
		r, size := utf8.DecodeRuneInString(d.Delimiter)
		if size == 0 || size != len(d.Delimiter) {
			return nil, xerrors.Errorf("delimiter must be a single character: %q", d.Delimiter)
		}
		return DelimitedParser(r), nil
	case "lines":
		return LinesParser(), nil
	case "xls":
		return XLSParser(d.Sheet), nil
	}
	return nil, xerrors.Errorf("unknown format %q", d.Format)
}

func (d *Definition) steps() []Step {
	var steps []Step

	if d.Trim {
		steps = append(steps, TrimSpace())
	}
	if len(d.Dates) > 0 {
		steps = append(steps, ConvertDates(d.Dates...))
	}
	if len(d.DateTimes) > 0 {
		steps = append(steps, ConvertDateTimes(d.DateTimes...))
	}
	for col, mapping := range d.Values {
		steps = append(steps, MapValues(col, mapping))
	}
	for _, col := range d.DropEmpty {
		steps = append(steps, DropEmpty(col))
	}
	if len(d.Drop) > 0 {
		steps = append(steps, DropColumns(d.Drop...))
	}

	return steps
}

func schemaFromDefinitions(fields []FieldDefinition) (bigquery.Schema, error) {
	for i := range fields {
		fields[i].Type = strings.ToUpper(fields[i].Type)
		fields[i].Mode = strings.ToUpper(fields[i].Mode)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(fields); err != nil {
		return nil, xerrors.Errorf("failed to encode schema: %w", err)
	}

	s, err := bigquery.SchemaFromJSON(buf.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("invalid schema: %w", err)
	}

	return s, nil
}

// ValidateSchedule checks a cron expression. Empty and ScheduleOnce are valid.
func ValidateSchedule(schedule string) error {
	if schedule == "" || schedule == ScheduleOnce {
		return nil
	}
	if _, err := cronexpr.Parse(schedule); err != nil {
		return xerrors.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return nil
}

// NextRun returns the first time after from the schedule fires.
// It returns false for manual schedules.
func NextRun(schedule string, from time.Time) (time.Time, bool) {
	if schedule == "" || schedule == ScheduleOnce {
		return time.Time{}, false
	}

	exp, err := cronexpr.Parse(schedule)
	if err != nil {
		return time.Time{}, false
	}

	next := exp.Next(from)
	return next, !next.IsZero()
}
