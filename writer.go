package csvetl

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"
)

// csvOutput writes frames into a single CSV file with one header row.
type csvOutput struct {
	name    string
	f       *os.File
	buf     *bufio.Writer
	w       *csv.Writer
	columns []string
	rows    int
}

func createOutput(name string) (*csvOutput, error) {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return nil, xerrors.Errorf("failed to create directory for %s: %w", name, err)
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, xerrors.Errorf("failed to create %s: %w", name, err)
	}

	buf := bufio.NewWriter(f)
	return &csvOutput{name: name, f: f, buf: buf, w: csv.NewWriter(buf)}, nil
}

// write appends the frame. The first frame decides the header and later
// frames must have the same columns.
func (o *csvOutput) write(f *Frame) error {
	if o.columns == nil {
		if err := o.writeHeader(f.Columns()); err != nil {
			return err
		}
	} else if !equalStrings(o.columns, f.columns) {
		return xerrors.Errorf("columns changed from %v to %v while writing %s", o.columns, f.columns, o.name)
	}

	if err := o.w.WriteAll(f.Rows()); err != nil {
		return xerrors.Errorf("failed to write %s: %w", o.name, err)
	}
	o.rows += f.Len()

	return nil
}

func (o *csvOutput) writeHeader(columns []string) error {
	o.columns = append([]string{}, columns...)
	if err := o.w.Write(o.columns); err != nil {
		return xerrors.Errorf("failed to write header of %s: %w", o.name, err)
	}
	return nil
}

// close writes fallback as header when nothing has been written yet.
func (o *csvOutput) close(fallback []string) error {
	if o.columns == nil && len(fallback) > 0 {
		if err := o.writeHeader(fallback); err != nil {
			o.f.Close()
			return err
		}
	}

	o.w.Flush()
	if err := o.w.Error(); err != nil {
		o.f.Close()
		return xerrors.Errorf("failed to flush %s: %w", o.name, err)
	}

	if err := o.buf.Flush(); err != nil {
		o.f.Close()
		return xerrors.Errorf("failed to flush %s: %w", o.name, err)
	}

	if err := o.f.Close(); err != nil {
		return xerrors.Errorf("failed to close %s: %w", o.name, err)
	}

	return nil
}

// abort closes the file after a failure.
func (o *csvOutput) abort() {
	o.f.Close()
}
