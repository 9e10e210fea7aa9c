package csvetl

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/xerrors"
)

// Pipeline defines how to turn source files into a CSV ready for loading.
type Pipeline struct {
	// Name is the pipeline's name used to select it, in logs and in notifications.
	// By convention it is "<dataset>.<table>" of the destination.
	Name        string
	Description string

	// Schedule is the cron expression the external scheduler triggers the job with.
	Schedule string

	Parser          Parser
	Encoding        encoding.Encoding
	Compression     Compression
	ArchiveMember   string
	SkipLeadingRows int

	// SourceColumns names source columns positionally.
	// When empty, the first record after SkipLeadingRows is the header.
	SourceColumns []string

	// Rename maps source column names to output column names.
	Rename map[string]string

	// Steps run in order after renaming.
	Steps []Step

	// Headers are the output columns in order. They default to the field names of Schema.
	Headers []string

	// Schema is the warehouse table schema the output is loaded with.
	Schema bigquery.Schema

	// JoinKeys, when set, left-joins all sources on these columns instead of concatenating them.
	JoinKeys []string

	// ChunkSize bounds the number of rows transformed at once. Zero means whole files.
	ChunkSize int

	Notifier Notifier
	Fetcher  Fetcher
	Uploader Uploader
}

// OutputColumns returns the columns the pipeline writes, or nil when it keeps all columns.
func (p *Pipeline) OutputColumns() []string {
	if len(p.Headers) > 0 {
		return append([]string{}, p.Headers...)
	}
	if len(p.Schema) > 0 {
		return SchemaColumns(p.Schema)
	}
	return nil
}

func (p *Pipeline) validate() error {
	if p.Name == "" {
		return xerrors.New("pipeline name is required")
	}

	if len(p.Headers) > 0 {
		if err := ValidateColumns(p.Schema, p.Headers); err != nil {
			return xerrors.Errorf("headers of %s don't match its schema: %w", p.Name, err)
		}
	}

	if p.ChunkSize < 0 {
		return xerrors.Errorf("chunk size of %s must not be negative", p.Name)
	}

	return nil
}

// runConfig is the pipeline definition with the job overrides applied.
type runConfig struct {
	encoding      encoding.Encoding
	member        string
	sourceColumns []string
	rename        map[string]string
	headers       []string
	chunkSize     int
}

func (p *Pipeline) configure(job Job) (*runConfig, error) {
	c := &runConfig{
		encoding:      p.Encoding,
		member:        p.ArchiveMember,
		sourceColumns: p.SourceColumns,
		rename:        job.RenameMappings,
		headers:       p.OutputColumns(),
		chunkSize:     p.ChunkSize,
	}

	if job.Encoding != "" {
		e, err := htmlindex.Get(job.Encoding)
		if err != nil {
			return nil, xerrors.Errorf("unknown encoding %q: %w", job.Encoding, err)
		}
		c.encoding = e
	}

	if job.ArchiveMember != "" {
		c.member = job.ArchiveMember
	}
	if len(job.SourceColumns) > 0 {
		c.sourceColumns = job.SourceColumns
	}
	if len(job.Headers) > 0 {
		c.headers = job.Headers
	}
	if job.ChunkSize > 0 {
		c.chunkSize = job.ChunkSize
	}

	if err := ValidateColumns(p.Schema, c.headers); len(c.headers) > 0 && err != nil {
		return nil, xerrors.Errorf("output columns of %s don't match its schema: %w", p.Name, err)
	}

	return c, nil
}

// run executes the job and returns the number of rows written.
func (p *Pipeline) run(ctx context.Context, job Job, concurrency int) (int, error) {
	l := log.Ctx(ctx)

	c, err := p.configure(job)
	if err != nil {
		return 0, err
	}

	sources, err := p.fetch(ctx, job.resolveSources(time.Now()), concurrency)
	if err != nil {
		return 0, err
	}

	l.Info().Msgf("transforming %d source file(s) into %s", len(sources), job.TargetFile)

	out, err := createOutput(job.TargetFile)
	if err != nil {
		return 0, err
	}

	emit := func(f *Frame) error {
		if err := p.finish(ctx, c, f); err != nil {
			return err
		}
		return out.write(f)
	}

	if len(p.JoinKeys) > 0 {
		err = p.joinSources(ctx, c, sources, emit)
	} else {
		err = p.concatSources(ctx, c, sources, emit)
	}
	if err != nil {
		out.abort()
		return 0, err
	}

	if err := out.close(c.headers); err != nil {
		return 0, err
	}

	l.Info().Int("rows", out.rows).Msgf("saved %s", job.TargetFile)

	if job.TargetBucket == "" {
		l.Info().Msg("no target bucket; skipped upload")
		return out.rows, nil
	}

	if p.Uploader == nil {
		return 0, xerrors.Errorf("pipeline %s has no uploader for %s", p.Name, job.TargetURI())
	}

	l.Info().Msgf("uploading %s to %s", job.TargetFile, job.TargetURI())
	if err := p.Uploader.Upload(ctx, job.TargetFile, job.TargetBucket, job.TargetPath); err != nil {
		return 0, xerrors.Errorf("failed to upload: %w", err)
	}

	return out.rows, nil
}

// fetch downloads sources concurrently and returns those which exist, in order.
func (p *Pipeline) fetch(ctx context.Context, sources []Source, concurrency int) ([]Source, error) {
	l := log.Ctx(ctx)

	if len(sources) == 0 {
		return nil, xerrors.Errorf("pipeline %s has no sources", p.Name)
	}

	if p.Fetcher == nil {
		return nil, xerrors.Errorf("pipeline %s has no fetcher", p.Name)
	}
	f := loggingFetcher{Fetcher: p.Fetcher}

	if concurrency < 1 {
		concurrency = 1
	}

	found := make([]bool, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, s := range sources {
		g.Go(func() error {
			if _, err := f.Fetch(gctx, s); err != nil {
				if s.Optional && errors.Is(err, ErrNotFound) {
					l.Warn().Str("url", s.URL).Msg("optional source not found; skipped")
					return nil
				}
				return xerrors.Errorf("failed to fetch %s: %w", s.URL, err)
			}
			found[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var fetched []Source
	for i, s := range sources {
		if found[i] {
			fetched = append(fetched, s)
		}
	}

	if len(fetched) == 0 {
		return nil, xerrors.Errorf("none of %d source(s) of %s exist: %w", len(sources), p.Name, ErrNotFound)
	}

	return fetched, nil
}

func (p *Pipeline) concatSources(ctx context.Context, c *runConfig, sources []Source, emit func(*Frame) error) error {
	for _, s := range sources {
		err := p.read(ctx, c, s.File, c.chunkSize, func(f *Frame) error {
			if err := p.prepare(c, f); err != nil {
				return err
			}
			return emit(f)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) joinSources(ctx context.Context, c *runConfig, sources []Source, emit func(*Frame) error) error {
	l := log.Ctx(ctx)

	if c.chunkSize > 0 {
		l.Warn().Msg("chunk size is ignored for joined sources")
	}

	var joined *Frame
	for _, s := range sources {
		err := p.read(ctx, c, s.File, 0, func(f *Frame) error {
			if err := p.prepare(c, f); err != nil {
				return err
			}

			if joined == nil {
				joined = f
				return nil
			}

			var err error
			joined, err = leftJoin(joined, f, p.JoinKeys)
			return err
		})
		if err != nil {
			return err
		}
	}

	if joined == nil {
		return nil
	}

	return emit(joined)
}

// prepare renames source columns.
func (p *Pipeline) prepare(c *runConfig, f *Frame) error {
	if len(p.Rename) > 0 {
		if err := f.Rename(p.Rename); err != nil {
			return err
		}
	}
	if len(c.rename) > 0 {
		if err := f.Rename(c.rename); err != nil {
			return err
		}
	}
	return nil
}

// finish runs steps, reorders columns and checks them against the schema.
func (p *Pipeline) finish(ctx context.Context, c *runConfig, f *Frame) error {
	for i, step := range p.Steps {
		if err := step(ctx, f); err != nil {
			return xerrors.Errorf("failed at step %d of %s: %w", i, p.Name, err)
		}
	}

	if len(c.headers) > 0 {
		if err := f.Select(c.headers); err != nil {
			return xerrors.Errorf("failed to reorder columns: %w", err)
		}
	}

	return ValidateColumns(p.Schema, f.Columns())
}

// read parses a local file and calls emit with frames of up to chunkSize rows.
// A file without data rows yields one empty frame so that its header still flows through.
func (p *Pipeline) read(ctx context.Context, c *runConfig, name string, chunkSize int, emit func(*Frame) error) error {
	l := log.Ctx(ctx)

	rc, err := openSource(name, p.Compression, c.member)
	if err != nil {
		return err
	}
	defer rc.Close()

	var r io.Reader = rc
	if c.encoding != nil {
		r = transform.NewReader(r, c.encoding.NewDecoder())
	}

	parser := p.Parser
	if parser == nil {
		parser = CSVParser()
	}

	rr, err := parser(ctx, r)
	if err != nil {
		return xerrors.Errorf("failed to parse %s: %w", name, err)
	}

	for i := 0; i < p.SkipLeadingRows; i++ {
		if _, err := rr.Read(); err == io.EOF {
			break
		} else if err != nil {
			return xerrors.Errorf("failed to read %s: %w", name, err)
		}
	}

	header := c.sourceColumns
	if len(header) == 0 {
		h, err := rr.Read()
		if err == io.EOF {
			l.Warn().Msgf("%s is empty", name)
			return nil
		}
		if err != nil {
			return xerrors.Errorf("failed to read header of %s: %w", name, err)
		}
		header = cleanHeader(h)
	}

	emitted := false
	var chunk [][]string
	flush := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		f, err := NewFrame(header, chunk)
		if err != nil {
			return xerrors.Errorf("failed to load %s: %w", name, err)
		}

		l.Debug().Int("rows", f.Len()).Msgf("loaded chunk of %s", name)

		chunk = nil
		emitted = true
		return emit(f)
	}

	for {
		rec, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xerrors.Errorf("failed to read %s: %w", name, err)
		}

		chunk = append(chunk, rec)
		if chunkSize > 0 && len(chunk) >= chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if len(chunk) > 0 || !emitted {
		return flush()
	}

	return nil
}

// cleanHeader strips a byte order mark and surrounding spaces.
func cleanHeader(h []string) []string {
	cleaned := make([]string, len(h))
	for i, c := range h {
		if i == 0 {
			c = strings.TrimPrefix(c, "\ufeff")
		}
		cleaned[i] = strings.TrimSpace(c)
	}
	return cleaned
}
