package csvetl

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

var (
	// ErrUnknownPipeline is returned when a job names a pipeline that isn't registered.
	ErrUnknownPipeline = errors.New("unknown pipeline")

	// ErrAmbiguousPipeline is returned when a short name matches more than one pipeline.
	ErrAmbiguousPipeline = errors.New("ambiguous pipeline")
)

// ETL runs jobs of registered pipelines.
type ETL interface {
	AddPipeline(context.Context, *Pipeline) error
	MustAddPipeline(context.Context, *Pipeline)
	Pipeline(name string) (*Pipeline, bool)
	Pipelines() []*Pipeline
	Run(context.Context, Job) error
}

// New builds a new ETL.
func New(opts ...Option) (ETL, error) {
	e := &etl{
		pipelines:   map[string]*Pipeline{},
		logLevel:    zerolog.InfoLevel,
		logWriter:   os.Stderr,
		concurrency: 1,
	}

	for _, o := range opts {
		if err := o.apply(e); err != nil {
			return nil, xerrors.Errorf("failed to apply option: %w", err)
		}
	}

	w := e.logWriter
	if e.prettyLogging {
		w = zerolog.ConsoleWriter{Out: w}
	}
	e.logger = zerolog.New(w).Level(e.logLevel).With().Timestamp().Logger()

	return e, nil
}

type etl struct {
	pipelines map[string]*Pipeline
	mu        sync.RWMutex

	fetcher  Fetcher
	uploader Uploader

	concurrency   int
	logLevel      zerolog.Level
	logWriter     io.Writer
	prettyLogging bool
	logger        zerolog.Logger
}

func (e *etl) AddPipeline(_ context.Context, p *Pipeline) error {
	if err := p.validate(); err != nil {
		return xerrors.Errorf("invalid pipeline: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.pipelines[p.Name]; ok {
		return xerrors.Errorf("pipeline %s is already added", p.Name)
	}

	e.pipelines[p.Name] = p

	return nil
}

func (e *etl) MustAddPipeline(ctx context.Context, p *Pipeline) {
	if err := e.AddPipeline(ctx, p); err != nil {
		panic(err)
	}
}

// Pipeline finds a pipeline by its full name, or by its table name like
// "creative_stats" when exactly one pipeline ends with it.
func (e *etl) Pipeline(name string) (*Pipeline, bool) {
	p, err := e.lookup(name)
	return p, err == nil
}

func (e *etl) lookup(name string) (*Pipeline, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if p, ok := e.pipelines[name]; ok {
		return p, nil
	}

	var found []*Pipeline
	if name != "" && !strings.Contains(name, ".") {
		for n, p := range e.pipelines {
			if strings.HasSuffix(n, "."+name) {
				found = append(found, p)
			}
		}
	}

	switch len(found) {
	case 0:
		return nil, xerrors.Errorf("%q: %w", name, ErrUnknownPipeline)
	case 1:
		return found[0], nil
	default:
		return nil, xerrors.Errorf("%q matches %d pipelines: %w", name, len(found), ErrAmbiguousPipeline)
	}
}

// Pipelines returns the registered pipelines sorted by name.
func (e *etl) Pipelines() []*Pipeline {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ps := make([]*Pipeline, 0, len(e.pipelines))
	for _, p := range e.pipelines {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })

	return ps
}

func (e *etl) Run(ctx context.Context, job Job) error {
	p, err := e.lookup(job.Pipeline)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	l := e.logger.With().Str("run", id).Str("pipeline", p.Name).Logger()
	ctx = l.WithContext(withRunID(withStartedTime(ctx), id))

	l.Info().Msg("job started")

	run := *p
	e.resolveDefaults(&run)

	rows, err := run.run(ctx, job, e.concurrency)

	started, _ := startedTimeFrom(ctx)
	res := &Result{
		Job:      job,
		Pipeline: p,
		Rows:     rows,
		Duration: time.Since(started),
		Error:    err,
	}

	if err != nil {
		l.Error().Err(err).Msg("job failed")
	} else {
		l.Info().Int("rows", rows).Dur("duration", res.Duration).Msg("job finished")
	}

	if p.Notifier != nil {
		if nerr := p.Notifier.Notify(ctx, res); nerr != nil {
			l.Error().Err(nerr).Msg("failed to notify")
		}
	}

	if err != nil {
		return xerrors.Errorf("pipeline %s failed: %w", p.Name, err)
	}

	return nil
}

// resolveDefaults fills the fetcher and uploader of p.
// Cloud Storage clients are created only when a job needs them.
func (e *etl) resolveDefaults(p *Pipeline) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p.Fetcher == nil {
		if e.fetcher == nil {
			e.fetcher = newDefaultFetcher()
		}
		p.Fetcher = e.fetcher
	}

	if p.Uploader == nil {
		if e.uploader == nil {
			e.uploader = &lazyUploader{create: newGCSUploader}
		}
		p.Uploader = e.uploader
	}
}

func newDefaultFetcher() Fetcher {
	h := &HTTPFetcher{}
	return SchemeFetcher{
		"http":  h,
		"https": h,
		"ftp":   &FTPFetcher{Timeout: 5 * time.Minute},
		"gs":    &lazyFetcher{create: newGCSFetcher},
		"file":  LocalFetcher{},
	}
}

// lazyFetcher creates its fetcher on first use. The client outlives the
// fetch group which cancels the context of the first call.
type lazyFetcher struct {
	once   sync.Once
	create func(context.Context) (Fetcher, error)
	f      Fetcher
	err    error
}

func (l *lazyFetcher) Fetch(ctx context.Context, src Source) (int64, error) {
	l.once.Do(func() { l.f, l.err = l.create(context.WithoutCancel(ctx)) })
	if l.err != nil {
		return 0, l.err
	}
	return l.f.Fetch(ctx, src)
}

type lazyUploader struct {
	once   sync.Once
	create func(context.Context) (Uploader, error)
	u      Uploader
	err    error
}

func (l *lazyUploader) Upload(ctx context.Context, name, bucket, object string) error {
	l.once.Do(func() { l.u, l.err = l.create(context.WithoutCancel(ctx)) })
	if l.err != nil {
		return l.err
	}
	return l.u.Upload(ctx, name, bucket, object)
}

func newGCSFetcher(ctx context.Context) (Fetcher, error) {
	return NewGCSFetcher(ctx)
}

func newGCSUploader(ctx context.Context) (Uploader, error) {
	return NewGCSUploader(ctx)
}
