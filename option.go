package csvetl

import (
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Option configures ETL.
type Option interface {
	apply(*etl) error
}

type optionFunc func(*etl) error

func (f optionFunc) apply(e *etl) error {
	return f(e)
}

// WithPrettyLogging configures ETL to print human friendly logs.
func WithPrettyLogging() Option {
	return optionFunc(func(e *etl) error {
		e.prettyLogging = true
		return nil
	})
}

// WithLogLevel sets the log level like "debug" or "info".
func WithLogLevel(level string) Option {
	return optionFunc(func(e *etl) error {
		lv, err := zerolog.ParseLevel(level)
		if err != nil {
			return xerrors.Errorf("invalid log level %q: %w", level, err)
		}
		e.logLevel = lv
		return nil
	})
}

// WithLogWriter sets the destination of logs. It defaults to stderr.
func WithLogWriter(w io.Writer) Option {
	return optionFunc(func(e *etl) error {
		e.logWriter = w
		return nil
	})
}

// WithConcurrency sets how many sources are downloaded at once.
func WithConcurrency(n int) Option {
	return optionFunc(func(e *etl) error {
		if n < 1 {
			return xerrors.Errorf("concurrency must be positive: %d", n)
		}
		e.concurrency = n
		return nil
	})
}

// WithFetcher sets the fetcher for pipelines without their own.
func WithFetcher(f Fetcher) Option {
	return optionFunc(func(e *etl) error {
		e.fetcher = f
		return nil
	})
}

// WithUploader sets the uploader for pipelines without their own.
func WithUploader(u Uploader) Option {
	return optionFunc(func(e *etl) error {
		e.uploader = u
		return nil
	})
}
