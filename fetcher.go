package csvetl

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

// ErrNotFound is returned by fetchers when the source doesn't exist.
var ErrNotFound = errors.New("not found")

// Fetcher downloads a source into its local file and returns the number of bytes written.
type Fetcher interface {
	Fetch(context.Context, Source) (int64, error)
}

// SchemeFetcher dispatches sources to fetchers by URL scheme.
// URLs without scheme are treated as local paths.
type SchemeFetcher map[string]Fetcher

// Fetch implements Fetcher.
func (s SchemeFetcher) Fetch(ctx context.Context, src Source) (int64, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return 0, xerrors.Errorf("failed to parse source url %q: %w", src.URL, err)
	}

	scheme := u.Scheme
	if scheme == "" || len(scheme) == 1 {
		// Windows drive letters parse as schemes.
		scheme = "file"
	}

	f, ok := s[scheme]
	if !ok {
		return 0, xerrors.Errorf("unsupported scheme %q of %s", scheme, src.URL)
	}

	return f.Fetch(ctx, src)
}

// HTTPFetcher downloads sources over HTTP(S).
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, src Source) (int64, error) {
	l := log.Ctx(ctx)

	c := f.Client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, xerrors.Errorf("failed to build http request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return 0, xerrors.Errorf("failed to get %s: %w", src.URL, err)
	}
	defer resp.Body.Close()

	l.Debug().Str("url", src.URL).Int("status", resp.StatusCode).Msg("http response")

	if resp.StatusCode == http.StatusNotFound {
		return 0, xerrors.Errorf("%s: %w", src.URL, ErrNotFound)
	}

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, xerrors.Errorf("couldn't download %s: status %d (%s)", src.URL, resp.StatusCode, body)
	}

	return writeFile(src.File, resp.Body)
}

// LocalFetcher copies local files, addressed by file:// URLs or plain paths.
type LocalFetcher struct{}

// Fetch implements Fetcher.
func (LocalFetcher) Fetch(_ context.Context, src Source) (int64, error) {
	name := src.URL
	if u, err := url.Parse(src.URL); err == nil && u.Scheme == "file" {
		name = u.Path
	}

	if abs(name) == abs(src.File) {
		fi, err := os.Stat(name)
		if err != nil {
			return 0, notFoundOr(err, name)
		}
		return fi.Size(), nil
	}

	in, err := os.Open(name)
	if err != nil {
		return 0, notFoundOr(err, name)
	}
	defer in.Close()

	return writeFile(src.File, in)
}

func abs(p string) string {
	a, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return a
}

func notFoundOr(err error, name string) error {
	if errors.Is(err, os.ErrNotExist) {
		return xerrors.Errorf("%s: %w", name, ErrNotFound)
	}
	return xerrors.Errorf("failed to open %s: %w", name, err)
}

// writeFile writes r into name through a temporary file so that a failed
// download never leaves a truncated file behind.
func writeFile(name string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return 0, xerrors.Errorf("failed to create directory for %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return 0, xerrors.Errorf("failed to create temporary file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return n, xerrors.Errorf("failed to write %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		return n, xerrors.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), name); err != nil {
		return n, xerrors.Errorf("failed to rename into %s: %w", name, err)
	}

	return n, nil
}

// loggingFetcher logs each download with its size.
type loggingFetcher struct {
	Fetcher
}

func (f loggingFetcher) Fetch(ctx context.Context, src Source) (int64, error) {
	l := log.Ctx(ctx)
	l.Info().Msgf("downloading %s into %s", src.URL, src.File)

	n, err := f.Fetcher.Fetch(ctx, src)
	if err != nil {
		return n, err
	}

	l.Info().Str("url", src.URL).Int64("bytes", n).Msg("downloaded " + humanize.Bytes(uint64(n)))
	return n, nil
}
