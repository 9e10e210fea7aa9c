package csvetl

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

// Uploader uploads a local file to Cloud Storage.
type Uploader interface {
	Upload(ctx context.Context, name, bucket, object string) error
}

// GCSFetcher downloads sources like gs://bucket/path/to/object.
type GCSFetcher struct {
	Client *storage.Client
}

// NewGCSFetcher builds a GCSFetcher with the default credentials.
func NewGCSFetcher(ctx context.Context) (*GCSFetcher, error) {
	c, err := storage.NewClient(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to build storage client: %w", err)
	}

	return &GCSFetcher{Client: c}, nil
}

// Fetch implements Fetcher.
func (f *GCSFetcher) Fetch(ctx context.Context, src Source) (int64, error) {
	bucket, object, err := parseGCSURL(src.URL)
	if err != nil {
		return 0, err
	}

	r, err := f.Client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return 0, xerrors.Errorf("%s: %w", src.URL, ErrNotFound)
		}
		return 0, xerrors.Errorf("failed to get reader of %s: %w", src.URL, err)
	}
	defer r.Close()

	return writeFile(src.File, r)
}

// parseGCSURL splits gs://bucket/object.
func parseGCSURL(s string) (bucket, object string, err error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", "", xerrors.Errorf("failed to parse %q: %w", s, err)
	}

	if u.Scheme != "gs" || u.Host == "" {
		return "", "", xerrors.Errorf("%q is not a gs:// url", s)
	}

	object = strings.TrimPrefix(u.Path, "/")
	if object == "" {
		return "", "", xerrors.Errorf("%q has no object name", s)
	}

	return u.Host, object, nil
}

// GCSUploader uploads files with a storage client.
type GCSUploader struct {
	Client *storage.Client

	// ContentType of uploaded objects. Defaults to text/csv.
	ContentType string
}

// NewGCSUploader builds a GCSUploader with the default credentials.
func NewGCSUploader(ctx context.Context) (*GCSUploader, error) {
	c, err := storage.NewClient(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to build storage client: %w", err)
	}

	return &GCSUploader{Client: c}, nil
}

// Upload implements Uploader.
func (u *GCSUploader) Upload(ctx context.Context, name, bucket, object string) error {
	l := log.Ctx(ctx)

	f, err := os.Open(name)
	if err != nil {
		return xerrors.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	w := u.Client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = u.ContentType
	if w.ContentType == "" {
		w.ContentType = "text/csv"
	}

	n, err := io.Copy(w, f)
	if err != nil {
		w.Close()
		return xerrors.Errorf("failed to upload %s to gs://%s/%s: %w", name, bucket, object, err)
	}

	if err := w.Close(); err != nil {
		return xerrors.Errorf("failed to finish upload to gs://%s/%s: %w", bucket, object, err)
	}

	l.Info().Str("object", "gs://"+bucket+"/"+object).Msg("uploaded " + humanize.Bytes(uint64(n)))

	return nil
}
