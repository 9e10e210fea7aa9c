package csvetl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
)

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.csv":
			w.Write([]byte("a,b\n1,2\n"))
		case "/forbidden.csv":
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := &HTTPFetcher{Client: srv.Client()}
	ctx := context.Background()

	dst := filepath.Join(dir, "sub", "data.csv")
	n, err := f.Fetch(ctx, Source{URL: srv.URL + "/data.csv", File: dst})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 8 {
		t.Errorf("expected 8 bytes but %d", n)
	}

	body, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("failed to read downloaded file: %v", err)
	}
	if string(body) != "a,b\n1,2\n" {
		t.Errorf("unexpected body %q", body)
	}

	_, err = f.Fetch(ctx, Source{URL: srv.URL + "/missing.csv", File: filepath.Join(dir, "missing.csv")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound but %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.csv")); !os.IsNotExist(err) {
		t.Error("missing source must not leave a file")
	}

	_, err = f.Fetch(ctx, Source{URL: srv.URL + "/forbidden.csv", File: filepath.Join(dir, "forbidden.csv")})
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected a non not-found error but %v", err)
	}
}

func TestLocalFetcher(t *testing.T) {
	t.Parallel()

	src := writeTestFile(t, "src.csv", []byte("a\n1\n"))
	dst := filepath.Join(t.TempDir(), "dst.csv")
	ctx := context.Background()

	if _, err := (LocalFetcher{}).Fetch(ctx, Source{URL: "file://" + src, File: dst}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "a\n1\n" {
		t.Errorf("unexpected copy %q", b)
	}

	n, err := (LocalFetcher{}).Fetch(ctx, Source{URL: src, File: src})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 bytes but %d", n)
	}

	_, err = (LocalFetcher{}).Fetch(ctx, Source{URL: src + ".missing", File: dst})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound but %v", err)
	}
}

type recordingFetcher struct {
	urls []string
}

func (f *recordingFetcher) Fetch(_ context.Context, src Source) (int64, error) {
	f.urls = append(f.urls, src.URL)
	return 0, nil
}

func TestSchemeFetcher(t *testing.T) {
	t.Parallel()

	web := &recordingFetcher{}
	local := &recordingFetcher{}
	f := SchemeFetcher{"https": web, "file": local}
	ctx := context.Background()

	for _, u := range []string{"https://example.com/a.csv", "/tmp/a.csv", "file:///tmp/b.csv"} {
		if _, err := f.Fetch(ctx, Source{URL: u}); err != nil {
			t.Errorf("unexpected error for %s: %v", u, err)
		}
	}

	if len(web.urls) != 1 || len(local.urls) != 2 {
		t.Errorf("unexpected dispatch: web=%v local=%v", web.urls, local.urls)
	}

	if _, err := f.Fetch(ctx, Source{URL: "sftp://example.com/a.csv"}); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}

func TestParseGCSURL(t *testing.T) {
	t.Parallel()

	bucket, object, err := parseGCSURL("gs://gcp-public-data-landsat/index.csv.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bucket != "gcp-public-data-landsat" || object != "index.csv.gz" {
		t.Errorf("unexpected bucket=%s object=%s", bucket, object)
	}

	for _, u := range []string{"https://example.com/a", "gs://bucket", "gs:///object"} {
		if _, _, err := parseGCSURL(u); err == nil {
			t.Errorf("expected error for %s", u)
		}
	}
}

func TestIsFTPNotFound(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err    error
		expect bool
	}{
		"550":       {&textproto.Error{Code: 550, Msg: "No such file"}, true},
		"wrapped":   {fmt.Errorf("retr: %w", &textproto.Error{Code: 550, Msg: "No such file"}), true},
		"530":       {&textproto.Error{Code: 530, Msg: "Not logged in"}, false},
		"plain 550": {errors.New("550 Failed to open file."), true},
		"other":     {errors.New("connection reset"), false},
	}

	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if actual := isFTPNotFound(c.err); actual != c.expect {
				t.Errorf("expected %v but %v", c.expect, actual)
			}
		})
	}
}

func TestLazyFetcher(t *testing.T) {
	t.Parallel()

	var clientCtx context.Context
	created := 0
	inner := &recordingFetcher{}
	f := &lazyFetcher{create: func(ctx context.Context) (Fetcher, error) {
		clientCtx = ctx
		created++
		return inner, nil
	}}

	for _, u := range []string{"gs://bucket/a.csv", "gs://bucket/b.csv"} {
		ctx, cancel := context.WithCancel(context.Background())
		if _, err := f.Fetch(ctx, Source{URL: u}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cancel()
	}

	if created != 1 {
		t.Errorf("expected one client but %d", created)
	}
	if err := clientCtx.Err(); err != nil {
		t.Errorf("client context should outlive the first call: %v", err)
	}
	if len(inner.urls) != 2 {
		t.Errorf("unexpected fetches: %v", inner.urls)
	}
}

func TestLazyUploader(t *testing.T) {
	t.Parallel()

	failed := errors.New("no credentials")
	u := &lazyUploader{create: func(context.Context) (Uploader, error) {
		return nil, failed
	}}

	if err := u.Upload(context.Background(), "out.csv", "bucket", "out.csv"); !errors.Is(err, failed) {
		t.Errorf("expected %v but %v", failed, err)
	}
}
