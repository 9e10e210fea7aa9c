package csvetl

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

const (
	defaultFTPPort    = "21"
	defaultFTPTimeout = 30 * time.Second
)

// FTPFetcher downloads sources like ftp://host/dir/file.txt.
// It logs in anonymously unless the URL carries credentials.
type FTPFetcher struct {
	Timeout time.Duration
}

// Fetch implements Fetcher.
func (f *FTPFetcher) Fetch(ctx context.Context, src Source) (int64, error) {
	l := log.Ctx(ctx)

	u, err := url.Parse(src.URL)
	if err != nil {
		return 0, xerrors.Errorf("failed to parse ftp url %q: %w", src.URL, err)
	}

	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), defaultFTPPort)
	}

	timeout := f.Timeout
	if timeout == 0 {
		timeout = defaultFTPTimeout
	}

	conn, err := ftp.Dial(host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return 0, xerrors.Errorf("failed to connect to %s: %w", host, err)
	}
	defer func() {
		if err := conn.Quit(); err != nil {
			l.Debug().Err(err).Msg("failed to quit ftp session")
		}
	}()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}

	if err := conn.Login(user, pass); err != nil {
		return 0, xerrors.Errorf("failed to login to %s: %w", host, err)
	}

	dir, file := path.Split(u.Path)
	if dir != "" && dir != "/" {
		if err := conn.ChangeDir(dir); err != nil {
			return 0, xerrors.Errorf("failed to change directory to %s: %w", dir, err)
		}
	}

	resp, err := conn.Retr(file)
	if err != nil {
		if isFTPNotFound(err) {
			return 0, xerrors.Errorf("%s: %w", src.URL, ErrNotFound)
		}
		return 0, xerrors.Errorf("failed to retrieve %s: %w", src.URL, err)
	}
	defer resp.Close()

	return writeFile(src.File, resp)
}

// isFTPNotFound reports whether err is the 550 reply to a missing file.
func isFTPNotFound(err error) bool {
	var te *textproto.Error
	if errors.As(err, &te) {
		return te.Code == ftp.StatusFileUnavailable
	}
	return strings.HasPrefix(err.Error(), "550")
}
