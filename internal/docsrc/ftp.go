package docsrc

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures the FTP source.
type FTPOptions struct {
	Timeout time.Duration
}

// FTPSource mirrors invoice documents from a remote FTP directory into a
// local input directory.
type FTPSource struct {
	opts FTPOptions
}

// NewFTPSource creates a new FTPSource with the given options.
func NewFTPSource(opts FTPOptions) *FTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &FTPSource{opts: opts}
}

// ftpTarget is a parsed FTP URL: dial address, remote directory, and the
// credentials to log in with.
type ftpTarget struct {
	host string
	path string
	user string
	pass string
}

// parseFTPURL extracts host (with port), directory path, and credentials
// from an FTP URL. URLs without userinfo get an anonymous login.
func parseFTPURL(rawURL string) (*ftpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "docsrc: parse ftp url")
	}
	if u.Scheme != "ftp" {
		return nil, eris.Errorf("docsrc: expected ftp scheme, got %q", u.Scheme)
	}

	t := &ftpTarget{
		host: u.Host,
		path: u.Path,
		user: "anonymous",
		pass: "anonymous@",
	}
	if _, _, splitErr := net.SplitHostPort(t.host); splitErr != nil {
		t.host = net.JoinHostPort(t.host, "21")
	}
	if t.path == "" {
		t.path = "/"
	}
	if u.User != nil {
		t.user = u.User.Username()
		t.pass, _ = u.User.Password()
	}

	return t, nil
}

// Mirror downloads every remote file with a recognized extension into
// destDir, skipping files that already exist locally. It returns the names
// of the files it downloaded.
func (s *FTPSource) Mirror(ctx context.Context, ftpURL, destDir string, exts []string) ([]string, error) {
	target, err := parseFTPURL(ftpURL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "docsrc: create dir %s", destDir)
	}

	zap.L().Debug("ftp: connecting",
		zap.String("host", target.host),
		zap.String("dir", target.path),
		zap.String("user", target.user))

	conn, err := ftp.Dial(target.host, ftp.DialWithTimeout(s.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "docsrc: ftp dial")
	}
	defer conn.Quit()

	if err := conn.Login(target.user, target.pass); err != nil {
		return nil, eris.Wrap(err, "docsrc: ftp login")
	}

	entries, err := conn.List(target.path)
	if err != nil {
		return nil, eris.Wrapf(err, "docsrc: ftp list %s", target.path)
	}

	var downloaded []string
	for _, entry := range entries {
		if entry.Type != ftp.EntryTypeFile {
			continue
		}
		if !matchesExtension(entry.Name, exts) {
			continue
		}

		localPath := filepath.Join(destDir, entry.Name)
		if _, statErr := os.Stat(localPath); statErr == nil {
			zap.L().Debug("ftp: already present", zap.String("file", entry.Name))
			continue
		}

		n, err := s.downloadFile(conn, target.path, entry.Name, localPath)
		if err != nil {
			return downloaded, err
		}
		zap.L().Info("ftp: downloaded",
			zap.String("file", entry.Name),
			zap.Int64("bytes", n))
		downloaded = append(downloaded, entry.Name)
	}

	return downloaded, nil
}

func (s *FTPSource) downloadFile(conn *ftp.ServerConn, remoteDir, name, localPath string) (int64, error) {
	resp, err := conn.Retr(joinFTPPath(remoteDir, name))
	if err != nil {
		return 0, eris.Wrapf(err, "docsrc: ftp retrieve %s", name)
	}
	defer resp.Close()

	file, err := os.Create(localPath)
	if err != nil {
		return 0, eris.Wrapf(err, "docsrc: create file %s", localPath)
	}
	defer file.Close()

	n, err := io.Copy(file, resp)
	if err != nil {
		return n, eris.Wrapf(err, "docsrc: write file %s", localPath)
	}

	return n, nil
}

// joinFTPPath joins with forward slashes regardless of host OS.
func joinFTPPath(dir, name string) string {
	if dir == "" || dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
