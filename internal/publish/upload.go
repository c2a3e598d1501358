package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
	"git.home.luguber.info/inful/jbuild/internal/retry"
)

// Uploader stores one local file at a repository-relative path.
type Uploader interface {
	Upload(ctx context.Context, rel, file string) error
}

// NewUploader picks the transport for target: http(s) uses HTTP PUT, file://
// copies into a local directory. A dry run stages into stagingDir instead.
func NewUploader(target string, creds Credentials, policy retry.Policy, dryRun bool, stagingDir string) (Uploader, error) {
	if dryRun {
		return &DirUploader{Root: stagingDir}, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, errors.PublishError("invalid repository URL").WithContext("url", target).WithCause(err).Build()
	}
	switch u.Scheme {
	case "http", "https":
		return &HTTPUploader{
			Base:   strings.TrimSuffix(target, "/"),
			Creds:  creds,
			Policy: policy,
			Client: &http.Client{Timeout: 5 * time.Minute},
		}, nil
	case "file":
		return &DirUploader{Root: filepath.FromSlash(u.Path)}, nil
	default:
		return nil, errors.PublishError("unsupported repository scheme").WithContext("url", target).Build()
	}
}

// HTTPUploader PUTs files with basic auth, retrying transient failures.
type HTTPUploader struct {
	Base   string
	Creds  Credentials
	Policy retry.Policy
	Client *http.Client
}

func (h *HTTPUploader) Upload(ctx context.Context, rel, file string) error {
	dest := h.Base + "/" + rel
	return h.Policy.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			slog.Info("Retrying upload", logfields.URL(dest), slog.Int("attempt", attempt))
		}
		return h.put(ctx, dest, file)
	})
}

func (h *HTTPUploader) put(ctx context.Context, dest, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.FileSystemError("cannot open artifact").WithContext("path", file).WithCause(err).Build()
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return errors.FileSystemError("cannot stat artifact").WithContext("path", file).WithCause(err).Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, dest, f)
	if err != nil {
		return errors.PublishError("cannot build upload request").WithContext("url", dest).WithCause(err).Build()
	}
	req.ContentLength = info.Size()
	req.SetBasicAuth(h.Creds.Username, h.Creds.Password)

	resp, err := h.Client.Do(req)
	if err != nil {
		return errors.NetworkError("upload failed").WithContext("url", dest).WithCause(err).Build()
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return errors.NetworkError(fmt.Sprintf("repository returned %d", resp.StatusCode)).
			WithContext("url", dest).Build()
	default:
		return errors.PublishError(fmt.Sprintf("repository rejected upload with %d", resp.StatusCode)).
			WithContext("url", dest).Build()
	}
}

// DirUploader copies files under Root, creating directories as needed.
type DirUploader struct {
	Root string
}

func (d *DirUploader) Upload(ctx context.Context, rel, file string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest := filepath.Join(d.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.FileSystemError("cannot create repository directory").WithContext("path", dest).WithCause(err).Build()
	}
	in, err := os.Open(file)
	if err != nil {
		return errors.FileSystemError("cannot open artifact").WithContext("path", file).WithCause(err).Build()
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return errors.FileSystemError("cannot create repository file").WithContext("path", dest).WithCause(err).Build()
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.FileSystemError("cannot copy artifact").WithContext("path", dest).WithCause(err).Build()
	}
	return out.Close()
}
