package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/form990-cli/internal/fetcher"
)

// DefaultBaseURL is the public e-file bucket, keyed by object ID.
const DefaultBaseURL = "https://s3.amazonaws.com/irs-form-990"

// ErrFilingNotFound is returned when a source has no document for the filing.
var ErrFilingNotFound = eris.New("schedule: filing not found")

var filingIDRe = regexp.MustCompile(`^[0-9A-Za-z_-]+$`)

// ValidateFilingID rejects identifiers that cannot name an e-file document.
func ValidateFilingID(id string) error {
	if !filingIDRe.MatchString(id) {
		return eris.Errorf("schedule: invalid filing id %q", id)
	}
	return nil
}

// Source opens the raw return document of a filing.
type Source interface {
	Open(ctx context.Context, filingID string) (io.ReadCloser, error)
}

func documentName(filingID string) string {
	return fmt.Sprintf("%s_public.xml", filingID)
}

// HTTPSource downloads return documents from an e-file bucket.
// With CacheDir set, documents are kept on disk and reused.
type HTTPSource struct {
	Fetcher  fetcher.Fetcher
	BaseURL  string
	CacheDir string
}

// URL returns the document URL for a filing.
func (s *HTTPSource) URL(filingID string) string {
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + documentName(filingID)
}

// Open implements Source.
func (s *HTTPSource) Open(ctx context.Context, filingID string) (io.ReadCloser, error) {
	if err := ValidateFilingID(filingID); err != nil {
		return nil, err
	}
	url := s.URL(filingID)

	if s.CacheDir == "" {
		body, err := s.Fetcher.Download(ctx, url)
		if err != nil {
			return nil, s.wrap(err, filingID)
		}
		return body, nil
	}

	path := filepath.Join(s.CacheDir, documentName(filingID))
	if f, err := os.Open(path); err == nil {
		zap.L().Debug("using cached filing", zap.String("object_id", filingID), zap.String("path", path))
		return f, nil
	}

	if err := os.MkdirAll(s.CacheDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "schedule: create cache dir %s", s.CacheDir)
	}
	tmp := path + ".part"
	if _, err := s.Fetcher.DownloadToFile(ctx, url, tmp); err != nil {
		_ = os.Remove(tmp)
		return nil, s.wrap(err, filingID)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, eris.Wrapf(err, "schedule: store cached filing %s", filingID)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: open cached filing %s", filingID)
	}
	return f, nil
}

func (s *HTTPSource) wrap(err error, filingID string) error {
	if errors.Is(err, fetcher.ErrNotFound) {
		return eris.Wrapf(ErrFilingNotFound, "schedule: %s", filingID)
	}
	return eris.Wrapf(err, "schedule: download filing %s", filingID)
}

// DirSource reads return documents from a local directory.
type DirSource struct {
	Dir string
}

// Open implements Source.
func (s *DirSource) Open(_ context.Context, filingID string) (io.ReadCloser, error) {
	if err := ValidateFilingID(filingID); err != nil {
		return nil, err
	}
	path := filepath.Join(s.Dir, documentName(filingID))
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrapf(ErrFilingNotFound, "schedule: %s", path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: open %s", path)
	}
	return f, nil
}
