package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/etf-portal/internal/config"
)

// maxDocumentSize bounds catalog and series documents (32MB).
const maxDocumentSize = 32 << 20

// ErrDocumentNotFound is returned when the source has no document at the path.
var ErrDocumentNotFound = errors.New("document not found")

// Source fetches the raw catalog and per-ticker series documents.
type Source interface {
	Catalog(ctx context.Context) (RawCatalog, error)
	Series(ctx context.Context, ticker string) (*RawSeries, error)
}

// NewSource picks the source described by cfg: an HTTP source when a base URL
// is configured, a directory source when a data dir is configured, or nil when
// only the historical CSV is available.
func NewSource(cfg config.DataConfig) Source {
	switch {
	case cfg.BaseURL != "":
		return NewHTTPSource(cfg.BaseURL, cfg.CatalogPath, cfg.SeriesPath, cfg.Timeout())
	case cfg.Dir != "":
		return NewFileSource(cfg.Dir, cfg.CatalogPath, cfg.SeriesPath)
	}
	return nil
}

// seriesDocPath substitutes the ticker into a series path template.
func seriesDocPath(template, ticker string) string {
	return strings.ReplaceAll(template, "{ticker}", url.PathEscape(ticker))
}

// HTTPSource reads documents from a static HTTP host.
type HTTPSource struct {
	baseURL     string
	catalogPath string
	seriesPath  string
	httpClient  *http.Client
}

// NewHTTPSource creates a source rooted at baseURL.
func NewHTTPSource(baseURL, catalogPath, seriesPath string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL:     strings.TrimRight(baseURL, "/"),
		catalogPath: strings.TrimLeft(catalogPath, "/"),
		seriesPath:  strings.TrimLeft(seriesPath, "/"),
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Catalog fetches and decodes the catalog document.
// GET {base}/{catalog_path}
func (s *HTTPSource) Catalog(ctx context.Context) (RawCatalog, error) {
	body, err := s.get(ctx, s.catalogPath)
	if err != nil {
		return nil, err
	}
	var raw RawCatalog
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return raw, nil
}

// Series fetches and decodes one ticker's series document.
// GET {base}/{series_path with {ticker} substituted}
func (s *HTTPSource) Series(ctx context.Context, ticker string) (*RawSeries, error) {
	body, err := s.get(ctx, seriesDocPath(s.seriesPath, ticker))
	if err != nil {
		return nil, err
	}
	var raw RawSeries
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse series for %s: %w", ticker, err)
	}
	return &raw, nil
}

func (s *HTTPSource) get(ctx context.Context, path string) ([]byte, error) {
	target := s.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach data source: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, target)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("data source returned %d for %s", resp.StatusCode, target)
	}
	return body, nil
}

// FileSource reads documents from a local directory laid out like the HTTP host.
type FileSource struct {
	dir         string
	catalogPath string
	seriesPath  string
}

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir, catalogPath, seriesPath string) *FileSource {
	return &FileSource{dir: dir, catalogPath: catalogPath, seriesPath: seriesPath}
}

// Catalog reads and decodes the catalog document.
func (s *FileSource) Catalog(_ context.Context) (RawCatalog, error) {
	data, err := s.read(s.catalogPath)
	if err != nil {
		return nil, err
	}
	var raw RawCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return raw, nil
}

// Series reads and decodes one ticker's series document.
func (s *FileSource) Series(_ context.Context, ticker string) (*RawSeries, error) {
	data, err := s.read(seriesDocPath(s.seriesPath, ticker))
	if err != nil {
		return nil, err
	}
	var raw RawSeries
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse series for %s: %w", ticker, err)
	}
	return &raw, nil
}

func (s *FileSource) read(path string) ([]byte, error) {
	full := filepath.Join(s.dir, filepath.FromSlash(path))

	absDir, _ := filepath.Abs(s.dir)
	absFull, _ := filepath.Abs(full)
	if !strings.HasPrefix(absFull, absDir+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s escapes data dir", ErrDocumentNotFound, path)
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, full)
		}
		return nil, err
	}
	if info.Size() > maxDocumentSize {
		return nil, fmt.Errorf("document %s too large: %d bytes (max %d)", full, info.Size(), maxDocumentSize)
	}
	return os.ReadFile(full)
}
