package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/varoOP/seasonshare/internal/domain"
)

// Source fetches one season document
type Source interface {
	Fetch(ctx context.Context, key domain.SeasonKey) (*domain.SeasonDocument, error)
}

// HTTPSource fetches {base}/{year}_{season}.json
type HTTPSource struct {
	baseURL   string
	client    *http.Client
	cacheBust bool
	now       func() time.Time
}

type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithCacheBust appends t=<unix millis> to every request so intermediate caches are bypassed
func WithCacheBust(enabled bool) HTTPOption {
	return func(s *HTTPSource) { s.cacheBust = enabled }
}

func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DocumentURL returns the URL requested for key
func (s *HTTPSource) DocumentURL(key domain.SeasonKey) string {
	u := fmt.Sprintf("%s/%s.json", s.baseURL, url.PathEscape(key.String()))
	if s.cacheBust {
		u += "?t=" + strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	return u
}

func (s *HTTPSource) Fetch(ctx context.Context, key domain.SeasonKey) (*domain.SeasonDocument, error) {
	u := s.DocumentURL(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrDataUnavailable, "failed to fetch %s: %v", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Wrapf(domain.ErrDataUnavailable, "unexpected status code %d from %s", resp.StatusCode, u)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrDataUnavailable, "failed to read response body: %v", err)
	}

	return decodeDocument(body)
}

// SeasonReader is the read half of domain.SeasonRepository
type SeasonReader interface {
	Get(ctx context.Context, key domain.SeasonKey) (*domain.SeasonDocument, error)
}

// FileSource reads documents from the generator's output directory
type FileSource struct {
	repo SeasonReader
}

func NewFileSource(repo SeasonReader) *FileSource {
	return &FileSource{repo: repo}
}

func (s *FileSource) Fetch(ctx context.Context, key domain.SeasonKey) (*domain.SeasonDocument, error) {
	doc, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrDataUnavailable, "%v", err)
	}
	if doc.AnimeList == nil {
		doc.AnimeList = []domain.AnimeEntry{}
	}
	return doc, nil
}

func decodeDocument(body []byte) (*domain.SeasonDocument, error) {
	// the document must be a JSON object; anything else is malformed
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrapf(domain.ErrDataUnavailable, "malformed season document: %v", err)
	}
	if raw == nil {
		return nil, errors.Wrap(domain.ErrDataUnavailable, "malformed season document: not an object")
	}

	doc := &domain.SeasonDocument{}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, errors.Wrapf(domain.ErrDataUnavailable, "malformed season document: %v", err)
	}
	if doc.AnimeList == nil {
		doc.AnimeList = []domain.AnimeEntry{}
	}
	return doc, nil
}
