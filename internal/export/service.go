package export

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/domain"
)

var ErrEmptyList = errors.New("share list is empty")

// Outcome describes a finished export. CaptionPath names the text file
// listing the titles in cell order. Text is only set for a degraded export,
// where the image could not be produced.
type Outcome struct {
	Path        string
	CaptionPath string
	Count       int
	Failed      int
	Text        string
	Degraded    bool
}

type Service interface {
	Export(ctx context.Context, list []domain.ShareEntry) (Outcome, error)
}

type service struct {
	log       zerolog.Logger
	preloader *Preloader
	renderer  *Renderer
	dir       string
	hdSize    int
	now       func() time.Time
}

// NewService creates the export pipeline writing sheets into dir
func NewService(log zerolog.Logger, cfg *domain.Config, client *http.Client) Service {
	return &service{
		log:       log.With().Str("module", "export").Logger(),
		preloader: NewPreloader(log, client, cfg.PreloadTimeout, cfg.PreloadWorkers),
		renderer:  NewRenderer(cfg.HDImageSize),
		dir:       cfg.ExportDir,
		hdSize:    cfg.HDImageSize,
		now:       time.Now,
	}
}

// Export preloads every cover, renders the sheet and writes it to disk.
// A render or write failure returns ErrExportFailure together with an
// Outcome carrying the text fallback.
func (s *service) Export(ctx context.Context, list []domain.ShareEntry) (Outcome, error) {
	if len(list) == 0 {
		return Outcome{}, ErrEmptyList
	}

	items := Items(list)
	for i := range items {
		items[i].ImageURL = HDImageURL(items[i].ImageURL, s.hdSize)
	}

	s.log.Info().Int("count", len(items)).Msg("Preloading images")
	images := s.preloader.Preload(ctx, items)

	failed := 0
	for _, img := range images {
		if img.Err != nil {
			failed++
		}
	}

	path, captionPath, err := s.write(images, Caption(list))
	if err != nil {
		s.log.Error().Err(err).Msg("Export failed, falling back to text")
		return Outcome{
			Count:    len(list),
			Failed:   failed,
			Text:     FormatText(list),
			Degraded: true,
		}, errors.Wrap(domain.ErrExportFailure, err.Error())
	}

	s.log.Info().Str("path", path).Int("count", len(list)).Int("failed", failed).Msg("Export written")
	return Outcome{Path: path, CaptionPath: captionPath, Count: len(list), Failed: failed}, nil
}

// write stores the sheet and its caption under a shared base name. Covers
// carry no drawn titles, the caption file maps each cell to its entry.
func (s *service) write(images []Image, caption string) (string, string, error) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, images); err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", "", errors.Wrap(err, "failed to create export directory")
	}

	base := filepath.Join(s.dir, fmt.Sprintf("anime-share-list-%d", s.now().UnixMilli()))
	path := base + ".png"
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", "", errors.Wrap(err, "failed to write export")
	}

	captionPath := base + ".txt"
	if err := os.WriteFile(captionPath, []byte(caption), 0644); err != nil {
		return "", "", errors.Wrap(err, "failed to write export caption")
	}
	return path, captionPath, nil
}
