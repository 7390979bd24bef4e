package export

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Image is a preloaded item. Err is set when the image could not be fetched
// or decoded; the item is still rendered with an empty cover.
type Image struct {
	Item
	Img image.Image
	Err error
}

// Preloader fetches cover images ahead of rendering
type Preloader struct {
	log     zerolog.Logger
	client  *http.Client
	timeout time.Duration
	workers int
}

// NewPreloader creates a preloader with a per-image timeout and a worker bound
func NewPreloader(log zerolog.Logger, client *http.Client, timeout time.Duration, workers int) *Preloader {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if workers <= 0 {
		workers = 4
	}
	return &Preloader{
		log:     log.With().Str("module", "export").Logger(),
		client:  client,
		timeout: timeout,
		workers: workers,
	}
}

// Preload fetches every item concurrently. Per-item failures are recorded on
// the returned Image and never abort the batch; the result keeps input order.
func (p *Preloader) Preload(ctx context.Context, items []Item) []Image {
	out := make([]Image, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, item := range items {
		out[i].Item = item
		if item.ImageURL == "" {
			out[i].Err = errors.New("no image url")
			p.log.Debug().Str("name", item.Name).Msg("Skipping item without image")
			continue
		}

		g.Go(func() error {
			img, err := p.fetch(ctx, item.ImageURL)
			if err != nil {
				p.log.Warn().Err(err).Int("index", i+1).Int("total", len(items)).Str("name", item.Name).Msg("Failed to preload image")
				out[i].Err = err
				return nil
			}
			p.log.Debug().Int("index", i+1).Int("total", len(items)).Str("name", item.Name).Msg("Image preloaded")
			out[i].Img = img
			return nil
		})
	}

	_ = g.Wait()
	return out
}

func (p *Preloader) fetch(ctx context.Context, url string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create image request")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch image")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("image request failed with status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return img, nil
}
