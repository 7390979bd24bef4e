package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/domain"
)

// FileRepository implements domain.SeasonRepository over a directory of
// {year}_{season}.json documents
type FileRepository struct {
	log zerolog.Logger
	dir string
}

// NewFileRepository creates a new file-based repository rooted at dir
func NewFileRepository(log zerolog.Logger, dir string) *FileRepository {
	return &FileRepository{
		log: log.With().Str("module", "repository").Logger(),
		dir: dir,
	}
}

var _ domain.SeasonRepository = (*FileRepository)(nil)

// Dir returns the data directory
func (r *FileRepository) Dir() string {
	return r.dir
}

// Path returns the document path for key
func (r *FileRepository) Path(key domain.SeasonKey) string {
	return filepath.Join(r.dir, key.String()+".json")
}

// Exists reports whether a document for key is present
func (r *FileRepository) Exists(key domain.SeasonKey) bool {
	info, err := os.Stat(r.Path(key))
	return err == nil && !info.IsDir()
}

// Get reads the season document for key
func (r *FileRepository) Get(ctx context.Context, key domain.SeasonKey) (*domain.SeasonDocument, error) {
	path := r.Path(key)

	// Check if path exists and is a file (not a directory)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file does not exist: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	doc := &domain.SeasonDocument{}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json from %s: %w", path, err)
	}

	return doc, nil
}

// Store writes the season document for key, creating the directory if needed
func (r *FileRepository) Store(ctx context.Context, key domain.SeasonKey, doc *domain.SeasonDocument) error {
	if doc.AnimeList == nil {
		doc.AnimeList = []domain.AnimeEntry{}
	}

	j, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal season document: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", r.dir, err)
	}

	path := r.Path(key)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(j); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", path, err)
	}

	r.log.Debug().Str("path", path).Int("count", len(doc.AnimeList)).Msg("stored season document")
	return nil
}

// Keys lists the season keys of all documents in the directory
func (r *FileRepository) Keys() ([]domain.SeasonKey, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", r.dir, err)
	}

	var keys []domain.SeasonKey
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		key, err := domain.ParseSeasonKey(e.Name()[:len(e.Name())-len(".json")])
		if err != nil {
			r.log.Debug().Str("file", e.Name()).Msg("skipping non-season file")
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}
