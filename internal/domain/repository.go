package domain

import (
	"context"
)

// KeyValueStore is the synchronous string persistence the preference store sits on
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SeasonRepository reads and writes season documents on disk
type SeasonRepository interface {
	Get(ctx context.Context, key SeasonKey) (*SeasonDocument, error)
	Store(ctx context.Context, key SeasonKey, doc *SeasonDocument) error
	Exists(key SeasonKey) bool
}
