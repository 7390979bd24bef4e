package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/domain"
)

// KVRepo implements domain.KeyValueStore on the preferences table
type KVRepo struct {
	log zerolog.Logger
	db  *DB
}

var _ domain.KeyValueStore = (*KVRepo)(nil)

// NewKVRepo creates a new preference repository
func NewKVRepo(log zerolog.Logger, db *DB) *KVRepo {
	return &KVRepo{
		log: log.With().Str("repo", "preferences").Logger(),
		db:  db,
	}
}

// Get returns the value stored under key and whether it exists
func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	r.db.lock.RLock()
	defer r.db.lock.RUnlock()

	queryBuilder := r.db.squirrel.
		Select("pref_value").
		From("preferences").
		Where("pref_key = ?", key)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return "", false, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Get")

	var value string
	err = r.db.handler.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "error executing query")
	}

	return value, true, nil
}

// Set inserts or replaces the value stored under key
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	queryBuilder := r.db.squirrel.
		Replace("preferences").
		Columns("pref_key", "pref_value", "updated_at").
		Values(key, value, time.Now().Format(time.RFC3339))

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Set")

	if _, err := r.db.handler.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "error executing query")
	}

	return nil
}

// Delete removes key; deleting a missing key is not an error
func (r *KVRepo) Delete(ctx context.Context, key string) error {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	queryBuilder := r.db.squirrel.
		Delete("preferences").
		Where("pref_key = ?", key)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Delete")

	if _, err := r.db.handler.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "error executing query")
	}

	return nil
}
