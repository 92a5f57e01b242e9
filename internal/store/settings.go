package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Setting keys.
const (
	SettingToken = "auth.token"
	SettingVoice = "voice.enabled"
)

// SettingsRepo is a small key/value store for client preferences.
type SettingsRepo struct {
	s *Store
}

func (s *Store) Settings() *SettingsRepo {
	return &SettingsRepo{s: s}
}

// Get returns the value of key, or ErrNotFound.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	sel := r.s.builder().Select("value").
		From(entsql.Table(settingsTable.Name)).
		Where(entsql.EQ("key", key))
	query, args := sel.Query()

	var v string
	if err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return v, nil
}

// Set inserts or replaces key.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	ins := r.s.builder().Insert(settingsTable.Name).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues())
	if err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SettingsRepo) Delete(ctx context.Context, key string) error {
	del := r.s.builder().Delete(settingsTable.Name).Where(entsql.EQ("key", key))
	if err := r.s.exec(ctx, del); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

// Bool reads a boolean setting, falling back to def when unset.
func (r *SettingsRepo) Bool(ctx context.Context, key string, def bool) bool {
	v, err := r.Get(ctx, key)
	if err != nil {
		return def
	}
	return v == "true"
}

func (r *SettingsRepo) SetBool(ctx context.Context, key string, on bool) error {
	v := "false"
	if on {
		v = "true"
	}
	return r.Set(ctx, key, v)
}

// Token returns the stored bearer token, or "" for guests.
func (r *SettingsRepo) Token(ctx context.Context) (string, error) {
	tok, err := r.Get(ctx, SettingToken)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return tok, err
}

func (r *SettingsRepo) SetToken(ctx context.Context, token string) error {
	return r.Set(ctx, SettingToken, token)
}

func (r *SettingsRepo) ClearToken(ctx context.Context) error {
	return r.Delete(ctx, SettingToken)
}
