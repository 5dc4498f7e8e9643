package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avolkov/linkshort/internal/config"
	"github.com/avolkov/linkshort/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// One full unique index on code, deleted rows included: a soft-deleted code
// can never be reissued.
var schemaPostgres = `
	CREATE TABLE IF NOT EXISTS short_links (
		id serial PRIMARY KEY,
		code text NOT NULL,
		original_url text NOT NULL,
		owner_id text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL,
		expires_at timestamptz,
		password text,
		visit_count bigint NOT NULL DEFAULT 0,
		last_accessed_at timestamptz,
		deleted_at timestamptz
	);
	CREATE UNIQUE INDEX IF NOT EXISTS short_links_code_key ON short_links (code);
	CREATE TABLE IF NOT EXISTS users (
		id text PRIMARY KEY,
		tier text NOT NULL DEFAULT 'hobby'
	);
`

var schemaSQLite = `
	CREATE TABLE IF NOT EXISTS short_links (
		id integer PRIMARY KEY AUTOINCREMENT,
		code text NOT NULL,
		original_url text NOT NULL,
		owner_id text NOT NULL DEFAULT '',
		created_at timestamp NOT NULL,
		expires_at timestamp,
		password text,
		visit_count integer NOT NULL DEFAULT 0,
		last_accessed_at timestamp,
		deleted_at timestamp
	);
	CREATE UNIQUE INDEX IF NOT EXISTS short_links_code_key ON short_links (code);
	CREATE TABLE IF NOT EXISTS users (
		id text PRIMARY KEY,
		tier text NOT NULL DEFAULT 'hobby'
	);
`

type DatabaseStore struct {
	DB *sqlx.DB
}

func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres") || strings.Contains(dsn, "host=") {
		return "pgx"
	}
	return "sqlite"
}

func (store *DatabaseStore) Initialize() error {
	driver := driverFor(config.Current.DatabaseDSN)

	var err error
	store.DB, err = sqlx.Connect(driver, config.Current.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrStoreUnavailable, err)
	}

	schema := schemaPostgres
	if driver == "sqlite" {
		schema = schemaSQLite
	}
	if _, err = store.DB.Exec(schema); err != nil {
		return fmt.Errorf("%w: %s", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (store *DatabaseStore) Ping(ctx context.Context) error {
	return store.DB.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %s", op, models.ErrStoreUnavailable, err)
}

func (store *DatabaseStore) FindByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	var link models.ShortLink
	query := store.DB.Rebind(`SELECT * FROM short_links WHERE code = ?`)
	err := store.DB.GetContext(ctx, &link, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find by code", err)
	}
	return &link, nil
}

func (store *DatabaseStore) FindByURL(ctx context.Context, ownerID, originalURL string) (*models.ShortLink, error) {
	var link models.ShortLink
	query := store.DB.Rebind(`
		SELECT * FROM short_links
		WHERE owner_id = ? AND original_url = ? AND deleted_at IS NULL
			AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY id LIMIT 1
	`)
	err := store.DB.GetContext(ctx, &link, query, ownerID, originalURL, time.Now())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find by url", err)
	}
	return &link, nil
}

func (store *DatabaseStore) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := store.DB.Rebind(`SELECT id, tier FROM users WHERE id = ?`)
	err := store.DB.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	return &user, nil
}

func (store *DatabaseStore) SaveUser(ctx context.Context, user *models.User) error {
	query := store.DB.Rebind(`INSERT INTO users (id, tier) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`)
	if _, err := store.DB.ExecContext(ctx, query, user.ID, user.Tier); err != nil {
		return storeErr("save user", err)
	}
	return nil
}

func (store *DatabaseStore) Insert(ctx context.Context, link *models.ShortLink) error {
	_, err := store.DB.NamedExecContext(ctx, `
		INSERT INTO short_links (code, original_url, owner_id, created_at, expires_at, password, visit_count)
		VALUES (:code, :original_url, :owner_id, :created_at, :expires_at, :password, 0)
	`, link)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ConflictError{Code: link.Code}
		}
		return storeErr("insert", err)
	}
	return nil
}

// IncrementVisit is a single conditional UPDATE; concurrent redirects of the
// same code never lose counts.
func (store *DatabaseStore) IncrementVisit(ctx context.Context, code string, now time.Time) error {
	query := store.DB.Rebind(`
		UPDATE short_links SET visit_count = visit_count + 1, last_accessed_at = ?
		WHERE code = ? AND deleted_at IS NULL
	`)
	result, err := store.DB.ExecContext(ctx, query, now, code)
	if err != nil {
		return storeErr("increment visit", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (store *DatabaseStore) SoftDelete(ctx context.Context, code string, now time.Time) error {
	query := store.DB.Rebind(`
		UPDATE short_links SET deleted_at = ?
		WHERE code = ? AND deleted_at IS NULL
	`)
	result, err := store.DB.ExecContext(ctx, query, now, code)
	if err != nil {
		return storeErr("soft delete", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (store *DatabaseStore) UpdateExpiryPassword(ctx context.Context, code string, expiresAt time.Time, password *string) error {
	query := store.DB.Rebind(`
		UPDATE short_links SET expires_at = ?
		WHERE code = ? AND deleted_at IS NULL
	`)
	args := []interface{}{expiresAt, code}
	if password != nil {
		query = store.DB.Rebind(`
			UPDATE short_links SET expires_at = ?, password = ?
			WHERE code = ? AND deleted_at IS NULL
		`)
		args = []interface{}{expiresAt, *password, code}
	}
	result, err := store.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return storeErr("update", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (store *DatabaseStore) ListByOwner(ctx context.Context, ownerID string) ([]models.ShortLink, error) {
	var links []models.ShortLink
	query := store.DB.Rebind(`
		SELECT * FROM short_links
		WHERE owner_id = ? AND deleted_at IS NULL
			AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY id
	`)
	if err := store.DB.SelectContext(ctx, &links, query, ownerID, time.Now()); err != nil {
		return nil, storeErr("list by owner", err)
	}
	return links, nil
}

func (store *DatabaseStore) Recent(ctx context.Context, limit int) ([]models.ShortLink, error) {
	var links []models.ShortLink
	query := store.DB.Rebind(`
		SELECT * FROM short_links
		WHERE deleted_at IS NULL AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY created_at DESC LIMIT ?
	`)
	if err := store.DB.SelectContext(ctx, &links, query, time.Now(), limit); err != nil {
		return nil, storeErr("recent", err)
	}
	return links, nil
}
