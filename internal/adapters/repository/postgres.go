package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/internal/domain/types"
	"github.com/nanahoshi/pointbot/pkg/logger"
	"github.com/nanahoshi/pointbot/pkg/metrics"
)

const (
	schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id          TEXT PRIMARY KEY,
    username    TEXT   NOT NULL DEFAULT '',
    displayname TEXT   NOT NULL DEFAULT '',
    icon        TEXT   NOT NULL DEFAULT '',
    point       BIGINT NOT NULL DEFAULT 0,
    rank        BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS metadata (
    key   TEXT    PRIMARY KEY,
    value BOOLEAN NOT NULL DEFAULT FALSE
);`

	upsertUserSQL = `
INSERT INTO users (id, username, displayname, icon, point, rank)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id)
DO UPDATE SET
    username = EXCLUDED.username,
    displayname = EXCLUDED.displayname,
    icon = EXCLUDED.icon,
    point = EXCLUDED.point,
    rank = EXCLUDED.rank;`

	selectUserSQL  = `SELECT id, username, displayname, icon, point, rank FROM users WHERE id = $1`
	selectUsersSQL = `SELECT id, username, displayname, icon, point, rank FROM users`
	topByPointSQL  = `SELECT id, username, displayname, icon, point, rank FROM users ORDER BY point DESC LIMIT $1`
	topByRankSQL   = `SELECT id, username, displayname, icon, point, rank FROM users ORDER BY rank DESC LIMIT $1`

	pointStandingSQL = `
SELECT ranking FROM (
    SELECT id, RANK() OVER (ORDER BY point DESC) AS ranking FROM users
) AS ranked_table WHERE id = $1`

	rankStandingSQL = `
SELECT ranking FROM (
    SELECT id, RANK() OVER (ORDER BY rank DESC) AS ranking FROM users
) AS ranked_table WHERE id = $1`

	eventFlagSQL    = `SELECT value FROM metadata WHERE key = $1`
	setEventFlagSQL = `
INSERT INTO metadata (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value;`

	countUsersSQL = `SELECT COUNT(*) FROM users`

	eventFlagKey = "isevent"
)

// PostgresStore implements Store on a pgx connection pool. SQL statements
// mirror the single-statement upsert and window-ranked reads the bot relies
// on; there are no multi-statement transactions.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewPostgresStore connects to the database and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("store")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s.pool = pool
	s.logger.Info(ctx, "connected to postgres")
	return s, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// EnsureSchema creates the users and metadata tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// GetUser returns the record for id.
func (s *PostgresStore) GetUser(ctx context.Context, id string) (model.User, error) {
	defer observeQuery(time.Now())

	var u model.User
	err := s.pool.QueryRow(ctx, selectUserSQL, id).
		Scan(&u.ID, &u.Username, &u.DisplayName, &u.Icon, &u.Point, &u.Rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError()
		return model.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// ListUsers returns every user record.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]model.User, error) {
	defer observeQuery(time.Now())

	rows, err := s.pool.Query(ctx, selectUsersSQL)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// UpsertUser inserts or fully overwrites the row for u.ID.
func (s *PostgresStore) UpsertUser(ctx context.Context, u model.User) error {
	defer observeWrite(time.Now())

	_, err := s.pool.Exec(ctx, upsertUserSQL,
		u.ID, u.Username, u.DisplayName, u.Icon, u.Point, u.Rank)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("upsert user %s: %w", u.ID, err)
	}
	return nil
}

// TopUsers returns up to limit users ordered descending by basis.
func (s *PostgresStore) TopUsers(ctx context.Context, basis types.RankingBasis, limit int) ([]model.User, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	var query string
	switch basis {
	case types.BasisPoint:
		query = topByPointSQL
	case types.BasisRank:
		query = topByRankSQL
	default:
		return nil, ErrInvalidBasis
	}

	defer observeQuery(time.Now())

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("top users by %s: %w", basis, err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// Standing returns the user's RANK position over points and over ranks.
func (s *PostgresStore) Standing(ctx context.Context, id string) (types.Standing, error) {
	defer observeQuery(time.Now())

	var st types.Standing
	err := s.pool.QueryRow(ctx, pointStandingSQL, id).Scan(&st.PointPosition)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Standing{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError()
		return types.Standing{}, fmt.Errorf("point standing %s: %w", id, err)
	}

	err = s.pool.QueryRow(ctx, rankStandingSQL, id).Scan(&st.RankPosition)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Standing{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError()
		return types.Standing{}, fmt.Errorf("rank standing %s: %w", id, err)
	}
	return st, nil
}

// EventActive reads the isevent flag. A missing row reads as inactive.
func (s *PostgresStore) EventActive(ctx context.Context) (bool, error) {
	defer observeQuery(time.Now())

	var active bool
	err := s.pool.QueryRow(ctx, eventFlagSQL, eventFlagKey).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		metrics.RecordStoreError()
		return false, fmt.Errorf("event flag: %w", err)
	}
	return active, nil
}

// SetEventActive upserts the isevent flag.
func (s *PostgresStore) SetEventActive(ctx context.Context, active bool) error {
	defer observeWrite(time.Now())

	if _, err := s.pool.Exec(ctx, setEventFlagSQL, eventFlagKey, active); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("set event flag: %w", err)
	}
	return nil
}

// Count returns the number of user rows.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	defer observeQuery(time.Now())

	var n int
	if err := s.pool.QueryRow(ctx, countUsersSQL).Scan(&n); err != nil {
		metrics.RecordStoreError()
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func scanUsers(rows pgx.Rows) ([]model.User, error) {
	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Icon, &u.Point, &u.Rank); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func observeQuery(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
}

func observeWrite(start time.Time) {
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
}
