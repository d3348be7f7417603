// Package store persists game snapshots to SQL. State is saved as JSON
// payloads keyed by game id, against SQLite by default or Postgres when
// a DATABASE_URL is configured.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"ironrails/internal/engine"
	"ironrails/internal/entity"
	"ironrails/internal/variant"
)

var ErrGameNotFound = errors.New("game not found")

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type Store struct {
	dialect Dialect
	db      *sql.DB
}

// Open connects to Postgres when databaseURL is set, otherwise to a
// local SQLite file, and ensures the schema exists.
func Open(ctx context.Context, databaseURL, sqlitePath string) (*Store, error) {
	var (
		dialect    Dialect
		driverName string
		dsn        string
	)
	if databaseURL != "" {
		dialect, driverName, dsn = DialectPostgres, "pgx", databaseURL
	} else {
		dialect, driverName, dsn = DialectSQLite, "sqlite", sqlitePath
		if dir := filepath.Dir(sqlitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	s := &Store{dialect: dialect, db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	create := `
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			game_payload TEXT NOT NULL,
			variant_payload TEXT NOT NULL,
			engine_payload TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create games table: %w", err)
	}
	return nil
}

func (s *Store) bind(pos int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", pos)
	}
	return "?"
}

// Record is one persisted game, decoded.
type Record struct {
	ID      string
	Game    *entity.Game
	Variant *variant.Variant
	Snap    engine.Snapshot
}

// Save writes the full snapshot for one game, replacing any previous one.
func (s *Store) Save(ctx context.Context, id string, g *entity.Game, v *variant.Variant, snap engine.Snapshot) error {
	gameJSON, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game: %w", err)
	}
	variantJSON, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode variant: %w", err)
	}
	engineJSON, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode engine snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	del := "DELETE FROM games WHERE id = " + s.bind(1)
	if _, err := tx.ExecContext(ctx, del, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear game %s: %w", id, err)
	}
	ins := fmt.Sprintf(
		"INSERT INTO games (id, game_payload, variant_payload, engine_payload, updated_at) VALUES (%s, %s, %s, %s, %s)",
		s.bind(1), s.bind(2), s.bind(3), s.bind(4), s.bind(5),
	)
	if _, err := tx.ExecContext(ctx, ins, id, string(gameJSON), string(variantJSON), string(engineJSON), time.Now().UTC()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert game %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

// Load reads one game back. The holdings ledger and board are restored
// by engine.Restore from the snapshot, not here.
func (s *Store) Load(ctx context.Context, id string) (Record, error) {
	q := "SELECT game_payload, variant_payload, engine_payload FROM games WHERE id = " + s.bind(1)
	var gameJSON, variantJSON, engineJSON string
	err := s.db.QueryRowContext(ctx, q, id).Scan(&gameJSON, &variantJSON, &engineJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %q", ErrGameNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load game %s: %w", id, err)
	}

	rec := Record{ID: id, Game: entity.NewGame()}
	if err := json.Unmarshal([]byte(gameJSON), rec.Game); err != nil {
		return Record{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	rec.Variant = &variant.Variant{}
	if err := json.Unmarshal([]byte(variantJSON), rec.Variant); err != nil {
		return Record{}, fmt.Errorf("decode variant %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(engineJSON), &rec.Snap); err != nil {
		return Record{}, fmt.Errorf("decode engine snapshot %s: %w", id, err)
	}
	return rec, nil
}

// List returns the ids of every persisted game, most recent first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM games ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes one game. Deleting a missing game is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	q := "DELETE FROM games WHERE id = " + s.bind(1)
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	return nil
}
