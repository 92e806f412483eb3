package gazetteer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const entryTable = "gazetteer_entry"

var entryColumns = []string{
	"pref_code", "pref_name", "pref_kana",
	"city_code", "city_name", "city_kana",
	"area_name", "area_kana", "postal_code",
}

// Store keeps a snapshot of the reference dataset in Postgres so every
// process can load the same data without shipping KEN_ALL.CSV around.
// It is read once at startup; resolution never queries it.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// InitSchema creates the snapshot table when it does not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	if s.db == nil {
		return errors.New("init gazetteer schema: DB is nil")
	}

	query := `
	CREATE TABLE IF NOT EXISTS gazetteer_entry (
		entry_id    BIGSERIAL PRIMARY KEY,
		pref_code   TEXT NOT NULL DEFAULT '',
		pref_name   TEXT NOT NULL,
		pref_kana   TEXT NOT NULL DEFAULT '',
		city_code   TEXT NOT NULL DEFAULT '',
		city_name   TEXT NOT NULL DEFAULT '',
		city_kana   TEXT NOT NULL DEFAULT '',
		area_name   TEXT NOT NULL DEFAULT '',
		area_kana   TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT ''
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("init gazetteer schema: %w", err)
	}
	return nil
}

// Replace swaps the stored snapshot for g inside one transaction, using
// COPY for the bulk insert.
func (s *Store) Replace(ctx context.Context, g *Gazetteer) (int, error) {
	if s.db == nil {
		return 0, errors.New("replace gazetteer: DB is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("replace gazetteer: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "TRUNCATE "+pq.QuoteIdentifier(entryTable)); err != nil {
		return 0, fmt.Errorf("replace gazetteer: truncate: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(entryTable, entryColumns...))
	if err != nil {
		return 0, fmt.Errorf("replace gazetteer: prepare copy: %w", err)
	}

	entries := g.Entries()
	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.PrefectureCode, e.Prefecture, e.PrefectureKana,
			e.CityCode, e.City, e.CityKana,
			e.Area, e.AreaKana, e.PostalCode,
		); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("replace gazetteer: copy row %d: %w", i+1, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("replace gazetteer: flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("replace gazetteer: close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("replace gazetteer: commit tx: %w", err)
	}
	return len(entries), nil
}

// Load reads the snapshot back in insertion order and builds a Gazetteer.
func (s *Store) Load(ctx context.Context) (*Gazetteer, error) {
	if s.db == nil {
		return nil, errors.New("load gazetteer: DB is nil")
	}

	query := `
	SELECT
		pref_code, pref_name, pref_kana,
		city_code, city_name, city_kana,
		area_name, area_kana, postal_code
	FROM gazetteer_entry
	ORDER BY entry_id;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load gazetteer: query: %w", err)
	}
	defer rows.Close()

	b := NewBuilder()
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.PrefectureCode, &e.Prefecture, &e.PrefectureKana,
			&e.CityCode, &e.City, &e.CityKana,
			&e.Area, &e.AreaKana, &e.PostalCode,
		); err != nil {
			return nil, fmt.Errorf("load gazetteer: scan row: %w", err)
		}
		b.Add(e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load gazetteer: row iteration: %w", err)
	}

	return b.Build()
}
