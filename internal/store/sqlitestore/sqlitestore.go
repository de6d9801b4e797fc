// Package sqlitestore is the single-file local backend used by the CLI. It
// implements the same entry and hypothesis contracts as the Postgres store.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/Harshitk-cp/oracle/internal/store"
	"github.com/Harshitk-cp/oracle/internal/store/migrations"
	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Fixed-width UTC timestamps keep text comparison in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and migrates it.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, migrations.SQLiteDir); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, e *domain.ObservableEntry) error {
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	symptoms, cosmic, err := store.EncodeEntryJSON(e)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO entries (id, content, created_at, mood, energy, symptoms, cosmic)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Content, formatTime(e.CreatedAt), e.Mood, e.Energy, string(symptoms), nullableText(cosmic),
	)
	if err != nil {
		return fmt.Errorf("store: insert entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*domain.ObservableEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content, created_at, mood, energy, symptoms, cosmic FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return e, err
}

// LoadRecentEntries returns entries created within the last lookbackDays,
// oldest first.
func (s *Store) LoadRecentEntries(ctx context.Context, lookbackDays int) ([]domain.ObservableEntry, error) {
	cutoff := time.Now().AddDate(0, 0, -lookbackDays)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, created_at, mood, energy, symptoms, cosmic
		FROM entries WHERE created_at >= ? ORDER BY created_at ASC`,
		formatTime(cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("store: query entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.ObservableEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.ObservableEntry, error) {
	var (
		e         domain.ObservableEntry
		createdAt string
		mood      sql.NullFloat64
		energy    sql.NullFloat64
		symptoms  string
		cosmic    sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Content, &createdAt, &mood, &energy, &symptoms, &cosmic); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("store: parse created_at for entry %s: %w", e.ID, err)
	}
	e.CreatedAt = t
	if mood.Valid {
		e.Mood = &mood.Float64
	}
	if energy.Valid {
		e.Energy = &energy.Float64
	}

	var cosmicDoc []byte
	if cosmic.Valid {
		cosmicDoc = []byte(cosmic.String)
	}
	if err := store.DecodeEntryJSON(&e, []byte(symptoms), cosmicDoc); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) LoadAll(ctx context.Context) ([]domain.Hypothesis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document FROM hypotheses ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: query hypotheses: %w", err)
	}
	defer rows.Close()

	var list []domain.Hypothesis
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		h, err := store.DecodeHypothesis([]byte(doc))
		if err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

// SaveAll replaces the stored collection with hypotheses in one transaction.
func (s *Store) SaveAll(ctx context.Context, hypotheses []domain.Hypothesis) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM hypotheses`); err != nil {
		return fmt.Errorf("store: clear hypotheses: %w", err)
	}

	now := formatTime(time.Now())
	for i, h := range hypotheses {
		doc, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("store: encode hypothesis %s: %w", h.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO hypotheses (id, position, statement, type, category, status, confidence, first_detected_at, last_evidence_at, document, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			h.ID.String(), i, h.Statement, string(h.Type), h.Category, string(h.Status), h.Confidence,
			formatTime(h.FirstDetectedAt), formatTime(h.LastEvidenceAt), string(doc), now,
		)
		if err != nil {
			return fmt.Errorf("store: insert hypothesis %s: %w", h.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableText(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
