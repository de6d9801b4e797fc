package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

type EntryStore struct {
	db *pgxpool.Pool
}

func NewEntryStore(db *pgxpool.Pool) *EntryStore {
	return &EntryStore{db: db}
}

func (s *EntryStore) Create(ctx context.Context, e *domain.ObservableEntry) error {
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	symptoms, cosmic, err := EncodeEntryJSON(e)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO entries (id, content, created_at, mood, energy, symptoms, cosmic)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   content = EXCLUDED.content, created_at = EXCLUDED.created_at, mood = EXCLUDED.mood,
		   energy = EXCLUDED.energy, symptoms = EXCLUDED.symptoms, cosmic = EXCLUDED.cosmic`,
		e.ID, e.Content, e.CreatedAt, e.Mood, e.Energy, symptoms, cosmic,
	)
	return err
}

func (s *EntryStore) GetByID(ctx context.Context, id string) (*domain.ObservableEntry, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, content, created_at, mood, energy, symptoms, cosmic FROM entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// LoadRecentEntries returns entries created within the last lookbackDays,
// oldest first.
func (s *EntryStore) LoadRecentEntries(ctx context.Context, lookbackDays int) ([]domain.ObservableEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, content, created_at, mood, energy, symptoms, cosmic
		 FROM entries
		 WHERE created_at >= NOW() - make_interval(days => $1)
		 ORDER BY created_at ASC`,
		lookbackDays,
	)
	if err != nil {
		return nil, err
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

func scanEntry(row pgx.Row) (*domain.ObservableEntry, error) {
	e := &domain.ObservableEntry{}
	var symptoms, cosmic []byte
	if err := row.Scan(&e.ID, &e.Content, &e.CreatedAt, &e.Mood, &e.Energy, &symptoms, &cosmic); err != nil {
		return nil, err
	}
	if err := DecodeEntryJSON(e, symptoms, cosmic); err != nil {
		return nil, err
	}
	return e, nil
}

// EncodeEntryJSON renders the JSON columns of an entry. A nil snapshot stays
// nil so it is stored as NULL.
func EncodeEntryJSON(e *domain.ObservableEntry) (symptoms, cosmic []byte, err error) {
	list := e.Symptoms
	if list == nil {
		list = []string{}
	}
	symptoms, err = json.Marshal(list)
	if err != nil {
		return nil, nil, fmt.Errorf("encode symptoms: %w", err)
	}
	if e.Cosmic != nil {
		cosmic, err = json.Marshal(e.Cosmic)
		if err != nil {
			return nil, nil, fmt.Errorf("encode cosmic snapshot: %w", err)
		}
	}
	return symptoms, cosmic, nil
}

func DecodeEntryJSON(e *domain.ObservableEntry, symptoms, cosmic []byte) error {
	if len(symptoms) > 0 {
		if err := json.Unmarshal(symptoms, &e.Symptoms); err != nil {
			return fmt.Errorf("decode symptoms for entry %s: %w", e.ID, err)
		}
		if len(e.Symptoms) == 0 {
			e.Symptoms = nil
		}
	}
	if len(cosmic) > 0 {
		e.Cosmic = &domain.CosmicSnapshot{}
		if err := json.Unmarshal(cosmic, e.Cosmic); err != nil {
			return fmt.Errorf("decode cosmic snapshot for entry %s: %w", e.ID, err)
		}
	}
	return nil
}
