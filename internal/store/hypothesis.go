package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HypothesisStore keeps each hypothesis as a JSONB document alongside the
// columns needed to filter on it.
type HypothesisStore struct {
	db *pgxpool.Pool
}

func NewHypothesisStore(db *pgxpool.Pool) *HypothesisStore {
	return &HypothesisStore{db: db}
}

func (s *HypothesisStore) LoadAll(ctx context.Context) ([]domain.Hypothesis, error) {
	rows, err := s.db.Query(ctx,
		`SELECT document FROM hypotheses ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Hypothesis
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		h, err := DecodeHypothesis(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

// SaveAll makes the table mirror hypotheses in order: every element is
// upserted and rows for ids not in the list are removed.
func (s *HypothesisStore) SaveAll(ctx context.Context, hypotheses []domain.Hypothesis) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]uuid.UUID, 0, len(hypotheses))
	batch := &pgx.Batch{}
	for i, h := range hypotheses {
		doc, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("encode hypothesis %s: %w", h.ID, err)
		}
		ids = append(ids, h.ID)
		batch.Queue(
			`INSERT INTO hypotheses (id, position, statement, type, category, status, confidence, first_detected_at, last_evidence_at, document, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			 ON CONFLICT (id) DO UPDATE SET
			   position = EXCLUDED.position, statement = EXCLUDED.statement, type = EXCLUDED.type, category = EXCLUDED.category,
			   status = EXCLUDED.status, confidence = EXCLUDED.confidence,
			   first_detected_at = EXCLUDED.first_detected_at, last_evidence_at = EXCLUDED.last_evidence_at,
			   document = EXCLUDED.document, updated_at = NOW()`,
			h.ID, i, h.Statement, h.Type, h.Category, h.Status, h.Confidence, h.FirstDetectedAt, h.LastEvidenceAt, doc,
		)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM hypotheses WHERE NOT (id = ANY($1))`, ids); err != nil {
		return fmt.Errorf("prune hypotheses: %w", err)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert hypotheses: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// DecodeHypothesis parses a stored hypothesis document.
func DecodeHypothesis(doc []byte) (domain.Hypothesis, error) {
	var h domain.Hypothesis
	if err := json.Unmarshal(doc, &h); err != nil {
		return domain.Hypothesis{}, fmt.Errorf("decode hypothesis: %w", err)
	}
	return h, nil
}
