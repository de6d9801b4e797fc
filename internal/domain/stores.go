package domain

import "context"

// EntryLoader supplies observable entries from whatever store owns them.
type EntryLoader interface {
	LoadRecentEntries(ctx context.Context, lookbackDays int) ([]ObservableEntry, error)
}

// EntryStore is an EntryLoader that can also ingest entries.
type EntryStore interface {
	EntryLoader
	Create(ctx context.Context, e *ObservableEntry) error
}

// HypothesisStore persists the engine's hypothesis collection. The engine never
// reaches into storage itself; callers load at startup and save after mutations.
type HypothesisStore interface {
	LoadAll(ctx context.Context) ([]Hypothesis, error)
	SaveAll(ctx context.Context, hypotheses []Hypothesis) error
}
