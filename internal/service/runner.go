package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultObserveInterval = 6 * time.Hour
	defaultLookbackDays    = 90
	defaultCycleTimeout    = 5 * time.Minute
)

var ErrNoEntryLoader = errors.New("no entry loader configured")

// CycleResult summarizes one observe-and-update cycle.
type CycleResult struct {
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Observation *ObservationResult `json:"observation"`
	Hypotheses  *IngestResult      `json:"hypotheses"`
}

// ObservationRunner periodically loads recent entries, mines them for
// patterns and feeds the patterns to the hypothesis service.
type ObservationRunner struct {
	loader     domain.EntryLoader
	observer   *Observer
	hypotheses *HypothesisService
	logger     *zap.Logger

	interval     time.Duration
	lookbackDays int
	group        singleflight.Group
	stopCh       chan struct{}
	wg           sync.WaitGroup

	mu         sync.Mutex
	lastResult *CycleResult
	cycles     int
	failures   int
}

func NewObservationRunner(loader domain.EntryLoader, observer *Observer, hypotheses *HypothesisService, logger *zap.Logger) *ObservationRunner {
	return &ObservationRunner{
		loader:       loader,
		observer:     observer,
		hypotheses:   hypotheses,
		logger:       logger,
		interval:     defaultObserveInterval,
		lookbackDays: defaultLookbackDays,
		stopCh:       make(chan struct{}),
	}
}

func (r *ObservationRunner) SetInterval(d time.Duration) {
	if d > 0 {
		r.interval = d
	}
}

func (r *ObservationRunner) SetLookbackDays(days int) {
	if days > 0 {
		r.lookbackDays = days
	}
}

func (r *ObservationRunner) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.logger.Info("observation worker started",
			zap.Duration("interval", r.interval),
			zap.Int("lookback_days", r.lookbackDays))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), defaultCycleTimeout)
				if _, err := r.RunCycle(ctx); err != nil {
					r.logger.Error("observation cycle failed", zap.Error(err))
				}
				cancel()
			case <-r.stopCh:
				r.logger.Info("observation worker stopped")
				return
			}
		}
	}()
}

func (r *ObservationRunner) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

// RunCycle runs one cycle. Concurrent callers share a single in-flight run
// and all receive its result. The shared run is detached from the caller's
// cancellation so one caller going away does not fail the others; a caller
// whose context ends stops waiting with ctx.Err().
func (r *ObservationRunner) RunCycle(ctx context.Context) (*CycleResult, error) {
	ch := r.group.DoChan("cycle", func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultCycleTimeout)
		defer cancel()
		return r.runCycle(runCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			r.logger.Debug("joined in-flight observation cycle")
		}
		result, _ := res.Val.(*CycleResult)
		return result, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Observe runs the detector over caller-supplied entries and ingests the
// resulting patterns, bypassing the loader.
func (r *ObservationRunner) Observe(ctx context.Context, entries []domain.ObservableEntry) (*CycleResult, error) {
	return r.process(ctx, time.Now(), entries)
}

func (r *ObservationRunner) runCycle(ctx context.Context) (*CycleResult, error) {
	started := time.Now()
	if r.loader == nil {
		return nil, ErrNoEntryLoader
	}

	entries, err := r.loader.LoadRecentEntries(ctx, r.lookbackDays)
	if err != nil {
		r.recordFailure()
		return nil, fmt.Errorf("load recent entries: %w", err)
	}
	return r.process(ctx, started, entries)
}

func (r *ObservationRunner) process(ctx context.Context, started time.Time, entries []domain.ObservableEntry) (*CycleResult, error) {
	observation := r.observer.Observe(entries)

	ingest, err := r.hypotheses.Ingest(ctx, observation.Patterns)
	result := &CycleResult{
		StartedAt:   started,
		FinishedAt:  time.Now(),
		Observation: observation,
		Hypotheses:  ingest,
	}
	if err != nil {
		r.recordFailure()
		return result, err
	}

	r.mu.Lock()
	r.cycles++
	r.lastResult = result
	r.mu.Unlock()

	r.logger.Info("observation cycle complete",
		zap.Int("entries", observation.EntriesAnalyzed),
		zap.Int("patterns", len(observation.Patterns)),
		zap.Int("created", len(ingest.Created)),
		zap.Int("decayed", len(ingest.Decayed)),
		zap.Int("status_changes", len(ingest.StatusChanges)),
		zap.Duration("duration", result.FinishedAt.Sub(started)))

	return result, nil
}

func (r *ObservationRunner) recordFailure() {
	r.mu.Lock()
	r.failures++
	r.mu.Unlock()
}

// RunnerStats are the counters exposed on the metrics endpoint.
type RunnerStats struct {
	Cycles       int       `json:"cycles"`
	Failures     int       `json:"failures"`
	LastRunAt    time.Time `json:"last_run_at,omitempty"`
	LastPatterns int       `json:"last_patterns"`
}

func (r *ObservationRunner) Stats() RunnerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := RunnerStats{Cycles: r.cycles, Failures: r.failures}
	if r.lastResult != nil {
		stats.LastRunAt = r.lastResult.FinishedAt
		stats.LastPatterns = len(r.lastResult.Observation.Patterns)
	}
	return stats
}
