// Package worker runs the classification pipeline on an interval: for each
// client it loads the rolling windows, computes the percentile anchors once,
// classifies every entity, detects account-level findings, and fans the
// results out to Postgres, Redis, and the S3 archive.
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ignite/adpulse/internal/cache"
	"github.com/ignite/adpulse/internal/domain"
	"github.com/ignite/adpulse/internal/engine"
	"github.com/ignite/adpulse/internal/findings"
	"github.com/ignite/adpulse/internal/observability"
)

const (
	// DefaultRunInterval is how often the full classification pass runs.
	DefaultRunInterval = 15 * time.Minute

	// findingsWindowDays is the daily-series depth fed to the findings
	// engine: two comparable 7-day periods.
	findingsWindowDays = 14

	// campaignWindowDays covers the current period only.
	campaignWindowDays = 7

	// configCacheTTL bounds how stale a client's tuned thresholds can be
	// inside the worker.
	configCacheTTL = 5 * time.Minute
)

// MetricsSource loads the read-side inputs for a classification run.
type MetricsSource interface {
	ListClientIDs(ctx context.Context) ([]string, error)
	GetClient(ctx context.Context, clientID string) (*domain.Client, error)
	LatestSnapshots(ctx context.Context, clientID string) ([]domain.DailySnapshot, error)
	AccountDailySnapshots(ctx context.Context, clientID string, days int) ([]domain.DailySnapshot, error)
	CampaignDailySnapshots(ctx context.Context, clientID string, days int) ([]domain.DailySnapshot, error)
	RollingMetrics(ctx context.Context, clientID string) ([]domain.RollingMetrics, error)
	ConceptMetrics(ctx context.Context, clientID string) (map[string]domain.ConceptMetrics, error)
}

// ClassificationSink persists classifications. UpsertBatch reports how many
// records landed even when some fail.
type ClassificationSink interface {
	UpsertBatch(ctx context.Context, batch []domain.Classification) (int, error)
}

// FindingSink persists findings append-only.
type FindingSink interface {
	InsertBatch(ctx context.Context, batch []domain.Finding) error
}

// ConfigSource loads per-client engine thresholds.
type ConfigSource interface {
	Get(ctx context.Context, clientID string) (engine.Config, error)
}

// Archiver writes the run's output to long-term storage. Optional.
type Archiver interface {
	AppendClassifications(ctx context.Context, clientID string, batch []domain.Classification) error
	AppendFindings(ctx context.Context, clientID string, batch []domain.Finding) error
}

// ResultCache keeps the latest classification per entity hot. Optional.
type ResultCache interface {
	PutBatch(ctx context.Context, batch []domain.Classification) error
}

// RunStats summarizes one per-client pass.
type RunStats struct {
	ClientID        string
	Entities        int
	Classified      int
	Written         int
	Findings        int
	Duration        time.Duration
	SkippedNoWindow int
}

// Runner drives the classification pipeline.
type Runner struct {
	source   MetricsSource
	classes  ClassificationSink
	findings FindingSink
	configs  ConfigSource
	archive  Archiver
	results  ResultCache
	metrics  *observability.Metrics

	configCache *cache.TTLCache[engine.Config]
	interval    time.Duration
	now         func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewRunner wires a runner from its stores. archive, results and metrics
// may be nil.
func NewRunner(source MetricsSource, classes ClassificationSink, findingSink FindingSink, configs ConfigSource) *Runner {
	return &Runner{
		source:      source,
		classes:     classes,
		findings:    findingSink,
		configs:     configs,
		configCache: cache.NewTTL[engine.Config](configCacheTTL, 256),
		interval:    DefaultRunInterval,
		now:         time.Now,
	}
}

func (r *Runner) SetArchive(a Archiver)               { r.archive = a }
func (r *Runner) SetResultCache(rc ResultCache)       { r.results = rc }
func (r *Runner) SetMetrics(m *observability.Metrics) { r.metrics = m }
func (r *Runner) SetInterval(d time.Duration)         { r.interval = d }

// InvalidateConfig drops a client's cached thresholds so the next run
// picks up an edit immediately.
func (r *Runner) InvalidateConfig(clientID string) {
	r.configCache.Invalidate(clientID)
}

// Start begins the interval loop.
func (r *Runner) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("runner already running")
	}
	r.running = true
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.mu.Unlock()

	log.Printf("[runner] starting with interval %v", r.interval)
	r.wg.Add(1)
	go r.loop()
	return nil
}

// Stop gracefully stops the loop, waiting for an in-flight pass.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	log.Printf("[runner] stopping...")
	r.cancel()
	r.wg.Wait()
	log.Printf("[runner] stopped")
}

func (r *Runner) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// First pass immediately, then on the tick.
	r.RunAll(r.ctx)
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.RunAll(r.ctx)
		}
	}
}

// RunAll runs the pipeline for every client. A failing client is logged
// and skipped; the rest of the batch proceeds.
func (r *Runner) RunAll(ctx context.Context) {
	clientIDs, err := r.source.ListClientIDs(ctx)
	if err != nil {
		log.Printf("[runner] list clients: %v", err)
		return
	}

	for _, id := range clientIDs {
		if ctx.Err() != nil {
			return
		}
		stats, err := r.RunClient(ctx, id)
		r.metrics.RunCompleted(stats.Duration, err)
		if err != nil {
			log.Printf("[runner] client=%s run failed: %v", id, err)
			continue
		}
		log.Printf("[runner] client=%s entities=%d written=%d findings=%d in %v",
			id, stats.Entities, stats.Written, stats.Findings, stats.Duration.Round(time.Millisecond))
	}
}

// RunClient executes one full classification pass for a client.
func (r *Runner) RunClient(ctx context.Context, clientID string) (RunStats, error) {
	start := r.now()
	stats := RunStats{ClientID: clientID}

	client, err := r.source.GetClient(ctx, clientID)
	if err != nil {
		return r.finish(stats, start), fmt.Errorf("load client: %w", err)
	}
	cfg := r.loadConfig(ctx, clientID)

	rolling, err := r.source.RollingMetrics(ctx, clientID)
	if err != nil {
		return r.finish(stats, start), fmt.Errorf("load rolling metrics: %w", err)
	}
	snapshots, err := r.source.LatestSnapshots(ctx, clientID)
	if err != nil {
		return r.finish(stats, start), fmt.Errorf("load snapshots: %w", err)
	}
	concepts, err := r.source.ConceptMetrics(ctx, clientID)
	if err != nil {
		return r.finish(stats, start), fmt.Errorf("load concept metrics: %w", err)
	}

	// Percentile anchors come from the whole population, once per run,
	// so every entity in the pass is scored against the same baseline.
	percentiles := engine.ComputePercentiles(clientID, rolling)

	rollingByKey := make(map[string]domain.RollingMetrics, len(rolling))
	for _, m := range rolling {
		rollingByKey[string(m.Level)+"/"+m.EntityID] = m
	}

	classifier := engine.NewClassifierAt(r.now)
	batch := make([]domain.Classification, 0, len(snapshots))
	for _, snap := range snapshots {
		stats.Entities++
		roll, ok := rollingByKey[string(snap.Level)+"/"+snap.EntityID]
		if !ok {
			// Entity too new to have a rolling window yet.
			stats.SkippedNoWindow++
			continue
		}

		var concept *domain.ConceptMetrics
		if snap.ConceptID != "" {
			if cm, ok := concepts[snap.ConceptID]; ok {
				concept = &cm
			}
		}

		c := classifier.Classify(engine.Input{
			Snapshot:    snap,
			Rolling:     roll,
			Concept:     concept,
			Client:      client,
			Percentiles: percentiles,
			Config:      cfg,
		})
		batch = append(batch, c)
		r.metrics.Classified(string(c.Decision))
	}
	stats.Classified = len(batch)

	written, err := r.classes.UpsertBatch(ctx, batch)
	stats.Written = written
	if err != nil {
		log.Printf("[runner] client=%s partial upsert: wrote %d of %d: %v",
			clientID, written, len(batch), err)
	}

	detected, err := r.detectFindings(ctx, clientID)
	if err != nil {
		log.Printf("[runner] client=%s findings: %v", clientID, err)
	}
	stats.Findings = detected

	if r.results != nil && len(batch) > 0 {
		if err := r.results.PutBatch(ctx, batch); err != nil {
			log.Printf("[runner] client=%s result cache: %v", clientID, err)
		}
	}
	if r.archive != nil && len(batch) > 0 {
		if err := r.archive.AppendClassifications(ctx, clientID, batch); err != nil {
			log.Printf("[runner] client=%s archive classifications: %v", clientID, err)
		}
	}

	return r.finish(stats, start), nil
}

func (r *Runner) detectFindings(ctx context.Context, clientID string) (int, error) {
	days, err := r.source.AccountDailySnapshots(ctx, clientID, findingsWindowDays)
	if err != nil {
		return 0, fmt.Errorf("account series: %w", err)
	}
	campaignDays, err := r.source.CampaignDailySnapshots(ctx, clientID, campaignWindowDays)
	if err != nil {
		return 0, fmt.Errorf("campaign series: %w", err)
	}

	detector := findings.NewDetectorAt(r.now)
	batch := detector.Detect(clientID, days, findings.AggregateCampaigns(campaignDays))
	if len(batch) == 0 {
		return 0, nil
	}
	for _, f := range batch {
		r.metrics.FindingEmitted(string(f.Type))
	}

	if err := r.findings.InsertBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("insert findings: %w", err)
	}
	if r.archive != nil {
		if err := r.archive.AppendFindings(ctx, clientID, batch); err != nil {
			log.Printf("[runner] client=%s archive findings: %v", clientID, err)
		}
	}
	return len(batch), nil
}

func (r *Runner) loadConfig(ctx context.Context, clientID string) engine.Config {
	if cfg, ok := r.configCache.Get(clientID); ok {
		r.metrics.CacheHit()
		return cfg
	}
	r.metrics.CacheMiss()

	cfg, err := r.configs.Get(ctx, clientID)
	if err != nil {
		log.Printf("[runner] client=%s config load failed, using defaults: %v", clientID, err)
		return engine.DefaultConfig()
	}
	r.configCache.Set(clientID, cfg)
	return cfg
}

func (r *Runner) finish(stats RunStats, start time.Time) RunStats {
	stats.Duration = r.now().Sub(start)
	return stats
}
