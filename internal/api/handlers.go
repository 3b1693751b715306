// Package api exposes the diagnostic engine over HTTP: classification and
// finding reads, creative bucketing, engine threshold tuning, and manual
// run triggers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/adpulse/internal/creative"
	"github.com/ignite/adpulse/internal/domain"
	"github.com/ignite/adpulse/internal/engine"
	"github.com/ignite/adpulse/internal/worker"
)

const defaultFindingsLimit = 50

// ClassificationStore reads persisted classifications.
type ClassificationStore interface {
	ListByClient(ctx context.Context, clientID string, level domain.EntityLevel) ([]domain.Classification, error)
}

// FindingStore reads persisted findings.
type FindingStore interface {
	ListByClient(ctx context.Context, clientID string, limit int) ([]domain.Finding, error)
}

// ConfigStore reads and writes per-client engine thresholds.
type ConfigStore interface {
	Get(ctx context.Context, clientID string) (engine.Config, error)
	Put(ctx context.Context, clientID string, cfg engine.Config) error
}

// MetricsSource loads the inputs the creative endpoints classify on demand.
type MetricsSource interface {
	GetClient(ctx context.Context, clientID string) (*domain.Client, error)
	LatestSnapshots(ctx context.Context, clientID string) ([]domain.DailySnapshot, error)
	RollingMetrics(ctx context.Context, clientID string) ([]domain.RollingMetrics, error)
}

// RunTrigger lets the API kick off a classification pass and drop cached
// thresholds after an edit.
type RunTrigger interface {
	RunClient(ctx context.Context, clientID string) (worker.RunStats, error)
	InvalidateConfig(clientID string)
}

// Handlers holds the API's dependencies.
type Handlers struct {
	classifications ClassificationStore
	findings        FindingStore
	configs         ConfigStore
	source          MetricsSource
	runner          RunTrigger
}

// NewHandlers wires the handler set.
func NewHandlers(classifications ClassificationStore, findings FindingStore, configs ConfigStore, source MetricsSource, runner RunTrigger) *Handlers {
	return &Handlers{
		classifications: classifications,
		findings:        findings,
		configs:         configs,
		source:          source,
		runner:          runner,
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TriggerRun runs a full classification pass for one client synchronously.
func (h *Handlers) TriggerRun(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	stats, err := h.runner.RunClient(r.Context(), clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"client_id":  stats.ClientID,
		"entities":   stats.Entities,
		"classified": stats.Classified,
		"written":    stats.Written,
		"findings":   stats.Findings,
		"skipped":    stats.SkippedNoWindow,
		"duration":   stats.Duration.String(),
	})
}

// GetClassifications lists a client's latest classifications at one level,
// highest impact first.
func (h *Handlers) GetClassifications(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	level, ok := parseLevel(r.URL.Query().Get("level"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid level, expected one of account, campaign, adset, ad")
		return
	}

	out, err := h.classifications.ListByClient(r.Context(), clientID, level)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"client_id":       clientID,
		"level":           level,
		"classifications": out,
	})
}

// GetFindings lists a client's findings, newest first.
func (h *Handlers) GetFindings(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	limit := defaultFindingsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	out, err := h.findings.ListByClient(r.Context(), clientID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"client_id": clientID,
		"findings":  out,
	})
}

// GetCreativeBuckets buckets every ad into its strategic category,
// computed on demand from the latest stored state.
func (h *Handlers) GetCreativeBuckets(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	ads, client, err := h.loadAds(r.Context(), clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"client_id": clientID,
		"buckets":   creative.ClassifyAds(ads, client),
	})
}

// GetCreativePatterns mines naming patterns from the winning ads.
func (h *Handlers) GetCreativePatterns(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	ads, client, err := h.loadAds(r.Context(), clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	assignments := creative.ClassifyAds(ads, client)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"client_id": clientID,
		"patterns":  creative.ExtractPatterns(ads, assignments),
	})
}

// GetEngineConfig returns a client's thresholds, defaults included.
func (h *Handlers) GetEngineConfig(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	cfg, err := h.configs.Get(r.Context(), clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// PutEngineConfig stores edited thresholds and drops the worker's cached
// copy so the next run uses them.
func (h *Handlers) PutEngineConfig(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")

	var cfg engine.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid config body: "+err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.configs.Put(r.Context(), clientID, cfg); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.runner != nil {
		h.runner.InvalidateConfig(clientID)
	}
	respondJSON(w, http.StatusOK, cfg)
}

// loadAds assembles the per-ad creative inputs: latest ad snapshots joined
// with their rolling windows and stored classifications.
func (h *Handlers) loadAds(ctx context.Context, clientID string) ([]creative.AdInput, *domain.Client, error) {
	client, err := h.source.GetClient(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	snaps, err := h.source.LatestSnapshots(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	rolling, err := h.source.RollingMetrics(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	classes, err := h.classifications.ListByClient(ctx, clientID, domain.LevelAd)
	if err != nil {
		return nil, nil, err
	}

	rollingByID := make(map[string]domain.RollingMetrics)
	for _, m := range rolling {
		if m.Level == domain.LevelAd {
			rollingByID[m.EntityID] = m
		}
	}
	classByID := make(map[string]domain.Classification)
	for _, c := range classes {
		classByID[c.EntityID] = c
	}

	var ads []creative.AdInput
	for _, snap := range snaps {
		if snap.Level != domain.LevelAd {
			continue
		}
		ads = append(ads, creative.AdInput{
			Snapshot: snap,
			Rolling:  rollingByID[snap.EntityID],
			Class:    classByID[snap.EntityID],
		})
	}
	return ads, client, nil
}

func parseLevel(raw string) (domain.EntityLevel, bool) {
	if raw == "" {
		return domain.LevelAd, true
	}
	for _, l := range domain.AllLevels() {
		if raw == string(l) {
			return l, true
		}
	}
	return "", false
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
