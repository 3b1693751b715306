package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ignite/adpulse/internal/engine"
)

// EngineConfigStore manages per-client engine thresholds, edited through
// the admin surface. Stored as a single JSONB document per client so new
// threshold fields never need a migration.
type EngineConfigStore struct{ db *sql.DB }

// NewEngineConfigStore creates a Postgres-backed config store.
func NewEngineConfigStore(db *sql.DB) *EngineConfigStore {
	return &EngineConfigStore{db: db}
}

// Get returns a client's thresholds, falling back to the defaults when the
// client has never been tuned.
func (s *EngineConfigStore) Get(ctx context.Context, clientID string) (engine.Config, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT config FROM ad_engine_configs WHERE client_id = $1
	`, clientID).Scan(&raw)
	if err == sql.ErrNoRows {
		return engine.DefaultConfig(), nil
	}
	if err != nil {
		return engine.Config{}, fmt.Errorf("get engine config: %w", err)
	}

	var cfg engine.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return engine.Config{}, fmt.Errorf("decode engine config: %w", err)
	}
	return cfg, nil
}

// Put stores a client's thresholds, creating or overwriting the document.
func (s *EngineConfigStore) Put(ctx context.Context, clientID string, cfg engine.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode engine config: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ad_engine_configs (client_id, config, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (client_id) DO UPDATE SET
		 config = EXCLUDED.config,
		 updated_at = NOW()
	`, clientID, raw)
	if err != nil {
		return fmt.Errorf("put engine config: %w", err)
	}
	return nil
}

// SeedDefaults inserts the default thresholds for any client that has
// none yet. Existing tuning is never touched.
func (s *EngineConfigStore) SeedDefaults(ctx context.Context, clientIDs []string) {
	raw, err := json.Marshal(engine.DefaultConfig())
	if err != nil {
		return
	}
	seeded := 0
	for _, id := range clientIDs {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO ad_engine_configs (client_id, config, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (client_id) DO NOTHING
		`, id, raw)
		if err != nil {
			log.Printf("[engineconfig] seed error client=%s: %v", id, err)
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			seeded++
		}
	}
	if seeded > 0 {
		log.Printf("[engineconfig] seeded default thresholds for %d clients", seeded)
	}
}
