package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/subkeeper/internal/dbx"
	"github.com/dmitrijs2005/subkeeper/internal/logging"
	"github.com/dmitrijs2005/subkeeper/internal/models"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or
// *sql.Tx). Snapshots are stored as JSON blobs in the snapshots table; the
// upsert replaces the row in one statement, so a concurrent reader sees
// either the old blob or the new one, never a partial write.
type SQLiteRepository struct {
	db  dbx.DBTX
	log logging.Logger

	mu    sync.Mutex
	byKey map[string]*sync.Mutex
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX, log logging.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, log: log, byKey: make(map[string]*sync.Mutex)}
}

// keyLock returns the per-key mutex, creating it on first use. Saves for the
// same identity are serialized; different identities do not contend.
func (r *SQLiteRepository) keyLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byKey[key]
	if !ok {
		m = &sync.Mutex{}
		r.byKey[key] = m
	}
	return m
}

// Save upserts the snapshot blob keyed by the snapshot's AppUserID.
func (r *SQLiteRepository) Save(ctx context.Context, s *models.CustomerState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	key := Key(s.AppUserID)
	l := r.keyLock(key)
	l.Lock()
	defer l.Unlock()

	query := `INSERT INTO snapshots (key, data, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, data, time.Now().UTC().Unix()); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// Load reads the user's snapshot blob. A missing row or a blob that no
// longer deserializes is a cache miss, not an error.
func (r *SQLiteRepository) Load(ctx context.Context, appUserID string) (*models.CustomerState, error) {
	query := `SELECT data FROM snapshots WHERE key = ?`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, Key(appUserID)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select snapshot: %w", err)
	}

	var s models.CustomerState
	if err := json.Unmarshal(data, &s); err != nil {
		// corrupt blob, treat as never saved
		r.log.Warn(ctx, "discarding corrupt cached snapshot", "app_user_id", appUserID, "error", err)
		return nil, nil
	}
	return &s, nil
}

// Delete removes the user's snapshot. Idempotent.
func (r *SQLiteRepository) Delete(ctx context.Context, appUserID string) error {
	key := Key(appUserID)
	l := r.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
