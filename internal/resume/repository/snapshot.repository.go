package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"resumebuilder/pkg/logger"
	"resumebuilder/store"
)

// SnapshotSink receives copies of the published state. It is write-only:
// nothing reads a sink back into the store.
type SnapshotSink interface {
	Save(ctx context.Context, st store.State) error
}

const DefaultSessionKey = "session"

const createSnapshotsTable = `CREATE TABLE IF NOT EXISTS resume_snapshots (
	session_key TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	documents INTEGER NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const upsertSnapshot = `INSERT INTO resume_snapshots (session_key, payload, documents, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (session_key) DO UPDATE SET payload = EXCLUDED.payload, documents = EXCLUDED.documents, updated_at = NOW()`

type SnapshotRepository struct {
	DB         *sql.DB
	SessionKey string
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{DB: db, SessionKey: DefaultSessionKey}
}

func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, createSnapshotsTable); err != nil {
		logger.Sugar.Errorf("Failed to create resume_snapshots table: %v", err)
		return err
	}
	return nil
}

func (r *SnapshotRepository) Save(ctx context.Context, st store.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := r.DB.ExecContext(ctx, upsertSnapshot, r.SessionKey, payload, len(st.Documents)); err != nil {
		logger.Sugar.Errorf("Failed to save snapshot %s: %v", r.SessionKey, err)
		return err
	}
	return nil
}
