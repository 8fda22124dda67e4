package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS alert_actions (
        id          BIGSERIAL PRIMARY KEY,
        session_id  UUID        NOT NULL,
        user_id     BIGINT      NOT NULL,
        alert_id    TEXT        NOT NULL,
        action      TEXT        NOT NULL,
        succeeded   BOOLEAN     NOT NULL,
        error       TEXT,
        created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
    );
    CREATE INDEX IF NOT EXISTS alert_actions_created_at_idx ON alert_actions (created_at DESC);
    CREATE TABLE IF NOT EXISTS scan_runs (
        id               BIGSERIAL PRIMARY KEY,
        session_id       UUID        NOT NULL,
        user_id          BIGINT      NOT NULL,
        posts_scanned    INTEGER     NOT NULL,
        spikes_detected  INTEGER     NOT NULL,
        alerts_generated INTEGER     NOT NULL,
        error            TEXT,
        created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
    );`

	insertActionSQL = `INSERT INTO alert_actions (
        session_id,
        user_id,
        alert_id,
        action,
        succeeded,
        error
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    RETURNING id, created_at;`

	listRecentActionsSQL = `SELECT
        id,
        session_id,
        user_id,
        alert_id,
        action,
        succeeded,
        error,
        created_at
    FROM alert_actions
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2;`

	deleteActionsBeforeSQL = `DELETE FROM alert_actions WHERE created_at < $1;`

	insertScanSQL = `INSERT INTO scan_runs (
        session_id,
        user_id,
        posts_scanned,
        spikes_detected,
        alerts_generated,
        error
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    RETURNING id, created_at;`

	listRecentScansSQL = `SELECT
        id,
        session_id,
        user_id,
        posts_scanned,
        spikes_detected,
        alerts_generated,
        error,
        created_at
    FROM scan_runs
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2;`

	deleteScansBeforeSQL = `DELETE FROM scan_runs WHERE created_at < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// ActionStore journals alert actions.
type ActionStore interface {
	RecordAction(ctx context.Context, rec ActionRecord) (ActionRecord, error)
	ListRecentActions(ctx context.Context, userID int64, limit int) ([]ActionRecord, error)
	DeleteActionsBefore(ctx context.Context, olderThan time.Time) (int64, error)
}

// ScanStore journals scans.
type ScanStore interface {
	RecordScan(ctx context.Context, rec ScanRecord) (ScanRecord, error)
	ListRecentScans(ctx context.Context, userID int64, limit int) ([]ScanRecord, error)
	DeleteScansBefore(ctx context.Context, olderThan time.Time) (int64, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to the action and scan journals.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the journal tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// RecordAction appends an action to the journal.
func (s *Store) RecordAction(ctx context.Context, rec ActionRecord) (ActionRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return ActionRecord{}, err
	}

	row := pool.QueryRow(ctx, insertActionSQL,
		rec.SessionID,
		rec.UserID,
		rec.AlertID,
		rec.Action,
		rec.Succeeded,
		nullableString(rec.Error),
	)
	if scanErr := row.Scan(&rec.ID, &rec.CreatedAt); scanErr != nil {
		return ActionRecord{}, fmt.Errorf("record action: %w", scanErr)
	}
	return rec, nil
}

// ListRecentActions lists a user's most recent actions.
func (s *Store) ListRecentActions(ctx context.Context, userID int64, limit int) ([]ActionRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentActionsSQL, userID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent actions: %w", queryErr)
	}
	defer rows.Close()

	records := make([]ActionRecord, 0, limit)
	for rows.Next() {
		rec, scanErr := scanAction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// DeleteActionsBefore prunes the journal and returns the number of removed rows.
func (s *Store) DeleteActionsBefore(ctx context.Context, olderThan time.Time) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	tag, execErr := pool.Exec(ctx, deleteActionsBeforeSQL, olderThan)
	if execErr != nil {
		return 0, fmt.Errorf("delete actions before: %w", execErr)
	}
	return tag.RowsAffected(), nil
}

// RecordScan appends a scan run.
func (s *Store) RecordScan(ctx context.Context, rec ScanRecord) (ScanRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return ScanRecord{}, err
	}

	row := pool.QueryRow(ctx, insertScanSQL,
		rec.SessionID,
		rec.UserID,
		rec.PostsScanned,
		rec.SpikesDetected,
		rec.AlertsGenerated,
		nullableString(rec.Error),
	)
	if scanErr := row.Scan(&rec.ID, &rec.CreatedAt); scanErr != nil {
		return ScanRecord{}, fmt.Errorf("record scan: %w", scanErr)
	}
	return rec, nil
}

// ListRecentScans lists a user's most recent scans.
func (s *Store) ListRecentScans(ctx context.Context, userID int64, limit int) ([]ScanRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentScansSQL, userID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent scans: %w", queryErr)
	}
	defer rows.Close()

	records := make([]ScanRecord, 0, limit)
	for rows.Next() {
		var (
			rec    ScanRecord
			errMsg sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.UserID,
			&rec.PostsScanned,
			&rec.SpikesDetected,
			&rec.AlertsGenerated,
			&errMsg,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			msg := errMsg.String
			rec.Error = &msg
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// DeleteScansBefore prunes scan history and returns the number of removed rows.
func (s *Store) DeleteScansBefore(ctx context.Context, olderThan time.Time) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	tag, execErr := pool.Exec(ctx, deleteScansBeforeSQL, olderThan)
	if execErr != nil {
		return 0, fmt.Errorf("delete scans before: %w", execErr)
	}
	return tag.RowsAffected(), nil
}

func scanAction(rows pgx.Rows) (ActionRecord, error) {
	var (
		rec    ActionRecord
		errMsg sql.NullString
	)
	if err := rows.Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.UserID,
		&rec.AlertID,
		&rec.Action,
		&rec.Succeeded,
		&errMsg,
		&rec.CreatedAt,
	); err != nil {
		return ActionRecord{}, err
	}
	if errMsg.Valid {
		msg := errMsg.String
		rec.Error = &msg
	}
	return rec, nil
}

func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
