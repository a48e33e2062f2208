package repositories

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"game-lab/contract"
	"game-lab/domain"

	_ "modernc.org/sqlite"
)

//go:embed schema/room_log.sql
var roomLogSchema string

// SQLiteLog keeps every room log in one table keyed by (room_id, seq).
type SQLiteLog struct {
	sqlDB *sql.DB
}

var _ contract.EventLog = (*SQLiteLog)(nil)

// OpenSQLiteLog opens the database file and creates the schema if needed.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time: Append reads the next sequence inside its transaction.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(roomLogSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteLog{sqlDB: sqlDB}, nil
}

func (s *SQLiteLog) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteLog) Append(ctx context.Context, roomID domain.RoomID, at time.Time, record []byte) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM room_log WHERE room_id = ?`, string(roomID),
	).Scan(&next); err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO room_log (room_id, seq, at_ms, record) VALUES (?, ?, ?, ?)`,
		string(roomID), next, at.UnixMilli(), record,
	); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func (s *SQLiteLog) Load(ctx context.Context, roomID domain.RoomID) ([]domain.LogEntry, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT seq, at_ms, record FROM room_log WHERE room_id = ? ORDER BY seq`, string(roomID),
	)
	if err != nil {
		return nil, fmt.Errorf("query room log: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var (
			seq    int64
			atMs   int64
			record []byte
		)
		if err := rows.Scan(&seq, &atMs, &record); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, domain.LogEntry{
			RoomID: roomID,
			Seq:    uint64(seq),
			Time:   time.UnixMilli(atMs).UTC(),
			Record: record,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room log: %w", err)
	}
	return entries, nil
}
