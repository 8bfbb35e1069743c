package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prince156/ChakraCore/internal/session"
)

// Compile-time check that Store implements the host stream callbacks.
var _ session.StreamFunctions = (*Store)(nil)

// AppendLogEvent appends one recorded event and returns its assigned seq.
// Seq assignment is the database's AUTOINCREMENT, so the log position is a
// pure function of append order.
func (s *Store) AppendLogEvent(ctx context.Context, kind string, payload []byte) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO log_events (kind, payload) VALUES (?, ?)
	`, kind, payload)
	if err != nil {
		return 0, fmt.Errorf("append log event: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append log event: %w", err)
	}
	return seq, nil
}

// ReadLogEvents returns events with seq >= fromSeq in sequence order.
func (s *Store) ReadLogEvents(ctx context.Context, fromSeq int64) ([]session.LogEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, payload FROM log_events
		WHERE seq >= ?
		ORDER BY seq ASC
	`, fromSeq)
	if err != nil {
		return nil, fmt.Errorf("read log events: %w", err)
	}
	defer rows.Close()

	var events []session.LogEvent
	for rows.Next() {
		var ev session.LogEvent
		if err := rows.Scan(&ev.Seq, &ev.Kind, &ev.Payload); err != nil {
			return nil, fmt.Errorf("read log events: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read log events: %w", err)
	}

	return events, nil
}

// WriteSnapshot stores a snapshot payload for a generation, recording the
// log position it was taken at. Rewriting a generation replaces its
// payload; restore retries after a crash land on the same generation.
func (s *Store) WriteSnapshot(ctx context.Context, generation, logSeq int64, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (generation, log_seq, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(generation) DO UPDATE SET
			log_seq = excluded.log_seq,
			payload = excluded.payload,
			created_at = excluded.created_at
	`, generation, logSeq, payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write snapshot %d: %w", generation, err)
	}

	slog.Debug("snapshot written",
		"generation", generation,
		"log_seq", logSeq,
		"size", len(payload),
	)

	return nil
}

// ReadSnapshot returns the payload stored for a generation.
// A missing generation wraps session.ErrNotFound.
func (s *Store) ReadSnapshot(ctx context.Context, generation int64) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots WHERE generation = ?
	`, generation).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot generation %d: %w", generation, session.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %d: %w", generation, err)
	}
	return payload, nil
}

// ListSnapshots returns stored snapshots in generation order, without
// payloads.
func (s *Store) ListSnapshots(ctx context.Context) ([]session.SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT generation, log_seq, length(payload), created_at
		FROM snapshots
		ORDER BY generation ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []session.SnapshotInfo
	for rows.Next() {
		var info session.SnapshotInfo
		var created string
		if err := rows.Scan(&info.Generation, &info.LogSeq, &info.Size, &created); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		info.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: parse created_at: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return infos, nil
}

// PruneSnapshots deletes the oldest snapshots until at most keep remain,
// returning how many were deleted. keep mirrors the session's snapshot
// history length; older generations are unreachable for reverse
// time-travel once pruned.
func (s *Store) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("prune snapshots: keep must be >= 0, got %d", keep)
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE generation NOT IN (
			SELECT generation FROM snapshots
			ORDER BY generation DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}

	if n > 0 {
		slog.Info("snapshots pruned", "deleted", n, "kept", keep)
	}

	return int(n), nil
}

// SetMeta stores a session metadata key, e.g. the recorded mode or the
// last allocated log id.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %q: %w", key, err)
	}
	return nil
}

// Meta reads a session metadata key. A missing key wraps
// session.ErrNotFound.
func (s *Store) Meta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM session_meta WHERE key = ?
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %q: %w", key, session.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get meta %q: %w", key, err)
	}
	return value, nil
}
