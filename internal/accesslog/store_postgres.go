package accesslog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dErrors "custodia/pkg/domainerrors"
)

// PostgresStore persists access log entries in the access_log table. Inserts
// are idempotent on the entry ID via ON CONFLICT DO NOTHING; the table has no
// UPDATE path by design.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry AccessLogEntry) error {
	var index sql.NullInt64
	if entry.BlockchainLogIndex != nil {
		index = sql.NullInt64{Int64: int64(*entry.BlockchainLogIndex), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO access_log (
			id, controller_id, subject_id, action, decision, reason, purpose,
			policy_group_id, policy_version, request_time, client_ip, user_agent,
			blockchain_log_index, blockchain_tx_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`,
		entry.ID, entry.ControllerID, entry.SubjectID, entry.Action,
		entry.Decision, entry.Reason, entry.Purpose,
		entry.PolicyGroupID, entry.PolicyVersion, entry.RequestTime,
		entry.ClientIP, entry.UserAgent,
		index, entry.BlockchainTxHash,
	)
	if err != nil {
		return fmt.Errorf("insert access log entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, entryID string) (AccessLogEntry, error) {
	row := s.db.QueryRowContext(ctx, selectEntry+` WHERE id = $1`, entryID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AccessLogEntry{}, dErrors.New(dErrors.CodeNotFound, "log entry not found")
	}
	return entry, err
}

func (s *PostgresStore) ListByController(ctx context.Context, controllerID string) ([]AccessLogEntry, error) {
	return s.list(ctx, selectEntry+` WHERE controller_id = $1 ORDER BY request_time DESC`, controllerID)
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID string) ([]AccessLogEntry, error) {
	return s.list(ctx, selectEntry+` WHERE subject_id = $1 ORDER BY request_time DESC`, subjectID)
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]AccessLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query access log: %w", err)
	}
	defer rows.Close()

	var out []AccessLogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access log: %w", err)
	}
	return out, nil
}

const selectEntry = `
	SELECT id, controller_id, subject_id, action, decision, reason, purpose,
	       policy_group_id, policy_version, request_time, client_ip, user_agent,
	       blockchain_log_index, blockchain_tx_hash
	FROM access_log`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (AccessLogEntry, error) {
	var (
		entry AccessLogEntry
		index sql.NullInt64
	)
	err := row.Scan(
		&entry.ID, &entry.ControllerID, &entry.SubjectID, &entry.Action,
		&entry.Decision, &entry.Reason, &entry.Purpose,
		&entry.PolicyGroupID, &entry.PolicyVersion, &entry.RequestTime,
		&entry.ClientIP, &entry.UserAgent,
		&index, &entry.BlockchainTxHash,
	)
	if err != nil {
		return AccessLogEntry{}, err
	}
	if index.Valid {
		v := uint64(index.Int64)
		entry.BlockchainLogIndex = &v
	}
	return entry, nil
}
