//go:build integration

// Package containers provides shared testcontainers helpers for integration
// tests. Containers are started per suite; Ryuk reaps them after the run.
package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Schema creates the tables the stores expect. Kept here so every
// integration suite bootstraps the same shape.
const Schema = `
CREATE TABLE IF NOT EXISTS policy_groups (
    id              TEXT PRIMARY KEY,
    subject_id      TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    permissions     JSONB NOT NULL DEFAULT '{}',
    prohibitions    JSONB NOT NULL DEFAULT '{}',
    constraint_purpose TEXT NOT NULL DEFAULT '',
    expiration      TIMESTAMPTZ,
    requires_notification BOOLEAN NOT NULL DEFAULT FALSE,
    ai_allow_training BOOLEAN NOT NULL DEFAULT FALSE,
    ai_algorithm    TEXT NOT NULL DEFAULT '',
    version         BIGINT NOT NULL DEFAULT 1,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_policy_groups_subject ON policy_groups (subject_id);

CREATE TABLE IF NOT EXISTS data_assignments (
    group_id        TEXT NOT NULL REFERENCES policy_groups (id) ON DELETE CASCADE,
    assignment_key  TEXT NOT NULL,
    source          TEXT NOT NULL,
    property        TEXT NOT NULL DEFAULT '',
    table_name      TEXT NOT NULL DEFAULT '',
    record_id       TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (group_id, assignment_key)
);
CREATE INDEX IF NOT EXISTS idx_data_assignments_key ON data_assignments (assignment_key);

CREATE TABLE IF NOT EXISTS access_log (
    id                   TEXT PRIMARY KEY,
    controller_id        TEXT NOT NULL,
    subject_id           TEXT NOT NULL,
    action               TEXT NOT NULL,
    decision             TEXT NOT NULL,
    reason               TEXT NOT NULL DEFAULT '',
    purpose              TEXT NOT NULL DEFAULT '',
    policy_group_id      TEXT NOT NULL DEFAULT '',
    policy_version       BIGINT NOT NULL DEFAULT 0,
    request_time         TIMESTAMPTZ NOT NULL,
    client_ip            TEXT NOT NULL DEFAULT '',
    user_agent           TEXT NOT NULL DEFAULT '',
    blockchain_log_index BIGINT,
    blockchain_tx_hash   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_access_log_controller ON access_log (controller_id, request_time DESC);
CREATE INDEX IF NOT EXISTS idx_access_log_subject ON access_log (subject_id, request_time DESC);
`

// PostgresContainer wraps a testcontainers Postgres instance with both
// connection flavors the stores use.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	Pool      *pgxpool.Pool
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("custodia_test"),
		tcpostgres.WithUsername("custodia"),
		tcpostgres.WithPassword("custodia"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open database/sql connection: %v", err)
	}

	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		Pool:      pool,
		DB:        db,
	}
}

// TruncateTables empties the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}
