// Package runlog persists ingestion runs, one record per run.
//
// Two stores implement core.RunStore: Postgres for deployments and an
// in-memory store for development and tests. Runs are never deleted here;
// retention belongs to whoever owns the database.
package runlog

// Schema creates the run log table. It is idempotent and applied at
// startup; there is no migration history.
const Schema = `
CREATE TABLE IF NOT EXISTS ingestion_logs (
    id                 BIGSERIAL   PRIMARY KEY,
    file_name          TEXT        NOT NULL DEFAULT '',
    file_type          TEXT        NOT NULL DEFAULT '',
    entity_type        TEXT        NOT NULL DEFAULT '',
    status             TEXT        NOT NULL,
    error_message      TEXT,
    total_records      INTEGER,
    successful_records INTEGER,
    failed_records     INTEGER,
    row_errors         TEXT[]      NOT NULL DEFAULT '{}',
    triggered_by       TEXT,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ingestion_logs_created_at_idx ON ingestion_logs (created_at DESC);
CREATE INDEX IF NOT EXISTS ingestion_logs_status_idx ON ingestion_logs (status);
`
