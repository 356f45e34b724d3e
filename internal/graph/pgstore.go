package graph

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema creates the node and edge tables. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS graph_nodes (
    label      TEXT        NOT NULL,
    key        TEXT        NOT NULL,
    props      JSONB       NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (label, key)
);

CREATE TABLE IF NOT EXISTS graph_edges (
    from_label TEXT        NOT NULL,
    from_key   TEXT        NOT NULL,
    rel        TEXT        NOT NULL,
    to_label   TEXT        NOT NULL,
    to_key     TEXT        NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (from_label, from_key, rel, to_label, to_key),
    FOREIGN KEY (from_label, from_key) REFERENCES graph_nodes (label, key),
    FOREIGN KEY (to_label, to_key) REFERENCES graph_nodes (label, key)
);

CREATE INDEX IF NOT EXISTS graph_edges_to_idx ON graph_edges (to_label, to_key, rel);
`

const mergeNodeSQL = `
INSERT INTO graph_nodes (label, key, props)
VALUES ($1, $2, $3)
ON CONFLICT (label, key) DO UPDATE
SET props = graph_nodes.props || EXCLUDED.props,
    updated_at = now()
RETURNING props`

const linkSQL = `
INSERT INTO graph_edges (from_label, from_key, rel, to_label, to_key)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT DO NOTHING`

// foreignKeyViolation is the SQLSTATE for a missing referenced row.
const foreignKeyViolation = "23503"

// DBTX is the subset of pgxpool.Pool and pgx.Tx the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore keeps the graph in two PostgreSQL tables: nodes with a JSONB
// property bag and edges keyed by both endpoints and the relation.
type PGStore struct {
	db DBTX
}

// NewPGStore returns a store backed by db.
func NewPGStore(db DBTX) *PGStore {
	return &PGStore{db: db}
}

// EnsureSchema applies Schema.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return errors.Wrap(err, "create graph schema")
	}
	return nil
}

// MergeNode implements Store. The merge is a JSONB concatenation, so keys
// absent from props keep their stored values.
func (s *PGStore) MergeNode(ctx context.Context, label Label, key string, props Props) (Props, error) {
	if props == nil {
		props = Props{}
	}

	var merged map[string]any
	if err := s.db.QueryRow(ctx, mergeNodeSQL, string(label), key, map[string]any(props)).Scan(&merged); err != nil {
		return nil, errors.Wrapf(err, "merge %s node %q", label, key)
	}
	return Props(merged), nil
}

// Link implements Store.
func (s *PGStore) Link(ctx context.Context, from Ref, rel Relation, to Ref) error {
	_, err := s.db.Exec(ctx, linkSQL,
		string(from.Label), from.Key, string(rel), string(to.Label), to.Key)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return errors.Wrapf(ErrNodeNotFound, "link %s -%s-> %s", from, rel, to)
		}
		return errors.Wrapf(err, "link %s -%s-> %s", from, rel, to)
	}
	return nil
}
