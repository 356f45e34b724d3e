package runlog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/edupath-ingest/internal/core"
)

const runColumns = `id, file_name, file_type, entity_type, status,
	COALESCE(error_message, ''), total_records, successful_records, failed_records,
	row_errors, COALESCE(triggered_by, ''), created_at, updated_at`

// Postgres stores runs in the ingestion_logs table.
type Postgres struct {
	db core.DBTX
}

// NewPostgres returns a store backed by db.
func NewPostgres(db core.DBTX) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema applies Schema.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, Schema); err != nil {
		return errors.Wrap(err, "create ingestion_logs")
	}
	return nil
}

// Create implements core.RunStore.
func (p *Postgres) Create(ctx context.Context, run *core.Run) error {
	err := p.db.QueryRow(ctx,
		`INSERT INTO ingestion_logs
		    (file_name, file_type, entity_type, status, error_message,
		     total_records, successful_records, failed_records, row_errors, triggered_by)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, NULLIF($10, ''))
		 RETURNING id, created_at, updated_at`,
		run.FileName, run.FileType, run.EntityType, string(run.Status), run.ErrorMessage,
		run.TotalRecords, run.SuccessfulRecords, run.FailedRecords, rowErrors(run), run.TriggeredBy,
	).Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "insert run")
	}
	return nil
}

// Update implements core.RunStore.
func (p *Postgres) Update(ctx context.Context, run *core.Run) error {
	err := p.db.QueryRow(ctx,
		`UPDATE ingestion_logs
		 SET status = $2,
		     error_message = NULLIF($3, ''),
		     total_records = $4,
		     successful_records = $5,
		     failed_records = $6,
		     row_errors = $7,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		run.ID, string(run.Status), run.ErrorMessage,
		run.TotalRecords, run.SuccessfulRecords, run.FailedRecords, rowErrors(run),
	).Scan(&run.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.ErrRunNotFound
		}
		return errors.Wrapf(err, "update run %d", run.ID)
	}
	return nil
}

// Get implements core.RunStore.
func (p *Postgres) Get(ctx context.Context, id int64) (*core.Run, error) {
	row := p.db.QueryRow(ctx, `SELECT `+runColumns+` FROM ingestion_logs WHERE id = $1`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrRunNotFound
		}
		return nil, errors.Wrapf(err, "get run %d", id)
	}
	return run, nil
}

// List implements core.RunStore, newest first.
func (p *Postgres) List(ctx context.Context, limit int) ([]core.Run, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+runColumns+` FROM ingestion_logs ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	runs := make([]core.Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate runs")
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*core.Run, error) {
	var (
		run    core.Run
		status string
	)
	err := row.Scan(
		&run.ID, &run.FileName, &run.FileType, &run.EntityType, &status,
		&run.ErrorMessage, &run.TotalRecords, &run.SuccessfulRecords, &run.FailedRecords,
		&run.RowErrors, &run.TriggeredBy, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Status = core.Status(status)
	if len(run.RowErrors) == 0 {
		run.RowErrors = nil
	}
	return &run, nil
}

// rowErrors never returns nil so the NOT NULL column gets '{}'.
func rowErrors(run *core.Run) []string {
	if run.RowErrors == nil {
		return []string{}
	}
	return run.RowErrors
}
