package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mazen160/go-random"
)

const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Record is one deploy invocation.
type Record struct {
	ID         string
	OutputType string
	Pages      int
	Rows       int
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Error      string
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open connects to the configured database and applies the schema.
func Open(cfg Config) (*Store, error) {
	db, err := cfg.OpenDB()
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}
	return NewStore(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Begin(ctx context.Context, outputType string) (Record, error) {
	id, err := random.String(12)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:         id,
		OutputType: outputType,
		StartedAt:  s.now(),
		Status:     StatusRunning,
	}
	_, err = s.db.ExecContext(
		ctx,
		"insert into deploys (id, output_type, started_at, status) values (?, ?, ?, ?)",
		rec.ID, rec.OutputType, rec.StartedAt.UnixMilli(), rec.Status,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert deploy: %w", err)
	}
	return rec, nil
}

// Finish marks the deploy as succeeded, or failed when runErr is not nil.
func (s *Store) Finish(ctx context.Context, rec Record, pages, rows int, runErr error) (Record, error) {
	rec.Pages = pages
	rec.Rows = rows
	rec.FinishedAt = s.now()
	rec.Status = StatusSuccess
	rec.Error = ""
	if runErr != nil {
		rec.Status = StatusFailed
		rec.Error = runErr.Error()
	}

	_, err := s.db.ExecContext(
		ctx,
		`update deploys
		set page_count = ?, row_count = ?, finished_at = ?, status = ?, error = ?
		where id = ?`,
		rec.Pages, rec.Rows, rec.FinishedAt.UnixMilli(), rec.Status, rec.Error, rec.ID,
	)
	if err != nil {
		return rec, fmt.Errorf("update deploy: %w", err)
	}
	return rec, nil
}

// Recent returns the latest deploys, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select id, output_type, page_count, row_count, started_at, finished_at, status, error
		from deploys
		order by started_at desc, rowid desc
		limit ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var startedAt int64
		var finishedAt sql.NullInt64
		err := rows.Scan(
			&rec.ID, &rec.OutputType, &rec.Pages, &rec.Rows,
			&startedAt, &finishedAt, &rec.Status, &rec.Error,
		)
		if err != nil {
			return nil, err
		}
		rec.StartedAt = time.UnixMilli(startedAt)
		if finishedAt.Valid {
			rec.FinishedAt = time.UnixMilli(finishedAt.Int64)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
