package sqlite

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fwojciec/sitecrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sitecrawl.ResultService = (*ResultService)(nil)

// ResultService implements sitecrawl.ResultService using SQLite.
type ResultService struct {
	db *DB
}

// NewResultService creates a new ResultService.
func NewResultService(db *DB) *ResultService {
	return &ResultService{db: db}
}

// CreateResult stores a result and its records in one transaction.
// A result without an ID is assigned a new UUID.
func (s *ResultService) CreateResult(ctx context.Context, result *sitecrawl.Result) error {
	if !result.Mode.Valid() {
		return sitecrawl.Errorf(sitecrawl.EINVALID, "unknown crawl mode %q", result.Mode)
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO results (id, mode, seed_url, status, state, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, result.ID, string(result.Mode), result.SeedURL, string(result.Status), string(result.State),
		formatTime(result.StartedAt), formatTime(result.FinishedAt))
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (result_id, position, type, data)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range result.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			return sitecrawl.Errorf(sitecrawl.EINTERNAL, "encoding record %d: %v", i, err)
		}
		if _, err := stmt.ExecContext(ctx, result.ID, i, string(rec.RecordType()), string(data)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindResultByID retrieves a result and its records.
func (s *ResultService) FindResultByID(ctx context.Context, id string) (*sitecrawl.Result, error) {
	results, err := s.FindResults(ctx, sitecrawl.ResultFilter{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sitecrawl.Errorf(sitecrawl.ENOTFOUND, "result not found")
	}
	return results[0], nil
}

// FindResults retrieves results matching the filter with their records.
func (s *ResultService) FindResults(ctx context.Context, filter sitecrawl.ResultFilter) ([]*sitecrawl.Result, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, mode, seed_url, status, state, started_at, finished_at FROM results WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Mode != nil {
		query.WriteString(" AND mode = ?")
		args = append(args, string(*filter.Mode))
	}
	if filter.SeedURL != nil {
		query.WriteString(" AND seed_url = ?")
		args = append(args, *filter.SeedURL)
	}

	query.WriteString(" ORDER BY started_at DESC, id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*sitecrawl.Result
	for rows.Next() {
		var result sitecrawl.Result
		var startedAt, finishedAt string

		if err := rows.Scan(&result.ID, &result.Mode, &result.SeedURL, &result.Status, &result.State,
			&startedAt, &finishedAt); err != nil {
			return nil, err
		}
		if result.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if result.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, result := range results {
		if result.Records, err = s.findRecords(ctx, result.ID); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// findRecords loads the records of a result in append order.
func (s *ResultService) findRecords(ctx context.Context, resultID string) ([]sitecrawl.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM records WHERE result_id = ? ORDER BY position
	`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []sitecrawl.Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := sitecrawl.UnmarshalRecord([]byte(data))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteResult permanently removes a result and its records.
func (s *ResultService) DeleteResult(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM results WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sitecrawl.Errorf(sitecrawl.ENOTFOUND, "result not found")
	}

	return nil
}
