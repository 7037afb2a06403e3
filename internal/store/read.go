package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadResult retrieves a memoized result by key.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadResult(ctx context.Context, key string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, language, program, input_hash, result, seq
		FROM results
		WHERE key = ?
	`, key)

	var r Result
	err := row.Scan(&r.Key, &r.Language, &r.Program, &r.InputHash, &r.Result, &r.Seq)
	if err != nil {
		if err == sql.ErrNoRows {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("scan result: %w", err)
	}
	return r, nil
}

// CountResults returns the number of memoized results.
func (s *Store) CountResults(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

// ReadRuns returns the most recent runs, oldest first.
// Ordered by seq ASC, id ASC COLLATE BINARY. A limit <= 0 returns every run.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ReadRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, key, language, program, cache_hit, error_kind, error_message, seq
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	args := []any{}
	if limit > 0 {
		// Take the newest rows, then restore ascending order.
		query = `
			SELECT * FROM (
				SELECT id, key, language, program, cache_hit, error_kind, error_message, seq
				FROM runs
				ORDER BY seq DESC, id COLLATE BINARY DESC
				LIMIT ?
			)
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

// ReadRunsForKey returns every run of one query, oldest first.
func (s *Store) ReadRunsForKey(ctx context.Context, key string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT id, key, language, program, cache_hit, error_kind, error_message, seq
		FROM runs
		WHERE key = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, key)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var cacheHit int
		if err := rows.Scan(
			&run.ID,
			&run.Key,
			&run.Language,
			&run.Program,
			&cacheHit,
			&run.ErrorKind,
			&run.ErrorMessage,
			&run.Seq,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CacheHit = cacheHit == 1
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}
