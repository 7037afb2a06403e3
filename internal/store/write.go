package store

import (
	"context"
	"fmt"
)

// WriteResult inserts a memoized result.
// Uses ON CONFLICT(key) DO NOTHING: the first stored result for a key wins,
// so concurrent misses on the same query are harmless.
func (s *Store) WriteResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (key, language, program, input_hash, result, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`,
		r.Key,
		r.Language,
		r.Program,
		r.InputHash,
		r.Result,
		r.Seq,
	)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// WriteRun inserts a run record. Run ids are unique; a duplicate id is an
// error.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, key, language, program, cache_hit, error_kind, error_message, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Key,
		run.Language,
		run.Program,
		boolToInt(run.CacheHit),
		run.ErrorKind,
		run.ErrorMessage,
		run.Seq,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
