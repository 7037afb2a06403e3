package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/jqcty/internal/native"
	"github.com/roach88/jqcty/internal/query"
)

// Executor runs queries on the text channel. *query.Processor satisfies it.
type Executor interface {
	Language() string
	ExecuteText(ctx context.Context, program string, input native.Value) ([]byte, error)
}

// Memo caches an Executor's successful results in a Store and records every
// execution as a Run. Memo itself satisfies Executor.
//
// Thread-safety: Memo is safe for concurrent use when its Clock and
// IDGenerator are.
type Memo struct {
	store  *Store
	exec   Executor
	clock  Clock
	ids    IDGenerator
	logger *zap.Logger
}

// MemoOption configures a Memo.
type MemoOption func(*Memo)

// WithClock sets the seq source. The default resumes from the store's
// LastSeq.
func WithClock(clock Clock) MemoOption {
	return func(m *Memo) {
		m.clock = clock
	}
}

// WithIDGenerator sets the run id source. The default issues UUIDv7s.
func WithIDGenerator(ids IDGenerator) MemoOption {
	return func(m *Memo) {
		m.ids = ids
	}
}

// WithMemoLogger sets the logger for cache hits and misses.
func WithMemoLogger(logger *zap.Logger) MemoOption {
	return func(m *Memo) {
		m.logger = logger
	}
}

// NewMemo wraps exec with s.
func NewMemo(ctx context.Context, s *Store, exec Executor, opts ...MemoOption) (*Memo, error) {
	m := &Memo{
		store:  s,
		exec:   exec,
		ids:    UUIDv7Generator{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.clock == nil {
		last, err := s.LastSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("new memo: %w", err)
		}
		m.clock = NewClockAt(last)
	}

	return m, nil
}

// Language reports the wrapped executor's language.
func (m *Memo) Language() string {
	return m.exec.Language()
}

// ExecuteText returns the stored result for (language, program, input) when
// one exists, and otherwise runs the executor and stores a successful result.
// Executor errors are recorded in the run history and returned unchanged.
func (m *Memo) ExecuteText(ctx context.Context, program string, input native.Value) ([]byte, error) {
	language := m.exec.Language()
	logger := m.logger.With(zap.String("language", language), zap.String("program", program))

	key, keyErr := ResultKey(language, program, input)
	if keyErr == nil {
		cached, err := m.store.ReadResult(ctx, key)
		switch {
		case err == nil:
			logger.Debug("memo hit", zap.String("key", key), zap.Int64("stored_seq", cached.Seq))
			if err := m.recordRun(ctx, Run{Key: key, Language: language, Program: program, CacheHit: true}); err != nil {
				return nil, err
			}
			return []byte(cached.Result), nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("memo lookup: %w", err)
		}
	}

	text, execErr := m.exec.ExecuteText(ctx, program, input)
	if execErr != nil {
		logger.Debug("memo miss failed", zap.Error(execErr))
		run := Run{
			Key:          key,
			Language:     language,
			Program:      program,
			ErrorKind:    string(query.KindOf(execErr)),
			ErrorMessage: execErr.Error(),
		}
		if err := m.recordRun(ctx, run); err != nil {
			logger.Warn("failed to record run", zap.Error(err))
		}
		return nil, execErr
	}

	// An input the executor accepted always has a key.
	if keyErr != nil {
		return nil, fmt.Errorf("memo key: %w", keyErr)
	}

	inputHash, err := InputHash(input)
	if err != nil {
		return nil, fmt.Errorf("memo key: %w", err)
	}

	if err := m.store.WriteResult(ctx, Result{
		Key:       key,
		Language:  language,
		Program:   program,
		InputHash: inputHash,
		Result:    string(text),
		Seq:       m.clock.Next(),
	}); err != nil {
		return nil, err
	}
	logger.Debug("memo miss stored", zap.String("key", key))

	if err := m.recordRun(ctx, Run{Key: key, Language: language, Program: program}); err != nil {
		return nil, err
	}
	return text, nil
}

func (m *Memo) recordRun(ctx context.Context, run Run) error {
	run.ID = m.ids.Generate()
	run.Seq = m.clock.Next()
	return m.store.WriteRun(ctx, run)
}
