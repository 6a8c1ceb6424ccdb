package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clipstats/clipstats/internal/nl2sql"
	"github.com/clipstats/clipstats/internal/observability"
	"github.com/clipstats/clipstats/internal/scalar"
	"github.com/clipstats/clipstats/internal/sqlguard"
)

type Stage string

const (
	StageTranslate Stage = "translate"
	StageExtract   Stage = "extract"
	StageValidate  Stage = "validate"
	StageExecute   Stage = "execute"
)

// StageError tags a failure with the pipeline stage it came from. The
// cause stays in the logs; the asker only ever sees UserMessage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// UserMessage is the fixed generic text shown to the asker. It must not
// leak the statement, the violated rule or backend error text.
func (e *StageError) UserMessage() string {
	switch e.Stage {
	case StageTranslate:
		return "Could not process the question right now. Please try again."
	case StageExtract:
		return "Could not understand the question. Please rephrase it."
	case StageValidate:
		return "This question cannot be answered."
	case StageExecute:
		return "Something went wrong while computing the answer. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// ScalarExecutor is the slice of the database layer the pipeline needs.
// It only accepts validated statements.
type ScalarExecutor interface {
	RunScalar(ctx context.Context, stmt sqlguard.Statement) (scalar.Cell, error)
}

// Pipeline turns one free-text question into one number. All collaborators
// arrive through the constructor; there is no package-level state, so two
// pipelines with different backends can coexist.
type Pipeline struct {
	translator nl2sql.Translator
	executor   ScalarExecutor
	logger     *slog.Logger
}

func New(translator nl2sql.Translator, executor ScalarExecutor, logger *slog.Logger) (*Pipeline, error) {
	if translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{translator: translator, executor: executor, logger: logger}, nil
}

// Answer runs one question through translate, extract, validate, execute
// and normalize. Each call is a fresh independent attempt: no retries, no
// caching. Normalization is total, so a nil error always comes with a
// defined number.
func (p *Pipeline) Answer(ctx context.Context, question string) (float64, error) {
	translateStart := time.Now()
	translated, err := p.translator.Translate(ctx, nl2sql.Request{Question: question})
	if err != nil {
		p.logger.ErrorContext(ctx, "translation failed", slog.Any("error", err))
		observability.ObserveQuestion("translation_failed")
		return 0, &StageError{Stage: StageTranslate, Err: err}
	}
	observability.ObserveTranslateDuration(time.Since(translateStart))

	candidate, err := sqlguard.Extract(translated.Raw)
	if err != nil {
		p.logger.WarnContext(ctx, "no SQL in translator output",
			slog.String("model", translated.Model),
			slog.Any("error", err),
		)
		observability.ObserveQuestion("extraction_failed")
		return 0, &StageError{Stage: StageExtract, Err: err}
	}

	stmt, err := sqlguard.Validate(candidate)
	if err != nil {
		p.logger.WarnContext(ctx, "unsafe statement rejected",
			slog.String("sql", candidate),
			slog.Any("error", err),
		)
		observability.ObserveQuestion("unsafe_query")
		observability.ObserveUnsafeQuery(rejectionReason(err))
		return 0, &StageError{Stage: StageValidate, Err: err}
	}

	executeStart := time.Now()
	cell, err := p.executor.RunScalar(ctx, stmt)
	if err != nil {
		p.logger.ErrorContext(ctx, "query execution failed",
			slog.String("sql", stmt.String()),
			slog.Any("error", err),
		)
		observability.ObserveQuestion("execution_failed")
		return 0, &StageError{Stage: StageExecute, Err: err}
	}
	observability.ObserveQueryDuration(time.Since(executeStart))

	value := cell.Normalize(p.logger)
	observability.ObserveQuestion("answered")
	p.logger.InfoContext(ctx, "question answered",
		slog.String("sql", stmt.String()),
		slog.Float64("value", value),
	)
	return value, nil
}

func rejectionReason(err error) string {
	var forbidden *sqlguard.ForbiddenKeywordError
	if errors.As(err, &forbidden) {
		return "forbidden_keyword"
	}
	if errors.Is(err, sqlguard.ErrNotSelect) {
		return "not_select"
	}
	return "other"
}
