package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rankchat/rankchat/internal/conversation"
	"github.com/rankchat/rankchat/internal/observability"
	"github.com/rankchat/rankchat/internal/reports"
)

// maxAttempts bounds the generate/validate/execute loop. Attempt 1 uses the
// question verbatim, attempt 2 a formatted rewrite, attempt 3 a rewrite fed
// the previous failure.
const maxAttempts = 3

type phase int

const (
	phaseValidateInput phase = iota
	phaseGenerateSQL
	phaseValidateSQL
	phaseExecuteSQL
	phaseRetry
	phaseFormatAnswer
	phasePersist
	phaseSucceeded
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseValidateInput:
		return "validate_input"
	case phaseGenerateSQL:
		return "generate_sql"
	case phaseValidateSQL:
		return "validate_sql"
	case phaseExecuteSQL:
		return "execute_sql"
	case phaseRetry:
		return "retry"
	case phaseFormatAnswer:
		return "format_answer"
	case phasePersist:
		return "persist"
	case phaseSucceeded:
		return "succeeded"
	case phaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// QuestionFormatter rewrites questions between attempts.
type QuestionFormatter interface {
	Format(ctx context.Context, question string, entityNames []string, schemaHint string) (string, error)
	Reformat(ctx context.Context, original, previous string, failure error, entityNames []string) (string, error)
}

// SQLGenerator synthesizes a SQL statement for a question.
type SQLGenerator interface {
	Generate(ctx context.Context, question, schema string, entityNames []string, history []conversation.Turn) (string, error)
}

// SQLChecker statically validates generated SQL before execution.
type SQLChecker interface {
	Validate(sqlText string) error
}

// AnswerFormatter turns a result set into prose.
type AnswerFormatter interface {
	Compose(ctx context.Context, question, sqlText string, result reports.Result) (string, error)
}

// EntitySource lists known client names for prompt grounding.
type EntitySource interface {
	Names(ctx context.Context) ([]string, error)
}

// Workflow drives one question through format/generate/validate/execute
// until it produces an answer or exhausts its attempts.
type Workflow struct {
	Formatter    QuestionFormatter
	Generator    SQLGenerator
	Validator    SQLChecker
	Executor     reports.Executor
	Answers      AnswerFormatter
	Store        conversation.Store
	Entities     EntitySource
	Logger       *slog.Logger
	Schema       string
	HistoryTurns int
	RowLimit     int
}

// Request is one question to resolve. A blank SessionID starts a fresh
// conversation. AllowEmptyResult turns a zero-row execution into a success
// instead of a retry trigger. RowLimit caps the rows kept from a successful
// execution; zero falls back to the workflow default.
type Request struct {
	SessionID        string
	Question         string
	AllowEmptyResult bool
	RowLimit         int
}

// Outcome reports how a resolution ended. SQL and the row payload are
// populated on success; ErrorDetail on failure.
type Outcome struct {
	SessionID   string
	Success     bool
	Answer      string
	SQL         string
	Attempts    int
	Columns     []string
	Rows        []map[string]any
	ErrorDetail string
}

// state carries everything one resolution accumulates across phases.
type state struct {
	sessionID     string
	originalQuery string
	workingQuery  string
	attempt       int // 0-based; equals generations consumed so far
	lastFormatted string
	generatedSQL  string
	lastSQL       string

	validationErr error
	generationErr error
	executionErr  error
	emptyResult   bool

	result      reports.Result
	finalAnswer string

	history     []conversation.Turn
	entityNames []string
	allowEmpty  bool
	rowLimit    int

	terminalErr error
}

func (w *Workflow) Resolve(ctx context.Context, req Request) Outcome {
	start := time.Now()
	logger := w.logger()

	st := &state{
		sessionID:     strings.TrimSpace(req.SessionID),
		originalQuery: req.Question,
		allowEmpty:    req.AllowEmptyResult,
		rowLimit:      req.RowLimit,
	}
	if st.rowLimit <= 0 {
		st.rowLimit = w.RowLimit
	}
	if st.sessionID == "" {
		st.sessionID = conversation.NewSessionID()
	}

	current := phaseValidateInput
	for current != phaseSucceeded && current != phaseFailed {
		next := w.step(ctx, current, st)
		logger.Debug("resolution phase complete",
			slog.String("session_id", st.sessionID),
			slog.String("phase", current.String()),
			slog.String("next", next.String()),
			slog.Int("attempt", st.attempt))
		current = next
	}

	outcome := Outcome{
		SessionID: st.sessionID,
		Success:   current == phaseSucceeded,
		Attempts:  st.attempt,
	}
	if outcome.Success {
		outcome.Answer = st.finalAnswer
		outcome.SQL = st.lastSQL
		outcome.Columns = st.result.Columns
		outcome.Rows = st.result.Rows
		observability.ObserveResolution("success", st.attempt, time.Since(start))
		logger.Info("resolution succeeded",
			slog.String("session_id", st.sessionID),
			slog.Int("attempts", st.attempt),
			slog.Int("rows", len(st.result.Rows)))
	} else {
		outcome.ErrorDetail = st.terminalErr.Error()
		// Surface the last statement tried so the caller can show something
		// actionable alongside the error.
		outcome.SQL = st.generatedSQL
		observability.ObserveResolution("failure", st.attempt, time.Since(start))
		logger.Warn("resolution failed",
			slog.String("session_id", st.sessionID),
			slog.Int("attempts", st.attempt),
			slog.String("error", outcome.ErrorDetail))
	}
	return outcome
}

// step executes one phase and returns the next. All transitions live here so
// the loop in Resolve stays trivial.
func (w *Workflow) step(ctx context.Context, current phase, st *state) phase {
	switch current {
	case phaseValidateInput:
		return w.stepValidateInput(ctx, st)
	case phaseGenerateSQL:
		return w.stepGenerateSQL(ctx, st)
	case phaseValidateSQL:
		return w.stepValidateSQL(st)
	case phaseExecuteSQL:
		return w.stepExecuteSQL(ctx, st)
	case phaseRetry:
		return w.stepRetry(ctx, st)
	case phaseFormatAnswer:
		return w.stepFormatAnswer(ctx, st)
	case phasePersist:
		return w.stepPersist(ctx, st)
	default:
		st.terminalErr = fmt.Errorf("workflow reached unexpected phase %s", current)
		return phaseFailed
	}
}

func (w *Workflow) stepValidateInput(ctx context.Context, st *state) phase {
	cleaned := NormalizeQuestion(st.originalQuery)
	if cleaned == "" {
		st.terminalErr = ErrEmptyQuestion
		return phaseFailed
	}
	st.originalQuery = cleaned
	st.workingQuery = cleaned

	// History and entity names enrich prompts but their absence is never
	// fatal: a resolution can still succeed without them.
	if w.Store != nil {
		history, err := w.Store.RecentTurns(ctx, st.sessionID, w.historyTurns())
		if err != nil {
			w.logger().Warn("loading conversation history failed",
				slog.String("session_id", st.sessionID),
				slog.String("error", err.Error()))
		} else {
			st.history = history
		}
	}
	if w.Entities != nil {
		names, err := w.Entities.Names(ctx)
		if err != nil {
			w.logger().Warn("loading entity names failed",
				slog.String("error", err.Error()))
		} else {
			st.entityNames = names
		}
	}
	return phaseGenerateSQL
}

func (w *Workflow) stepGenerateSQL(ctx context.Context, st *state) phase {
	st.attempt++
	st.generatedSQL = ""
	st.generationErr = nil
	st.validationErr = nil
	st.executionErr = nil
	st.emptyResult = false

	sqlText, err := w.Generator.Generate(ctx, st.workingQuery, w.Schema, st.entityNames, st.history)
	if err != nil {
		st.generationErr = err
		return phaseRetry
	}
	st.generatedSQL = sqlText
	return phaseValidateSQL
}

func (w *Workflow) stepValidateSQL(st *state) phase {
	if err := w.Validator.Validate(st.generatedSQL); err != nil {
		st.validationErr = err
		return phaseRetry
	}
	st.lastSQL = st.generatedSQL
	return phaseExecuteSQL
}

func (w *Workflow) stepExecuteSQL(ctx context.Context, st *state) phase {
	result, err := w.Executor.Execute(ctx, st.lastSQL)
	if err != nil {
		st.executionErr = &ExecutionError{Err: err}
		return phaseRetry
	}
	if len(result.Rows) == 0 && !st.allowEmpty {
		st.emptyResult = true
		return phaseRetry
	}
	if st.rowLimit > 0 && len(result.Rows) > st.rowLimit {
		result.Rows = result.Rows[:st.rowLimit]
	}
	st.result = result
	return phaseFormatAnswer
}

// stepRetry decides whether another attempt is available and rewrites the
// question for it. Attempt 2 formats the original question; attempt 3 feeds
// the previous rewrite and failure back for correction. A rewrite failure
// consumes the attempt it was preparing.
func (w *Workflow) stepRetry(ctx context.Context, st *state) phase {
	if st.attempt >= maxAttempts {
		st.terminalErr = w.bestError(st)
		return phaseFailed
	}

	var (
		rewritten string
		err       error
	)
	if st.lastFormatted == "" {
		rewritten, err = w.Formatter.Format(ctx, st.originalQuery, st.entityNames, w.Schema)
	} else {
		rewritten, err = w.Formatter.Reformat(ctx, st.originalQuery, st.lastFormatted, w.bestError(st), st.entityNames)
	}
	if err != nil {
		st.attempt++
		if st.attempt >= maxAttempts {
			st.terminalErr = err
			return phaseFailed
		}
		w.logger().Warn("question rewrite failed, consuming attempt",
			slog.String("session_id", st.sessionID),
			slog.Int("attempt", st.attempt),
			slog.String("error", err.Error()))
		// Mark the tier as used so the next rewrite escalates to Reformat.
		if st.lastFormatted == "" {
			st.lastFormatted = st.originalQuery
		}
		return phaseRetry
	}

	st.lastFormatted = rewritten
	st.workingQuery = rewritten
	return phaseGenerateSQL
}

// stepFormatAnswer phrases the answer against the question the user actually
// asked, not the rewrite that happened to produce the winning SQL.
func (w *Workflow) stepFormatAnswer(ctx context.Context, st *state) phase {
	answer, err := w.Answers.Compose(ctx, st.originalQuery, st.lastSQL, st.result)
	if err != nil {
		w.logger().Warn("answer composition failed, using tabular summary",
			slog.String("session_id", st.sessionID),
			slog.String("error", err.Error()))
		answer = SummarizeResult(st.result)
	}
	st.finalAnswer = answer
	return phasePersist
}

// stepPersist stores the question version that actually produced the answer,
// not necessarily what the user typed.
func (w *Workflow) stepPersist(ctx context.Context, st *state) phase {
	if err := w.Store.AppendTurn(ctx, st.sessionID, st.workingQuery, st.finalAnswer); err != nil {
		st.terminalErr = fmt.Errorf("persist conversation turn: %w", err)
		return phaseFailed
	}
	return phaseSucceeded
}

// bestError picks the most actionable failure to surface: an execution error
// names a concrete database complaint, validation names the rejected
// statement, generation is vaguest, and an empty result is last.
func (w *Workflow) bestError(st *state) error {
	switch {
	case st.executionErr != nil:
		return st.executionErr
	case st.validationErr != nil:
		return st.validationErr
	case st.generationErr != nil:
		return st.generationErr
	case st.emptyResult:
		return ErrEmptyResult
	default:
		return fmt.Errorf("all %d attempts exhausted", maxAttempts)
	}
}

func (w *Workflow) historyTurns() int {
	if w.HistoryTurns > 0 {
		return w.HistoryTurns
	}
	return 3
}

func (w *Workflow) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
