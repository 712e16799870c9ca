// Package pipeline defines the closed error taxonomy shared by every stage
// of the analysis pipeline (spec.md §7).
package pipeline

import "fmt"

// Kind is one of the closed taxonomy of stage error kinds.
type Kind string

const (
	KindParseError         Kind = "PARSE_ERROR"
	KindMissingTable        Kind = "MISSING_TABLE"
	KindEmptyTable          Kind = "EMPTY_TABLE"
	KindMetadataPartial     Kind = "METADATA_PARTIAL"
	KindMetricsInvalid      Kind = "METRICS_INVALID"
	KindIntegrityViolation  Kind = "INTEGRITY_VIOLATION"
	KindDecisionLowPriority Kind = "DECISION_LOW_PRIORITY"
	KindOrchestratorInternal Kind = "ORCHESTRATOR_INTERNAL"
)

// Error is a structured pipeline-stage error carrying its Kind, the
// producing Stage name, and the wrapped cause, following the teacher's
// fmt.Errorf("...: %w", err) wrapping idiom made explicit for callers that
// need to branch on Kind via errors.As.
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a pipeline Error wrapping err.
func New(kind Kind, stage string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// Newf builds a pipeline Error from a formatted message.
func Newf(kind Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Err: fmt.Errorf(format, args...)}
}
