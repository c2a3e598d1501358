package errors

import (
	stdErrors "errors"
	"fmt"
)

// Context keys shared by every package.
const (
	ContextProject = "project"
	ContextTask    = "task"
)

// ClassifiedError represents a structured error with category, severity, and context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// Error prefixes the message with the category and, when known, the
// project and task.
func (e *ClassifiedError) Error() string {
	where := string(e.category)
	if p, ok := e.context.GetString(ContextProject); ok {
		where += ":" + p
	}
	if t, ok := e.context.GetString(ContextTask); ok {
		where += ":" + t
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", where, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", where, e.message)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory      { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity      { return e.severity }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string              { return e.message }
func (e *ClassifiedError) Context() ErrorContext        { return e.context }

// WithContext returns a copy of e with key set; e is unchanged.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	cp := *e
	cp.context = make(ErrorContext).Merge(e.context).Set(key, value)
	return &cp
}

// Is matches another ClassifiedError with the same category and message,
// which lets package-level sentinels be compared with errors.Is.
func (e *ClassifiedError) Is(target error) bool {
	if other, ok := target.(*ClassifiedError); ok {
		return e.category == other.category && e.message == other.message
	}
	return false
}

// CanRetry reports whether the operation that produced e may be retried.
func (e *ClassifiedError) CanRetry() bool {
	return e.retry != RetryNever && e.retry != RetryUserAction
}

// IsFatal checks if the error is fatal (should stop execution).
func (e *ClassifiedError) IsFatal() bool {
	return e.severity == SeverityFatal
}

// IsStructural reports whether the error aborts the whole orchestration run.
func (e *ClassifiedError) IsStructural() bool {
	return e.category.Structural()
}

// IsClassified checks if any error in the chain is a ClassifiedError.
func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

// AsClassified finds the first ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stdErrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory checks if the first classified error in the chain belongs to a category.
func HasCategory(err error, category ErrorCategory) bool {
	return GetCategory(err) == category && IsClassified(err)
}

// IsStructural reports whether err must abort the orchestration run.
// Unclassified errors are treated as project-scoped.
func IsStructural(err error) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsStructural()
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.Category()
	}
	return CategoryInternal
}
