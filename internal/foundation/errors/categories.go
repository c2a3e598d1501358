package errors

import "maps"

// ErrorCategory classifies an error for exit codes and propagation.
type ErrorCategory string

// Run-wide categories.
const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryProject    ErrorCategory = "project"
	CategoryLifecycle  ErrorCategory = "lifecycle"
	CategoryInternal   ErrorCategory = "internal"
)

// Project-scoped categories raised while running a task chain.
const (
	CategoryTask       ErrorCategory = "task"
	CategoryToolchain  ErrorCategory = "toolchain"
	CategoryDocs       ErrorCategory = "docs"
	CategoryArchive    ErrorCategory = "archive"
	CategorySigning    ErrorCategory = "signing"
	CategoryPublish    ErrorCategory = "publish"
	CategoryFileSystem ErrorCategory = "filesystem"
)

// Integration categories.
const (
	CategoryNetwork ErrorCategory = "network"
	CategoryHistory ErrorCategory = "history"
	CategoryEvents  ErrorCategory = "events"
	CategoryRuntime ErrorCategory = "runtime"
	CategoryDaemon  ErrorCategory = "daemon"
)

// Structural reports whether errors of this category abort a whole
// orchestration run rather than a single project chain.
func (c ErrorCategory) Structural() bool {
	switch c {
	case CategoryConfig, CategoryValidation, CategoryProject, CategoryLifecycle, CategoryInternal:
		return true
	default:
		return false
	}
}

// ErrorSeverity is the impact of an error; fatal errors are always logged.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// RetryStrategy tells retry.Policy whether an error is worth another attempt.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext is structured data attached to an error and logged with it.
type ErrorContext map[string]any

// Set stores value under key, allocating c when nil.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = ErrorContext{}
	}
	c[key] = value
	return c
}

// Get returns the value under key.
func (c ErrorContext) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// GetString returns the value under key when it is a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// Merge returns a new context holding c overlaid with other.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	out := make(ErrorContext, len(c)+len(other))
	maps.Copy(out, c)
	maps.Copy(out, other)
	return out
}
