package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	err ClassifiedError
}

type policy struct {
	severity ErrorSeverity
	retry    RetryStrategy
}

// categoryPolicy holds the default severity and retry strategy of the
// categories that differ from error/never.
var categoryPolicy = map[ErrorCategory]policy{
	CategoryConfig:     {SeverityFatal, RetryNever},
	CategoryValidation: {SeverityFatal, RetryNever},
	CategoryProject:    {SeverityFatal, RetryNever},
	CategoryLifecycle:  {SeverityFatal, RetryNever},
	CategoryDaemon:     {SeverityFatal, RetryNever},
	CategoryInternal:   {SeverityFatal, RetryNever},
	CategoryNetwork:    {SeverityError, RetryBackoff},
	CategoryEvents:     {SeverityError, RetryBackoff},
}

// NewError starts an error of category with that category's default
// severity and retry strategy.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	p, ok := categoryPolicy[category]
	if !ok {
		p = policy{SeverityError, RetryNever}
	}
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: p.severity,
		retry:    p.retry,
		message:  message,
		context:  make(ErrorContext),
	}}
}

// WrapError starts an error of category caused by err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

// WithCause sets the underlying error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

// WithProject records the project the error belongs to.
func (b *ErrorBuilder) WithProject(name string) *ErrorBuilder {
	return b.WithContext(ContextProject, name)
}

// WithTask records the task the error belongs to.
func (b *ErrorBuilder) WithTask(name string) *ErrorBuilder {
	return b.WithContext(ContextTask, name)
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// Retryable marks the error as retryable with backoff.
func (b *ErrorBuilder) Retryable() *ErrorBuilder {
	b.err.retry = RetryBackoff
	return b
}

// Build creates the final ClassifiedError. The builder may be reused.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	e.context = make(ErrorContext).Merge(b.err.context)
	return &e
}

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder { return NewError(CategoryConfig, message) }

// ValidationError creates a validation error.
func ValidationError(message string) *ErrorBuilder { return NewError(CategoryValidation, message) }

// ProjectError creates a registry integrity error.
func ProjectError(message string) *ErrorBuilder { return NewError(CategoryProject, message) }

// LifecycleError creates a declaration/configuration phase violation.
func LifecycleError(message string) *ErrorBuilder { return NewError(CategoryLifecycle, message) }

// ToolchainError creates an error for a failed external JDK tool.
func ToolchainError(message string) *ErrorBuilder { return NewError(CategoryToolchain, message) }

// DocsError creates a documentation pipeline error.
func DocsError(message string) *ErrorBuilder { return NewError(CategoryDocs, message) }

// ArchiveError creates an archive packaging error.
func ArchiveError(message string) *ErrorBuilder { return NewError(CategoryArchive, message) }

// SigningError creates an artifact signing error.
func SigningError(message string) *ErrorBuilder { return NewError(CategorySigning, message) }

// PublishError creates a publication error.
func PublishError(message string) *ErrorBuilder { return NewError(CategoryPublish, message) }

// NetworkError creates a retryable network error.
func NetworkError(message string) *ErrorBuilder { return NewError(CategoryNetwork, message) }

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder { return NewError(CategoryFileSystem, message) }

// HistoryError creates a build history store error.
func HistoryError(message string) *ErrorBuilder { return NewError(CategoryHistory, message) }

// EventsError creates a retryable event notification error.
func EventsError(message string) *ErrorBuilder { return NewError(CategoryEvents, message) }

// DaemonError creates a daemon error.
func DaemonError(message string) *ErrorBuilder { return NewError(CategoryDaemon, message) }

// InternalError creates an internal error.
func InternalError(message string) *ErrorBuilder { return NewError(CategoryInternal, message) }
