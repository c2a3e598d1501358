package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
)

// Process exit codes by category. Unclassified errors and unlisted
// categories exit with 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryNotFound:   2,
	CategoryProject:    3,
	CategoryLifecycle:  3,
	CategoryConfig:     7,
	CategoryNetwork:    8,
	CategoryEvents:     8,
	CategorySigning:    9,
	CategoryPublish:    9,
	CategoryInternal:   10,
	CategoryTask:       11,
	CategoryToolchain:  11,
	CategoryDocs:       11,
	CategoryArchive:    11,
	CategoryFileSystem: 11,
	CategoryDaemon:     12,
	CategoryRuntime:    12,
	CategoryHistory:    12,
}

// CLIErrorAdapter turns a command error into a message on stderr, a log
// record and a process exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates an adapter writing to stderr. A nil logger
// means slog.Default.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr, exit: os.Exit}
}

// ExitCodeFor returns the process exit code for err; nil maps to 0.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if c, ok := AsClassified(err); ok {
		if code, ok := exitCodes[c.Category()]; ok {
			return code
		}
	}
	return 1
}

// FormatError renders err for the terminal. Without -v only the message
// is shown and internal errors are hidden.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	switch {
	case !ok:
		return "Error: " + err.Error()
	case a.verbose:
		return c.Error()
	case c.Category() == CategoryInternal:
		return "Internal error occurred (use -v for details)"
	default:
		return "Error: " + c.Message()
	}
}

// HandleError reports err and exits. It does nothing for nil.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	a.log(err)
	fmt.Fprintln(a.out, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

// log records unclassified and fatal errors, and every error with -v.
func (a *CLIErrorAdapter) log(err error) {
	c, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	if !a.verbose && !c.IsFatal() {
		return
	}
	level := slog.LevelError
	if c.Severity() == SeverityWarning {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{slog.String("category", string(c.Category()))}
	for _, k := range slices.Sorted(maps.Keys(c.Context())) {
		attrs = append(attrs, slog.Any(k, c.Context()[k]))
	}
	if c.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	a.logger.LogAttrs(context.Background(), level, c.Message(), attrs...)
}
