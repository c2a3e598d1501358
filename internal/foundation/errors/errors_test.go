package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessageIncludesProjectAndTask(t *testing.T) {
	err := DocsError("javadoc failed").
		WithProject("lattices").
		WithTask("javadoc").
		WithCause(errors.New("exit status 1")).
		Build()

	require.Equal(t, "[docs:lattices:javadoc] javadoc failed: exit status 1", err.Error())
	require.Equal(t, "[config] no projects", ConfigError("no projects").Build().Error())
}

func TestCategoryDefaults(t *testing.T) {
	tests := []struct {
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
		retry    RetryStrategy
	}{
		{ConfigError("x"), CategoryConfig, SeverityFatal, RetryNever},
		{ValidationError("x"), CategoryValidation, SeverityFatal, RetryNever},
		{ProjectError("x"), CategoryProject, SeverityFatal, RetryNever},
		{LifecycleError("x"), CategoryLifecycle, SeverityFatal, RetryNever},
		{DocsError("x"), CategoryDocs, SeverityError, RetryNever},
		{SigningError("x"), CategorySigning, SeverityError, RetryNever},
		{PublishError("x"), CategoryPublish, SeverityError, RetryNever},
		{NetworkError("x"), CategoryNetwork, SeverityError, RetryBackoff},
		{EventsError("x"), CategoryEvents, SeverityError, RetryBackoff},
		{InternalError("x"), CategoryInternal, SeverityFatal, RetryNever},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			err := tt.builder.Build()
			require.Equal(t, tt.category, err.Category())
			require.Equal(t, tt.severity, err.Severity())
			require.Equal(t, tt.retry, err.RetryStrategy())
		})
	}
}

func TestClassificationThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading: %w", ProjectError("duplicate project").WithProject("lattices").Build())

	require.True(t, IsClassified(err))
	require.True(t, HasCategory(err, CategoryProject))
	require.True(t, IsStructural(err))
	c, ok := AsClassified(err)
	require.True(t, ok)
	require.True(t, c.IsFatal())
	project, _ := c.Context().GetString(ContextProject)
	require.Equal(t, "lattices", project)

	require.False(t, IsClassified(errors.New("plain")))
	require.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	require.False(t, HasCategory(errors.New("plain"), CategoryInternal))
}

func TestProjectScopedCategories(t *testing.T) {
	for _, b := range []*ErrorBuilder{DocsError("x"), SigningError("x"), PublishError("x"), ToolchainError("x"), ArchiveError("x")} {
		require.False(t, b.Build().IsStructural(), b.Build().Category())
	}
	require.False(t, IsStructural(errors.New("plain")))
}

func TestSentinelComparison(t *testing.T) {
	sentinel := SigningError("signing key not configured").Build()
	err := sentinel.WithContext(ContextProject, "lattices")

	require.ErrorIs(t, err, sentinel)
	_, ok := sentinel.Context().Get(ContextProject)
	require.False(t, ok, "WithContext must not mutate the sentinel")
	require.NotErrorIs(t, SigningError("other").Build(), sentinel)
}

func TestBuilderOverrides(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError(cause, CategoryPublish, "upload failed").
		Warning().
		Retryable().
		WithContext("host", "repo.example.com").
		Build()

	require.Equal(t, SeverityWarning, err.Severity())
	require.True(t, err.CanRetry())
	require.ErrorIs(t, err, cause)
	require.False(t, ConfigError("x").Build().CanRetry())
}

func TestBuilderReuseDoesNotShareContext(t *testing.T) {
	b := DocsError("x").WithProject("a")
	first := b.Build()
	b.WithProject("b")
	second := b.Build()

	p1, _ := first.Context().GetString(ContextProject)
	p2, _ := second.Context().GetString(ContextProject)
	require.Equal(t, "a", p1)
	require.Equal(t, "b", p2)
}

func TestErrorContextMerge(t *testing.T) {
	a := ErrorContext{"key1": "value1", "shared": "original"}
	b := ErrorContext{"key2": 42, "shared": "overridden"}

	merged := a.Merge(b)

	v, _ := merged.GetString("key1")
	require.Equal(t, "value1", v)
	n, ok := merged.Get("key2")
	require.True(t, ok)
	require.Equal(t, 42, n)
	v, _ = merged.GetString("shared")
	require.Equal(t, "overridden", v)
	_, ok = merged.Get("missing")
	require.False(t, ok)
}
