// Package errors provides the classified error primitives used across jbuild.
//
// A ClassifiedError carries a category, a severity and a retry strategy in
// addition to its message and cause. Each category has a default severity
// and retry strategy, and decides how far a failure propagates: structural
// categories (config, project, lifecycle) abort the whole run, the others
// are isolated to the failing project's task chain.
//
//	err := errors.DocsError("javadoc failed").
//		WithProject(name).
//		WithTask("javadoc").
//		WithCause(runErr).
//		Build()
package errors
