// Package docs owns the API documentation chain of a project: the javadoc
// options carried by a Task, generation through an external generator, and
// the ordered post-processing steps (colorize, render-source) that only run
// after generation succeeded.
//
// A Task moves through these states:
//
//	NotConfigured -> Configured -> Generated -> Colorized -> SourceRendered
//
// Any state after Configured may move to Failed, which is terminal.
package docs
