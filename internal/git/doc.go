// Package git reads the source revision of the build root. The revision is
// stamped into published POMs as scm.tag.
package git
