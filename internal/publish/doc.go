// Package publish registers the publication chain of a project (sources and
// javadoc jars, POM, signatures, upload) and implements the Maven repository
// side of it: target selection, credentials, signing, checksums and upload.
package publish
