// Package gitctx reads repository metadata from git for report headers and
// matches input paths against glob patterns.
package gitctx
