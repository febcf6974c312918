// Package logging builds the zap loggers used by the CLI and loaders.
package logging
