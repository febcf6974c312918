// Package cache stores per-document extraction results on disk.
//
// Keys are derived by the extractor from its grammar fingerprint and the
// document's name and text, so editing a transcript or changing the reviewer
// set invalidates the entry. Each entry carries a creation time; entries older
// than the configured TTL are treated as misses and removed.
//
// The default directory is $XDG_CACHE_HOME/panelgap (or the OS-appropriate
// equivalent). Transcripts are redacted before extraction, so cached values
// never hold raw secrets.
package cache
