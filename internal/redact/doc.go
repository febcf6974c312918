// Package redact removes secrets from review transcripts and saga event
// payloads before they are cached, logged, or posted to a pull request.
//
// Detection uses regex heuristics for credentials that tend to leak into
// agent transcripts: connection URLs with passwords, environment-style
// assignments, wallet key material, bearer tokens, JWTs, private key blocks,
// and provider tokens.
package redact
