// Package sagastore reads expert panel results from Redis saga event streams.
//
// Each work packet has a stream keyed "<prefix><packet>". Panel completions
// are events whose event_type contains the configured event type and whose
// details field holds JSON of the form
//
//	{"approved": false, "issues": [{"severity": "HIGH", "expert": "Rook", "description": "..."}]}
//
// Issues read from the store are already structured and bypass text
// extraction.
package sagastore
