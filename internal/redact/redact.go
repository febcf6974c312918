package redact

import (
	"regexp"
)

const placeholder = "[REDACTED]"

// rule replaces a secret shape. Rules with a keep group preserve the
// surrounding context so transcripts stay readable.
type rule struct {
	name string
	re   *regexp.Regexp
	// repl is the replacement template; empty means the whole match.
	repl string
}

// rules are regex heuristics for secrets that show up in review transcripts
// and saga events.
var rules = []rule{
	// Connection URLs with credentials: redis://:pw@host, rediss://user:pw@host, postgres://u:pw@h
	{"url-credentials", regexp.MustCompile(`(?i)\b((?:redis|rediss|postgres|postgresql|mongodb(?:\+srv)?|amqp|nats)://[^:/@\s]*:)[^@\s]+@`), "${1}" + placeholder + "@"},
	// Environment style secrets: REDIS_PASSWORD=..., GITHUB_TOKEN: ...
	{"env-secret", regexp.MustCompile(`(?i)\b([A-Z0-9_]*(?:PASSWORD|TOKEN|SECRET|API_KEY)[ \t]*[:=][ \t]*)["']?[^\s"']{6,}["']?`), "${1}" + placeholder},
	// Wallet JWK private exponent and primes
	{"jwk-private", regexp.MustCompile(`("(?:d|p|q|dp|dq|qi)"[ \t]*:[ \t]*")[A-Za-z0-9_-]{20,}"`), "${1}" + placeholder + `"`},
	// Bearer tokens
	{"bearer", regexp.MustCompile(`(?i)(Bearer\s+)[A-Za-z0-9._~+/-]{20,}=*`), "${1}" + placeholder},
	// JWTs
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`), ""},
	// Private key blocks, including the body when present
	{"private-key", regexp.MustCompile(`-----BEGIN\s+(?:[A-Z]+\s+)?PRIVATE KEY-----(?:[\s\S]*?-----END\s+(?:[A-Z]+\s+)?PRIVATE KEY-----)?`), ""},
	// Provider tokens
	{"github", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`), ""},
	{"anthropic", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`), ""},
	{"openai", regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`), ""},
	{"aws", regexp.MustCompile(`AKIA[0-9A-Z]{16}`), ""},
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	out, _ := Scrub(text)
	return out
}

// Scrub redacts text and reports how many secrets were replaced.
func Scrub(text string) (string, int) {
	n := 0
	for _, r := range rules {
		text = r.re.ReplaceAllStringFunc(text, func(match string) string {
			n++
			if r.repl == "" {
				return placeholder
			}
			return r.re.ReplaceAllString(match, r.repl)
		})
	}
	return text, n
}
