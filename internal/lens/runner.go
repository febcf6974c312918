package lens

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dshills/panelgap/internal/review"
)

// Runner invokes the analyzer CLI on a single source file.
type Runner struct {
	// Node is the node binary; defaults to "node".
	Node string
	// CLIPath is the analyzer's compiled entry point, e.g. dist/cli.js.
	CLIPath string
}

// AuditResult is the analyzer's verdict for one source file.
type AuditResult struct {
	Findings []review.Finding
	Summary  map[string]any
	Pass     bool
}

// Audit runs "node <cli> audit <file>" and parses its JSON output. A
// non-zero exit status is not an error as long as stdout holds a result,
// since the analyzer exits non-zero when findings exist.
func (r Runner) Audit(ctx context.Context, file string) (*AuditResult, error) {
	if r.CLIPath == "" {
		return nil, errors.New("analyzer CLI path not configured")
	}
	node := r.Node
	if node == "" {
		node = "node"
	}

	cmd := exec.CommandContext(ctx, node, r.CLIPath, "audit", file)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res, err := parseAudit(stdout.Bytes(), file)
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if runErr != nil {
			return nil, fmt.Errorf("analyzer failed: %w: %s", runErr, msg)
		}
		return nil, fmt.Errorf("analyzer output: %w: %s", err, msg)
	}
	return res, nil
}

func parseAudit(data []byte, file string) (*AuditResult, error) {
	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing analyzer output: %w", err)
	}
	res := &AuditResult{Findings: out.toFindings(filepath.Base(file))}
	if out.Pass != nil {
		res.Pass = *out.Pass
	}
	if len(out.Summary) > 0 {
		if err := json.Unmarshal(out.Summary, &res.Summary); err != nil {
			return nil, fmt.Errorf("parsing analyzer summary: %w", err)
		}
	}
	return res, nil
}
