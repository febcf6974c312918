package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/panelgap/internal/review"
)

func TestMarkdownWriter_Empty(t *testing.T) {
	report := review.BuildReport(review.NewReconciler(nil), review.Run{Inputs: review.InputInfo{Mode: "analyze"}})

	var buf bytes.Buffer
	w := &MarkdownWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, CommentMarker) {
		t.Error("Output should start with the comment marker")
	}
	if !strings.Contains(out, "## Panel Gap Report") {
		t.Error("Output should contain heading")
	}
	if !strings.Contains(out, "| **Total** | **0** |") {
		t.Error("Output should show zero total")
	}
	if !strings.Contains(out, "No gaps") {
		t.Error("Output should say no gaps")
	}
	if strings.Contains(out, "<details>") {
		t.Error("Empty report should have no collapsible sections")
	}
}

func TestMarkdownWriter_WithGaps(t *testing.T) {
	var buf bytes.Buffer
	w := &MarkdownWriter{}
	if err := w.Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	checks := []string{
		"Gaps: **2**",
		"| CRITICAL | 1 |",
		"| HIGH | 1 |",
		"<summary>:no_entry: CRITICAL (1)</summary>",
		"- **Rook**: frozen flag ignored in Transfer",
		"  - Expected rules: `NO_FROZEN_CHECK`",
		"  - New rule needed (no mapping found)",
		"- Verify these rules are implemented: `NO_FROZEN_CHECK`",
		"- Investigate 1 issues that may need new rules",
	}
	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Errorf("Output missing %q", c)
		}
	}
	if strings.Index(out, "CRITICAL (1)") > strings.Index(out, "HIGH (1)") {
		t.Error("CRITICAL section should come before HIGH")
	}
}

func TestMdEscape(t *testing.T) {
	got := mdEscape("a | b <script>\nnext")
	want := `a \| b &lt;script&gt; next`
	if got != want {
		t.Errorf("mdEscape = %q, want %q", got, want)
	}
}

func TestMdSeverityIcon(t *testing.T) {
	tests := []struct {
		sev  review.Severity
		want string
	}{
		{review.SeverityCritical, ":no_entry:"},
		{review.SeverityHigh, ":red_circle:"},
		{review.SeverityMedium, ":orange_circle:"},
		{review.SeverityLow, ":yellow_circle:"},
		{review.SeverityUnknown, ":white_circle:"},
	}
	for _, tt := range tests {
		if got := mdSeverityIcon(tt.sev); got != tt.want {
			t.Errorf("mdSeverityIcon(%q) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}
