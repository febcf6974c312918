package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/panelgap/internal/review"
)

// SARIFWriter outputs gaps in SARIF v2.1.0 format. Each gap is one result
// whose rule is the first expected analyzer rule, or NEW_RULE_NEEDED.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *review.Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID     string           `json:"ruleId"`
	Level      string           `json:"level"`
	Message    sarifMessage     `json:"message"`
	Properties sarifResultProps `json:"properties"`
}

type sarifResultProps struct {
	Category      string   `json:"category"`
	Severity      string   `json:"severity"`
	ExpectedRules []string `json:"expectedRules"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

func buildSARIF(report *review.Report) sarifLog {
	results := []sarifResult{}
	rules := []sarifRule{}
	seen := make(map[string]bool)

	for _, g := range review.SortGaps(report.Gaps) {
		ruleID := gapRuleID(g)
		level := severityToLevel(g.Severity)
		if !seen[ruleID] {
			seen[ruleID] = true
			rules = append(rules, sarifRule{
				ID:               ruleID,
				Name:             ruleID,
				ShortDescription: sarifMessage{Text: ruleDescription(ruleID)},
				DefaultConfig:    sarifDefaultConfig{Level: level},
			})
		}
		results = append(results, sarifResult{
			RuleID:  ruleID,
			Level:   level,
			Message: sarifMessage{Text: fmt.Sprintf("%s: %s", g.Category, g.Description)},
			Properties: sarifResultProps{
				Category:      g.Category,
				Severity:      string(g.Severity),
				ExpectedRules: g.ExpectedRules,
			},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           review.ToolName,
						Version:        report.Version,
						InformationURI: "https://github.com/dshills/panelgap",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

// gapRuleID returns the first expected rule, or NEW_RULE_NEEDED.
func gapRuleID(g review.Gap) string {
	if len(g.ExpectedRules) == 0 {
		return review.NewRuleNeeded
	}
	return g.ExpectedRules[0]
}

func ruleDescription(id string) string {
	if id == review.NewRuleNeeded {
		return "Panel issue with no mapped analyzer rule"
	}
	return fmt.Sprintf("Panel issue expected to be reported by %s", id)
}

// severityToLevel maps gap severity to SARIF level.
func severityToLevel(s review.Severity) string {
	switch s {
	case review.SeverityCritical, review.SeverityHigh:
		return "error"
	case review.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
