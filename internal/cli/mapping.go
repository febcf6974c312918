package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/panelgap/internal/review"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect the keyword-to-rule mapping table",
}

var mappingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List keyword mappings in table order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rec, err := newReconciler(cfg)
		if err != nil {
			return err
		}
		entries := rec.Index().Entries()
		out := cmd.OutOrStdout()

		if cfg.Format == "json" {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%-28s %s\n", e.Keyword, strings.Join(e.Rules, ", "))
		}
		fmt.Fprintf(out, "\n%d keywords\n", len(entries))
		return nil
	},
}

var mappingLookupCmd = &cobra.Command{
	Use:   "lookup <description>...",
	Short: "Show the rules a panel issue description maps to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rec, err := newReconciler(cfg)
		if err != nil {
			return err
		}
		desc := strings.Join(args, " ")
		ix := rec.Index()
		out := cmd.OutOrStdout()

		rules := ix.Lookup(desc)
		if len(rules) == 0 {
			fmt.Fprintln(out, review.NewRuleNeeded)
			return nil
		}
		fmt.Fprintf(out, "Keywords: %s\n", strings.Join(ix.Keywords(desc), ", "))
		fmt.Fprintf(out, "Rules:    %s\n", strings.Join(rules, ", "))
		return nil
	},
}

func init() {
	mappingCmd.AddCommand(mappingListCmd)
	mappingCmd.AddCommand(mappingLookupCmd)
	for _, cmd := range []*cobra.Command{mappingListCmd, mappingLookupCmd} {
		cmd.Flags().StringVar(&flagMapping, "mapping", "", "Keyword-to-rule mapping pack (YAML or JSON)")
	}
	mappingListCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json)")
}
