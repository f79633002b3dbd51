// ABOUTME: CLI command for exporting all tables.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportTable  string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export all tables",
	Long: `Export the four tables in various formats.

FORMATS:

  json       Full JSON export (suitable for 'plantfit restore')
  yaml       YAML export (human-readable)
  markdown   Markdown tables (for documentation/sharing)

The daily log is exported with derived metrics. Empty values are left out.

OPTIONS:

  --output, -o   Write to file instead of stdout
  --table, -t    Only this table (markdown only)
  --since        Only rows since this date (markdown only, YYYY-MM-DD)

EXAMPLES:

  plantfit export json                         # Export all data as JSON
  plantfit export json -o backup.json          # Save to file
  plantfit export yaml                         # Export as YAML
  plantfit export markdown --table blood       # Lab results as Markdown
  plantfit export markdown --since 2024-02-01  # Recent rows of every table`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = store.ExportJSON()
		case "yaml":
			data, err = store.ExportYAML()
		case "markdown", "md":
			var kind *models.TableKind
			if exportTable != "" {
				k, err := models.ParseTableKind(exportTable)
				if err != nil {
					return err
				}
				kind = &k
			}
			var since *time.Time
			if exportSince != "" {
				t, err := schema.ParseDate(exportSince)
				if err != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			md, mdErr := store.ExportMarkdown(kind, since)
			data, err = []byte(md), mdErr
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Exported to %s", exportOutput))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportTable, "table", "t", "", "only this table (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only rows since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
}
