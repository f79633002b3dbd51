// ABOUTME: CLI commands for importing CSV exports and restoring JSON backups.
// ABOUTME: CSV import maps source columns onto a table; restore replays an export.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/harperreed/plantfit/internal/importer"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/spf13/cobra"
)

var (
	importTable       string
	importMap         map[string]string
	importDelimiter   string
	importDecimal     string
	importOverwrite   bool
	importSaveMapping bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import rows from a CSV export",
	Long: `Import rows from a CSV file, for example a fitness tracker export.

Each --map pairs a table column with a column of the file (column=source).
The key columns (date and phase, or test_date and test_type) must be mapped.
Without --map the mapping saved with --save-mapping is used (daily log only).

Rows whose key already exists are skipped unless --overwrite is given. Rows
with an unreadable date or phase are skipped and counted; unreadable numbers
are stored as empty and counted.

FORMATS:

  Dates      2024-03-01, 01.03.2024, 03/01/2024 or RFC 3339
  Numbers    --decimal , reads 1.234,5 as 1234.5
  Encoding   UTF-8 (with or without BOM) or Windows-1252

EXAMPLES:

  plantfit import week.csv --map date=Datum --map phase=Phase \
      --map sleep_hours=Schlaf --map total_steps=Schritte --save-mapping
  plantfit import week.csv --delimiter ";" --decimal ","   # Reuse saved mapping
  plantfit import labs.csv --table blood --map test_date=Datum \
      --map test_type=Typ --map ferritin=Ferritin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseTableKind(importTable)
		if err != nil {
			return err
		}
		delimiter, err := parseSeparator("delimiter", importDelimiter)
		if err != nil {
			return err
		}
		decimal, err := parseSeparator("decimal", importDecimal)
		if err != nil {
			return err
		}

		mapping := models.ColumnMapping(importMap)
		if len(mapping) == 0 {
			if kind != models.KindDaily {
				return fmt.Errorf("%w: --map is required for %s", importer.ErrMissingMapping, models.TableNames[kind])
			}
			mapping, err = store.LoadMapping()
			if err != nil {
				return fmt.Errorf("failed to load mapping: %w", err)
			}
			if len(mapping) == 0 {
				return fmt.Errorf("%w: pass --map or save one with --save-mapping", importer.ErrMissingMapping)
			}
		}
		if importSaveMapping {
			if kind != models.KindDaily {
				return fmt.Errorf("--save-mapping only applies to the daily log")
			}
			if err := store.SaveMapping(mapping); err != nil {
				return fmt.Errorf("failed to save mapping: %w", err)
			}
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		rep, err := importer.Import(f, store, importer.Options{
			Kind:      kind,
			Mapping:   mapping,
			Delimiter: delimiter,
			Decimal:   decimal,
			Overwrite: importOverwrite,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		printReport(cmd.OutOrStdout(), args[0], rep)
		return nil
	},
}

// parseSeparator reads a one-character flag value. "tab" and \t mean a tab.
func parseSeparator(name, s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("--%s must be a single character, got %q", name, s)
	}
	return r, nil
}

func printReport(w io.Writer, source string, rep *importer.Report) {
	fmt.Fprintln(w, color.GreenString("✓ Imported %s: %d created, %d updated", source, rep.Created, rep.Updated))
	if n := rep.Skipped(); n > 0 {
		fmt.Fprintln(w, color.YellowString("! Skipped %d row(s): %d existing, %d bad date, %d bad label, %d empty, %d rejected",
			n, rep.SkippedExisting, rep.SkippedDate, rep.SkippedLabel, rep.SkippedEmpty, rep.Rejected))
	}
	if rep.InvalidNumbers > 0 {
		fmt.Fprintln(w, color.YellowString("! %d unreadable number(s) left out", rep.InvalidNumbers))
	}
	if len(rep.Dropped) > 0 {
		fmt.Fprintln(w, color.YellowString("! Ignored mapped column(s): %s", strings.Join(rep.Dropped, ", ")))
	}
	fmt.Fprintln(w, color.New(color.Faint).Sprintf("batch %s", rep.BatchID))
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file.json>",
	Short: "Restore data from a JSON export",
	Long: `Restore rows from a file written by 'plantfit export json'.

Every row is upserted by its key, so restoring the same file twice leaves
the tables unchanged. Derived columns in the file are ignored.

EXAMPLES:

  plantfit export json -o backup.json
  plantfit restore backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		n, err := store.ImportJSON(data)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Restored %d row(s) from %s", n, args[0]))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importTable, "table", "t", "daily", "target table")
	importCmd.Flags().StringToStringVarP(&importMap, "map", "m", nil, "column=source pairs")
	importCmd.Flags().StringVarP(&importDelimiter, "delimiter", "d", ",", "field delimiter")
	importCmd.Flags().StringVar(&importDecimal, "decimal", ".", "decimal separator (. or ,)")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "update rows whose key already exists")
	importCmd.Flags().BoolVar(&importSaveMapping, "save-mapping", false, "save the mapping for later imports and watch")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(restoreCmd)
}
