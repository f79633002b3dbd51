// ABOUTME: CLI commands for attachments and table backups.
// ABOUTME: attach copies a file next to the tables; backups lists snapshots.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/spf13/cobra"
)

var backupsShow string

var attachCmd = &cobra.Command{
	Use:   "attach <table> <date> <label> <column> <file>",
	Short: "Attach a lab PDF or test photo to a record",
	Long: `Copy a file into the data directory and store its path in an attachment
column of the record. The record is created if it does not exist.

ATTACHMENT COLUMNS:

  blood   pdf_file
  sport   cooper_photo, run5k_photo, pushups_photo, plank_photo,
          burpee_photo, vo2max_photo

EXAMPLES:

  plantfit attach blood 2024-03-03 "Baseline (Omnivor)" pdf_file ~/labs.pdf
  plantfit attach sport 2024-03-02 Cooper cooper_photo watch.jpg`,
	Args: cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseTableKind(args[0])
		if err != nil {
			return err
		}
		key, err := parseKey(args[1], args[2])
		if err != nil {
			return err
		}

		f, err := os.Open(args[4])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		path, err := store.SaveAttachment(kind, key, args[3], filepath.Ext(args[4]), f)
		if err != nil {
			return fmt.Errorf("failed to attach file: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Attached %s to %s %s", path, models.TableNames[kind], key))
		return nil
	},
}

var backupsCmd = &cobra.Command{
	Use:   "backups <table>",
	Short: "List table backups",
	Long: `List the backup snapshots of a table, oldest first.

A snapshot is written after every change to a table. Use --show with a
snapshot name to print its rows.

EXAMPLES:

  plantfit backups daily
  plantfit backups daily --show daily_log_20240301_101112`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseTableKind(args[0])
		if err != nil {
			return err
		}
		bs, err := store.Backups(kind)
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(bs) == 0 {
			fmt.Fprintln(out, "No backups found.")
			return nil
		}

		if backupsShow != "" {
			for _, b := range bs {
				if b.Name != backupsShow {
					continue
				}
				f, err := store.ReadBackup(b)
				if err != nil {
					return fmt.Errorf("failed to read backup: %w", err)
				}
				if f.Empty() {
					fmt.Fprintln(out, "Backup is empty.")
					return nil
				}
				renderTable(out, f.Header, f.Rows, nil)
				return nil
			}
			return fmt.Errorf("no backup named %q", backupsShow)
		}

		rows := make([][]string, 0, len(bs))
		for _, b := range bs {
			f, err := store.ReadBackup(b)
			if err != nil {
				return fmt.Errorf("failed to read backup %s: %w", b.Name, err)
			}
			rows = append(rows, []string{b.Name, b.CreatedAt.Format("2006-01-02 15:04:05"), fmt.Sprint(len(f.Rows))})
		}
		renderTable(out, []string{"name", "created", "rows"}, rows, map[int]bool{2: true})
		return nil
	},
}

func init() {
	backupsCmd.Flags().StringVar(&backupsShow, "show", "", "print the rows of one backup")
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(backupsCmd)
}
