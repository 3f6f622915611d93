package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/xingming/internal/tables"
)

var (
	exportDir    string
	exportSQLite string
)

// tablesCmd represents the tables command
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Inspect and export the reference tables",
	Long: `The reference tables hold the stroke counts and elements of characters,
the 81 luck numbers, the three-talent (三才) verdicts and the recommended
stroke combinations per surname stroke count.

They are built in, or loaded from a YAML directory (--data-dir) or a
SQLite database (--data-sqlite).`,
}

var tablesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the loaded tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		t, err := tables.Load(cfg.Data)
		if err != nil {
			return err
		}

		s := t.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Source:        %s\n", s.Source)
		fmt.Fprintf(out, "Characters:    %d\n", s.Kanji)
		fmt.Fprintf(out, "Luck numbers:  %d\n", s.Luck)
		fmt.Fprintf(out, "Sancai:        %d\n", s.Sancai)
		fmt.Fprintf(out, "Combinations:  %d\n", s.Combinations)
		return nil
	},
}

var tablesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the loaded tables as YAML files or a SQLite database",
	Long: `Export writes the loaded tables so they can be edited and loaded back
with --data-dir or --data-sqlite.

Example:
  xingming tables export --dir ./data
  xingming tables export --sqlite tables.db
  xingming tables export --data-dir ./data --sqlite tables.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportDir == "" && exportSQLite == "" {
			return fmt.Errorf("nothing to export: pass --dir and/or --sqlite")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		t, err := tables.Load(cfg.Data)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if exportDir != "" {
			if err := tables.SaveDir(t, exportDir); err != nil {
				return fmt.Errorf("export YAML: %w", err)
			}
			fmt.Fprintf(out, "✓ Exported %s to %s\n", t.Source(), exportDir)
		}
		if exportSQLite != "" {
			if err := tables.SaveSQLite(t, exportSQLite); err != nil {
				return fmt.Errorf("export SQLite: %w", err)
			}
			fmt.Fprintf(out, "✓ Exported %s to %s\n", t.Source(), exportSQLite)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.AddCommand(tablesShowCmd)
	tablesCmd.AddCommand(tablesExportCmd)

	tablesExportCmd.Flags().StringVar(&exportDir, "dir", "", "write YAML files to this directory")
	tablesExportCmd.Flags().StringVar(&exportSQLite, "sqlite", "", "write a SQLite database to this path")
}
