package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"library-system/config"

	"github.com/spf13/cobra"
)

var (
	flagDataDir string
	flagAuditDB string
)

var rootCmd = &cobra.Command{
	Use:   "library-system",
	Short: "Library catalog and patron account management",
	Long: `library-system manages a small library's catalog and patron accounts:
which books exist, who has borrowed what, overdue fines, and historical
borrow records, persisted across runs in flat text snapshots.`,
	// Running with no subcommand starts the interactive session.
	Run: func(cmd *cobra.Command, args []string) {
		runShell(cmd, args)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory for books.txt / users.txt snapshots (overrides LIBRARY_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagAuditDB, "audit-db", "", "path of the SQLite circulation log (overrides LIBRARY_AUDIT_DB)")
}

// resolveConfig merges the environment configuration with command flags.
// Flags win; pointing --data-dir somewhere moves the audit DB along with it
// unless --audit-db pins it explicitly.
func resolveConfig() config.Config {
	cfg := config.LoadConfig()
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
		if flagAuditDB == "" {
			cfg.AuditDB = filepath.Join(flagDataDir, "audit.db")
		}
	}
	if flagAuditDB != "" {
		cfg.AuditDB = flagAuditDB
	}
	return cfg
}
