package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowkeeper/internal/paths"
)

func newInitCmd() *cobra.Command {
	var sqlFile string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize rowkeeper configuration and storage",
		Long: `Create the configuration and data directories, write a default config.yaml
if none exists, and open the database. With --sql the given script is run,
typically the DDL creating the tables to map.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, sqlFile)
		},
	}
	cmd.Flags().StringVar(&sqlFile, "sql", "", "SQL script to run after opening the database")
	return cmd
}

func runInit(cmd *cobra.Command, sqlFile string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}
	wrote, err := writeConfigIfMissing(configDir, flags.dataDir)
	if err != nil {
		return sysError(err)
	}

	var script []byte
	if sqlFile != "" {
		if script, err = os.ReadFile(sqlFile); err != nil {
			return userError(fmt.Errorf("read sql script: %w", err))
		}
	}

	return withSession(cmd, func(s *session) error {
		if len(script) > 0 {
			if err := s.backend.Exec(string(script)); err != nil {
				return userError(err)
			}
		}
		out := cmd.OutOrStdout()
		if wrote {
			fmt.Fprintf(out, "wrote %s/%s\n", configDir, configFileExt)
		}
		fmt.Fprintf(out, "initialized %s\n", s.dataDir)
		return nil
	})
}
