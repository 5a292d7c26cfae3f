package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				names, err := s.backend.Tables()
				if err != nil {
					return sysError(err)
				}
				if flags.jsonMode {
					if names == nil {
						names = []string{}
					}
					return writeJSON(cmd.OutOrStdout(), names)
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			})
		},
	}
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the resolved schema of a table",
		Long: `Describe prints the column metadata the mapper uses for a table. The
first use of a table introspects the database and caches the result as a
descriptor under the schema directory; later runs read the descriptor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				m, err := s.mapper(args[0])
				if err != nil {
					return err
				}
				schema, err := m.Schema()
				if err != nil {
					return sysError(err)
				}
				return writeSchema(cmd.OutOrStdout(), schema)
			})
		},
	}
}
