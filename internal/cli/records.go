package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <key>",
		Short: "Show the row with the given primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				_, r, err := s.findByKey(args[0], args[1])
				if err != nil {
					return err
				}
				return writeRecord(cmd.OutOrStdout(), r)
			})
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table> [column=value...]",
		Short: "List rows with optional filters",
		Long: `List prints the rows of a table in primary key order. Filters are
column=value pairs and are ANDed together. Values are parsed as JSON when
possible (null matches NULL), otherwise taken as strings.

Example:
  rowkeeper list articles
  rowkeeper list articles creator_id=7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseAssignments(args[1:])
			if err != nil {
				return userError(err)
			}
			return withSession(cmd, func(s *session) error {
				m, err := s.mapper(args[0])
				if err != nil {
					return err
				}
				records, err := m.FindAll(filter).All()
				if err != nil {
					return operationError(err)
				}
				schema, err := m.Schema()
				if err != nil {
					return sysError(err)
				}
				return writeRecords(cmd.OutOrStdout(), schema, records)
			})
		},
	}
}

func newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <table> column=value...",
		Short: "Insert a row",
		Long: `Insert writes a new row from column=value pairs and prints it, including
the generated key and any columns set by the table's behaviors.

Example:
  rowkeeper insert articles name="Hello World"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(args[1:])
			if err != nil {
				return userError(err)
			}
			return withSession(cmd, func(s *session) error {
				m, err := s.mapper(args[0])
				if err != nil {
					return err
				}
				r, err := m.New()
				if err != nil {
					return sysError(err)
				}
				if err := assign(r, values); err != nil {
					return err
				}
				if err := m.Insert(r); err != nil {
					return operationError(err)
				}
				return writeRecord(cmd.OutOrStdout(), r)
			})
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <key> column=value...",
		Short: "Update columns of a row",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(args[2:])
			if err != nil {
				return userError(err)
			}
			return withSession(cmd, func(s *session) error {
				m, r, err := s.findByKey(args[0], args[1])
				if err != nil {
					return err
				}
				if err := assign(r, values); err != nil {
					return err
				}
				if err := m.Update(r); err != nil {
					return operationError(err)
				}
				return writeRecord(cmd.OutOrStdout(), r)
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <key>",
		Short: "Delete the row with the given primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				m, r, err := s.findByKey(args[0], args[1])
				if err != nil {
					return err
				}
				if err := m.Delete(r); err != nil {
					return operationError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

// findByKey loads the row of table keyed by key. A missing row is a user
// error wrapping types.ErrNotFound.
func (s *session) findByKey(table, key string) (types.Mapper, *types.Record, error) {
	m, err := s.mapper(table)
	if err != nil {
		return nil, nil, err
	}
	r, err := m.Find(parseValue(key))
	if err != nil {
		return nil, nil, operationError(err)
	}
	if r == nil {
		return nil, nil, userError(fmt.Errorf("%w: %s %s", types.ErrNotFound, table, key))
	}
	return m, r, nil
}

func assign(r *types.Record, values map[string]any) error {
	for col, v := range values {
		if err := r.Set(col, v); err != nil {
			return userError(err)
		}
	}
	return nil
}
