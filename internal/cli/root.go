// Package cli implements the rowkeeper command-line interface: a thin cobra
// layer over the table mappers.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowkeeper/pkg/rowkeeper"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
	identity  string
}

var flags rootFlags

// NewRootCmd creates the top-level "rowkeeper" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}

	root := &cobra.Command{
		Use:     "rowkeeper",
		Short:   "Map SQLite rows to records with lifecycle behaviors",
		Long:    "rowkeeper reads and writes rows of SQLite tables through record mappers,\nrunning the behaviors configured per table (audit stamps, slugs, UUID keys).",
		Version: rowkeeper.Version,
		// Errors are printed once by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: .rowkeeper)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .rowkeeper-db)")
	pf.BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")
	pf.StringVar(&flags.identity, "identity", "", "identity recorded by audit-stamp behaviors")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newTablesCmd(),
		newDescribeCmd(),
		newGetCmd(),
		newListCmd(),
		newInsertCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
	)
	return root
}

// Execute runs the command line args and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exitError carries the exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by the invocation.
func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// sysError marks err as an environment or storage failure.
func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Unmarked errors come from cobra argument and flag parsing.
	return exitUserError
}
