// Command rowkeeper reads and writes SQLite rows through record mappers.
package main

import (
	"os"

	"github.com/mesh-intelligence/rowkeeper/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
