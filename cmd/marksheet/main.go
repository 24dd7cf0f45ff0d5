// Command marksheet analyses student marksheets from the command line.
package main

import (
	"os"

	"github.com/spektr-org/marksheet/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
