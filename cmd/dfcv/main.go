package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/wharton/dfcv/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// ExitErrors already produced formatted output; only surface
		// errors that carry none of their own.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
