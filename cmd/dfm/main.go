// Package main provides dfm, a dual-pane file manager shell with
// persistent state.
package main

import (
	"os"

	"github.com/okvist/dfm/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdout, os.Stderr, os.Args, os.Environ()))
}
