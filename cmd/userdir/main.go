package main

import (
	"fmt"
	"os"

	"userdir/internal/cli"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	root := cli.NewRootCmd(version, buildDate)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
