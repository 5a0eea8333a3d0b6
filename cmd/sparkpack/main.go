package main

import (
	"os"

	"github.com/sdnasoft/sparkpack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
