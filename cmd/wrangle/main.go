package main

import (
	"os"

	"github.com/spektr-org/wrangle/cmd/wrangle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
