package main

import (
	"os"

	"github.com/rustyeddy/atb/cmd/atb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
