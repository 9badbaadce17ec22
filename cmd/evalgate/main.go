package main

import (
	"os"

	"github.com/Parkside-Labs/evalgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
