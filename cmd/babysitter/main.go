package main

import (
	"os"

	"github.com/MaTriXy/babysitter-sub001/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
