package main

import (
	"os"

	"github.com/leakshield/leakshield/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
