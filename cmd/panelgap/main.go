package main

import (
	"os"

	"github.com/dshills/panelgap/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
