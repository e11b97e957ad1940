package main

import (
	"os"

	"github.com/arthur-debert/instl/internal/cli"
	"github.com/arthur-debert/instl/internal/entrypoint"
)

func main() {
	os.Exit(entrypoint.Main(os.Args, cli.Entry))
}
