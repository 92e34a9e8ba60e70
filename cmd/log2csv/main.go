package main

import (
	"os"

	"github.com/ppiankov/log2csv/internal/cli"
)

func main() {
	os.Exit(cli.Report(os.Stderr, cli.Execute()))
}
