package main

import (
	"os"

	"github.com/lugehorsam/postfix-spreadsheet/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args, os.Stdout, os.Stderr))
}
