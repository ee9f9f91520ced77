package main

import (
	"os"

	"github.com/funvibe/basekit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
