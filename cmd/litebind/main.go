package main

import (
	"os"

	"github.com/connerohnesorge/litebind/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
