package main

import (
	"os"

	"github.com/seybold/bankdesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
