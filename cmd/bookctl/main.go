package main

import (
	"os"

	"github.com/akolanti/BookRAG/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
