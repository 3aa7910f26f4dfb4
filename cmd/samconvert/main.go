// Package main provides the samconvert CLI.
package main

import (
	"os"

	"github.com/lawrenceadams/sam-converter/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
