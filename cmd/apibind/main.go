// Command apibind generates link-time bound call sites for annotated Go
// interfaces.
package main

import (
	"os"

	"github.com/hvlabs/apibind/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
