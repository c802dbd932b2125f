// Command exprtree renders, differentiates and inspects expression graphs.
package main

import (
	"os"

	"github.com/njchilds90/exprtree/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
