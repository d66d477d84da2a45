// gstsentinel is the command-line interface for the GST compliance risk
// assessment engine.
package main

import (
	"os"

	"github.com/complyhub/gst-sentinel/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
