// Command mailcraft serves the email builder API and generates templates
// from the command line.
package main

import (
	"os"

	"github.com/livetemplate/mailcraft/cmd/mailcraft/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
