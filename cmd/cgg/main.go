// Command cgg renders the content guide of a Minecraft add-on.
package main

import (
	"fmt"
	"os"

	"github.com/shapescape/content-guide/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
