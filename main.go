// Command zordinals is the CLI entry point, mirroring the teacher's
// insc.go/cins.go shape: build the root cobra command in package cmd,
// run it, and translate any error into a non-zero exit status (spec
// §6.1).
package main

import (
	"fmt"
	"os"

	"github.com/zordinals/zordinals/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
