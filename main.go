// resin is the command-line client for the resin.io SDK.
package main

import (
	"fmt"
	"os"

	"resin-sdk-go/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
