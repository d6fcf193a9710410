// Command sdc is the driver of the go-sdc semantic front-end.
package main

import (
	"os"

	"github.com/cwbudde/go-sdc/cmd/sdc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
