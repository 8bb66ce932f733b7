package main

import (
	"os"

	"github.com/mkamal/slicebom/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
