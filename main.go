package main

import (
	"os"

	"github.com/adalundhe/courseaxis/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
