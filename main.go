package main

import (
	"os"

	"github.com/ConanSherry4869/voltage-control/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
