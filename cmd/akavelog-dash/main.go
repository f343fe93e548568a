package main

import (
	"os"

	"github.com/akave-ai/akavelog-dash/cmd/akavelog-dash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
