package main

import (
	"os"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/cmd/sovereign/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
