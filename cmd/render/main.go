package main

import (
	"fmt"
	"os"

	"contactsheet/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := newRenderCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
