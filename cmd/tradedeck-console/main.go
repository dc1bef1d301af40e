package main

import (
	"fmt"
	"os"

	"tradedeck-console/internal/cli"
	"tradedeck-console/internal/config"
	"tradedeck-console/internal/logging"
)

func main() {
	cfgFile := ""
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			cfgFile = os.Args[i+1]
		}
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	for _, arg := range os.Args {
		if arg == "--debug" {
			cfg.Log.Level = "debug"
		}
	}

	logger := logging.NewLogger(cfg.Log)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
