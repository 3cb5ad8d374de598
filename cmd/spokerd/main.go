package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/FoundationOfBabylone/secret-poker/internal/cli"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	// A .env file is optional; the environment alone is fine.
	_ = godotenv.Load()

	rootCmd := cli.NewRootCommand(fmt.Sprintf("%s (commit %s)", Version, GitCommit))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
