package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/tradewit/internal/cli"
)

func main() {
	// .env is optional; TRADEWIT_* variables may also come from the shell.
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
