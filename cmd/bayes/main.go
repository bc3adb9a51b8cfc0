/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for the Bayes Engine. Answers posterior
queries over discrete Bayesian networks, compares and benchmarks the exact inference
engines and provides an interactive prompt.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/bayes-engine/cmd/bayes/commands"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

func main() {
	rootCmd := commands.NewRootCommand(version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
