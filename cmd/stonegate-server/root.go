// Package main wires a cobra root command the way firestige-Otus's
// cmd/root.go does: a persistent --config flag plus one "serve" subcommand
// that actually runs the process, instead of the teacher's bare
// flag.Parse()-driven main.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:     "stonegate-server",
	Short:   "A Minecraft 1.8 (protocol 47) compatible block-sandbox server",
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "config file path")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
