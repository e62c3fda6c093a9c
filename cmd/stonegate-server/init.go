package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollowcube/stonegate/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(configFile); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", configFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
