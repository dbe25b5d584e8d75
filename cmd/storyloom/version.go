package main

import (
	"fmt"
	"strings"

	"github.com/aldaque/storyloom"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of storyloom",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("storyloom version %s\n", strings.TrimSpace(storyloom.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
