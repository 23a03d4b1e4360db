package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/onotes"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of onotes",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("onotes version %s\n", strings.TrimSpace(onotes.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
