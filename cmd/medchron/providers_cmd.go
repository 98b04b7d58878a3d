package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"medchron/internal/llm"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the registered generation providers",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range llm.Providers() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}
