package main

import (
	"github.com/spf13/cobra"
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List the cached store directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		refresh, _ := cmd.Flags().GetBool("refresh")
		return withApp(cmd, func(a *app) error {
			return a.orchestrator.ListStores(cmd.Context(), refresh)
		})
	},
}

func init() {
	storesCmd.Flags().Bool("refresh", false, "download the directory before listing")
	rootCmd.AddCommand(storesCmd)
}
