package cmd

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"gaspos.GO/config"
)

var rootCmd = &cobra.Command{
	Use:   "gaspos",
	Short: "Gas cylinder POS: inventory ledger and settlement engine",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if config.AppConfig == nil {
			config.LoadAppConfig()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		figure.NewFigure("GasPOS", "", true).Print()
		fmt.Println()
		cmd.Help()
	},
}

// Execute runs the CLI. Custom commands registered via Register are attached first.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
