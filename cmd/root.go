package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig string
	flagCity   string
)

var rootCmd = &cobra.Command{
	Use:   "nowbrief",
	Short: "Personal daily brief dashboard",
	Long:  "nowbrief pulls weather, news, markets and currency rates into one terminal dashboard and writes a streaming AI briefing of your day.",
	RunE:  runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagCity, "city", "", "city for weather (overrides config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(marketsCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(askCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nowbrief %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
