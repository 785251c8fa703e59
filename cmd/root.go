package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:     "gateway",
	Short:   "Local HTTP translation gateway fronting an OpenAI-style chat API",
	Long:    "gateway accepts GET /?text=... requests from a text-extraction client, translates each through a configured chat-completion endpoint, and maintains per-client context, a term glossary, and regex substitutions.",
	Version: version,
}

// Execute runs the root command, exiting the process with status 1 on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.ini", "path to the configuration file")
	rootCmd.AddCommand(serveCmd)
}
