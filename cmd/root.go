package cmd

import (
	"github.com/spf13/cobra"
)

func Run() error {
	rootCmd := &cobra.Command{
		Use:   "sleepslo",
		Short: "Sleep reliability tracking over SMS",
	}
	var logLevel string
	var logFormat string
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "v", "info", "Logger log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Logger logs format (text, json)")

	serverCmd := buildServerCmd(&logLevel, &logFormat)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(buildParseCmd())
	return rootCmd.Execute()
}
