package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/appclacks/sleepslo/pkg/sleep"
	"github.com/spf13/cobra"
)

func buildParseCmd() *cobra.Command {
	var maxMinutes int
	parseCmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Parses a sleep duration reply without storing it",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			report, err := sleep.Parse(strings.Join(args, " "), maxMinutes)
			if err != nil {
				var failure *sleep.ParseFailure
				if errors.As(err, &failure) {
					fmt.Fprintf(os.Stderr, "could not parse: %s\n", failure.Reason)
				} else {
					fmt.Fprintln(os.Stderr, err.Error())
				}
				os.Exit(1)
			}
			fmt.Printf("minutes:    %d\n", report.Minutes)
			fmt.Printf("hours:      %s\n", sleep.FormatHours(report.Minutes))
			fmt.Printf("normalized: %s\n", report.Normalized)
			fmt.Printf("method:     %s\n", report.Method)
		},
	}
	parseCmd.Flags().IntVar(&maxMinutes, "max-minutes", sleep.DefaultMaxMinutes, "Longest accepted duration in minutes")
	return parseCmd
}
