package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(lineCmd)
}

var lineCmd = &cobra.Command{
	Use:   "line <text>...",
	Short: "Send each argument as one trace line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLine,
}

func runLine(cmd *cobra.Command, args []string) error {
	sender, err := dial()
	if err != nil {
		return err
	}
	defer sender.Close()

	for _, line := range args {
		if err := sender.Send(line); err != nil {
			return err
		}
	}
	return nil
}
