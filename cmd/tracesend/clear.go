package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(clearCmd)
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the remote trace log",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	sender, err := dial()
	if err != nil {
		return err
	}
	defer sender.Close()

	return sender.Clear()
}
