package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/TraceStream/backend/internal/transport/datagram"
)

var pipeClearFirst bool

func init() {
	pipeCmd.Flags().BoolVar(&pipeClearFirst, "clear", false, "Reset the remote log before sending")
	rootCmd.AddCommand(pipeCmd)
}

var pipeCmd = &cobra.Command{
	Use:   "pipe",
	Short: "Send every line read from stdin",
	Long: `Reads stdin line by line and sends each line as one datagram, so the
output of any command can be watched live:

  strace -f ./app 2>&1 | tracesend pipe --clear`,
	Args: cobra.NoArgs,
	RunE: runPipe,
}

func runPipe(cmd *cobra.Command, args []string) error {
	sender, err := dial()
	if err != nil {
		return err
	}
	defer sender.Close()

	if pipeClearFirst {
		if err := sender.Clear(); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 4096), datagram.DefaultReadBuffer)

	sent := 0
	for scanner.Scan() {
		if err := sender.Send(scanner.Text()); err != nil {
			return err
		}
		sent++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input after %d lines: %w", sent, err)
	}
	return nil
}
