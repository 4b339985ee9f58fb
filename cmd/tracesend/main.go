package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/TraceStream/backend/internal/transport/datagram"
)

var defaultAddr = net.JoinHostPort("127.0.0.1", strconv.Itoa(datagram.DefaultPort))

var addrFlag string

var rootCmd = &cobra.Command{
	Use:   "tracesend",
	Short: "Send trace lines to a TraceStream server",
	Long: `Emits trace lines over UDP the way instrumented probes do: one line per
datagram, and the ===CLEAR=== token to reset the remote log.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", defaultAddr, "UDP address of the TraceStream server")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dial() (*datagram.Sender, error) {
	sender, err := datagram.Dial(addrFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", addrFlag, err)
	}
	return sender, nil
}
