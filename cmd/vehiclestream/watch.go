package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vehiclestream/internal/watch"
)

var (
	watchURL   string
	watchCount int
	watchLines bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the live vehicle stream",
	Long:  "watch connects to a stream server and renders the fleet as a live table. When STDOUT is not a terminal it prints one JSON line per snapshot instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watchLines || !term.IsTerminal(int(os.Stdout.Fd())) {
			return watch.PrintLines(ctx, watchURL, cmd.OutOrStdout(), watchCount)
		}
		return watch.Run(ctx, watchURL, watchCount)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "ws://localhost:8000/", "Stream URL")
	watchCmd.Flags().IntVar(&watchCount, "count", 0, "Stop after this many snapshots, 0 runs until interrupted")
	watchCmd.Flags().BoolVar(&watchLines, "lines", false, "Print JSON lines even on a terminal")
}
