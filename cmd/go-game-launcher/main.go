// Package main provides the go-game-launcher CLI entry point.
//
// go-game-launcher starts Terasology with the configured Java runtime,
// forwards the game's output into structured logs, reports when the game
// finished initialising, and classifies how it ended.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-game-launcher
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCommand()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var exitErr *gameExitError
	if errors.As(err, &exitErr) {
		return exitErr.status()
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "go-game-launcher",
		Short: "Launch and supervise a Terasology game process",
		Long: `go-game-launcher starts Terasology with a Java runtime, streams its output
into structured logs and reports when the game is ready and how it exited.

Examples:
  go-game-launcher launch --game-dir=/opt/terasology
  go-game-launcher launch --heap-max=4g --relaunch=3 --metrics=127.0.0.1:9100
  go-game-launcher print-cmd --game-dir=/opt/terasology --data-dir=~/.terasology`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLaunchCommand(),
		newPrintCmdCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the launcher version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "go-game-launcher %s\n", version)
		},
	}
}
