// Package cli implements the runaway-guard CLI commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/runaway-guard/runaway-guard/internal/tui"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "runaway-guard",
	Short: "Watch for runaway processes",
	Long: `Runaway Guard supervises the runaway-daemon process monitor and shows
its process list, alerts and whitelist.

Run without arguments in a terminal to open the interactive UI.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(trayCmd)
	rootCmd.AddCommand(versionCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return runDaemonStatus(cmd, args)
	}
	return runTUI()
}

func runTUI() error {
	a, err := newApp(appOptions{Watch: true})
	if err != nil {
		return err
	}
	settings := a.settings
	a.start()
	defer a.stop()

	return tui.Run(a.client, a.sup, settings, a.settingsUpdates)
}
