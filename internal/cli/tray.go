package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/runaway-guard/runaway-guard/internal/tray"
)

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run in the system tray",
	Long: `Run Runaway Guard as a system tray icon. The icon turns yellow while the
daemon reports alerts and red while it is unreachable.`,
	RunE: runTray,
}

func runTray(cmd *cobra.Command, args []string) error {
	a, err := newApp(appOptions{Stderr: true, Watch: true})
	if err != nil {
		return err
	}

	t := tray.New(a.sup, a.logger)
	t.Watch(a.client, a.sup)

	onStart := func() {
		a.start()

		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			a.logger.Info("Received signal, shutting down", zap.Stringer("signal", sig))
			tray.Quit()
		}()
	}

	// systray.Run must occupy the main goroutine on macOS.
	t.Run(onStart, a.stop)
	return nil
}
