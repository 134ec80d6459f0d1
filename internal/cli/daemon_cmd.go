package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/runaway-guard/runaway-guard/internal/supervisor"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the monitoring daemon",
	Long:  `Manage the runaway-daemon process.`,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runDaemonStatus,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

var daemonRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runDaemonStop(cmd, args); err != nil {
			return err
		}
		return runDaemonStart(cmd, args)
	},
}

func init() {
	daemonCmd.AddCommand(daemonRestartCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	info, err := GetDaemonStatus()
	if err != nil {
		return err
	}
	fmt.Print(formatDaemonStatus(info, time.Now()))
	return nil
}

func formatDaemonStatus(info *DaemonStatusInfo, now time.Time) string {
	var out string
	switch {
	case info.Reachable:
		out = styleSuccess.Render("Daemon is running.") + "\n"
	case info.SocketExists:
		out = styleWarning.Render("Daemon socket exists but the daemon is not responding.") + "\n"
	case info.Launch != nil || info.Unowned:
		out = styleWarning.Render("Daemon process is running but has no socket yet.") + "\n"
	default:
		return "Daemon is not running.\n"
	}

	out += label("Socket", info.Endpoint)
	if info.Launch != nil {
		out += label("PID", fmt.Sprintf("%d", info.Launch.PID))
		out += label("Binary", info.Launch.Binary)
		out += label("Uptime", now.Sub(info.Launch.StartedAt).Truncate(time.Second).String())
	} else if info.Unowned {
		out += label("Owner", "started outside runaway-guard")
	}
	if info.Reachable {
		out += label("Processes", fmt.Sprintf("%d", info.Processes))
		out += label("Alerts", fmt.Sprintf("%d", info.Alerts))
	}
	return out
}

func label(name, value string) string {
	return fmt.Sprintf("  %s %s\n", styleLabel.Render(fmt.Sprintf("%-10s", name+":")), styleValue.Render(value))
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	a, err := newApp(appOptions{Stderr: false, Preference: keepRunning{}})
	if err != nil {
		return err
	}

	result := make(chan supervisor.State, 1)
	a.sup.OnNotice(func(n supervisor.Notice) {
		sc, ok := n.(supervisor.StateChanged)
		if !ok || (sc.State != supervisor.StateRunning && sc.State != supervisor.StateFailed) {
			return
		}
		select {
		case result <- sc.State:
		default:
		}
	})

	fmt.Print("Starting daemon...")
	a.start()
	defer a.stop()

	select {
	case st := <-result:
		if st == supervisor.StateFailed {
			fmt.Println()
			return fmt.Errorf("daemon failed to start: %s", a.sup.LastError())
		}
	case <-time.After(supervisor.StartupTimeout + probeTimeout):
		fmt.Println()
		return fmt.Errorf("daemon did not become ready within %s", supervisor.StartupTimeout)
	}

	fmt.Println(" " + styleSuccess.Render("running") + ".")
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	info, err := GetDaemonStatus()
	if err != nil {
		return err
	}

	if info.Launch == nil {
		if info.Unowned {
			return fmt.Errorf("daemon was not started by runaway-guard; stop it with your service manager")
		}
		fmt.Println("Daemon is not running.")
		return nil
	}

	if err := stopLaunchedDaemon(info.Launch); err != nil {
		return err
	}
	fmt.Println("Daemon stopped.")
	return nil
}
