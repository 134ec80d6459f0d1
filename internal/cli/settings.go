package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/runaway-guard/runaway-guard/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show or change front-end settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE:  runSettingsShow,
}

var settingsLifecycleCmd = &cobra.Command{
	Use:   "lifecycle on|off",
	Short: "Choose whether quitting also stops the daemon",
	Long: `When lifecycle management is on, stopping or quitting Runaway Guard also
terminates a daemon it launched. When off, the daemon keeps running.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runSettingsLifecycle,
}

func init() {
	settingsCmd.AddCommand(settingsLifecycleCmd)
	settingsCmd.AddCommand(settingsShowCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	store, err := config.NewSettingsStore()
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to format settings: %w", err)
	}
	fmt.Println(styleHint.Render("# " + store.Path()))
	fmt.Print(string(data))
	return nil
}

func runSettingsLifecycle(cmd *cobra.Command, args []string) error {
	enabled, err := parseOnOff(args[0])
	if err != nil {
		return err
	}

	store, err := config.NewSettingsStore()
	if err != nil {
		return err
	}
	if err := store.SetManageDaemonLifecycle(enabled); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if enabled {
		fmt.Println("Daemon lifecycle management " + styleSuccess.Render("on") + ".")
	} else {
		fmt.Println("Daemon lifecycle management " + styleOff.Render("off") + ".")
	}
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
