package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/runaway-guard/runaway-guard/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", styleBrand.Render("Runaway Guard"), styleVersion.Render(buildinfo.Version))
		fmt.Printf("  Commit: %s (%s)\n", buildinfo.CommitHash, buildinfo.BuildDate)
		fmt.Printf("  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  Go: %s\n", runtime.Version())
	},
}
