package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/counsel0/counsel/internal/i18n"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(*cobra.Command, []string) {
			fmt.Println(i18n.Sprintf("app.version", AppVersion))
			fmt.Printf("Build: %s\n", BuildTime)
			fmt.Printf("Commit: %s\n", GitCommit)
		},
	}
}
