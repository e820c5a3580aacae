package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hueshift/hueshift/pkg/health"
	"github.com/hueshift/hueshift/pkg/lock"
	"github.com/hueshift/hueshift/pkg/proxy"
	"github.com/hueshift/hueshift/pkg/runtime"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Exit codes, one per failure class, so wrapper scripts can branch
// without parsing output.
const (
	exitOK         = 0
	exitGeneral    = 1
	exitProxyParse = 2
	exitLaunch     = 3
	exitHealth     = 4
	exitReload     = 5
	exitLockHeld   = 6
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a deployment failure to its exit code.
func exitCode(err error) int {
	var parseErr *proxy.ParseError
	var launchErr *runtime.LaunchError
	var healthErr *health.TimeoutError
	var reloadErr *proxy.ReloadError

	switch {
	case errors.As(err, &parseErr):
		return exitProxyParse
	case errors.As(err, &launchErr):
		return exitLaunch
	case errors.As(err, &healthErr):
		return exitHealth
	case errors.As(err, &reloadErr):
		return exitReload
	case errors.Is(err, lock.ErrHeld):
		return exitLockHeld
	}
	return exitGeneral
}

var rootCmd = &cobra.Command{
	Use:   "hueshift",
	Short: "hueshift - Zero-downtime blue-green deployments behind a reverse proxy",
	Long: `hueshift deploys a single service with the blue-green pattern:
the new version launches on the inactive port, is health checked, and
only then does the reverse proxy switch traffic to it. The old instance
is removed after the switch. A failed deployment rolls back and leaves
the running version untouched.

All state lives in the proxy config file and the container runtime;
hueshift keeps nothing between runs.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"hueshift version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	// Add subcommands
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hueshift version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime)
	},
}
