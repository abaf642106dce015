package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes. The bridge command signals plan failure through the exit code
// as well as the response body, so host scripts can branch without parsing.
const (
	ExitSuccess       = 0
	ExitGenericError  = 1
	ExitPlanRejected  = 2
	ExitConfigInvalid = 3
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	Verbose bool
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "reaperbridge",
	Short: "Natural-language command bridge for REAPER editing sessions",
	Long:  "reaperbridge turns a spoken or typed editing command plus the current selection context into a validated, previewable list of editor tool calls.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Verbose, "verbose", false, "log request/response details to stderr")

	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(speechCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns an error; exit code is set by RunE.
func Execute() error {
	return rootCmd.Execute()
}

// exitWith prints message to stderr and exits with code.
func exitWith(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
