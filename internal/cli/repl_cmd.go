package cli

import (
	"fmt"
	"os"

	"reaperbridge/internal/config"
	"reaperbridge/internal/repl"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive development harness with mock selection contexts",
	RunE:  runRepl,
}

func runRepl(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("repl requires an interactive terminal; use 'reaperbridge bridge' for piped input")
	}

	cfg, err := config.Load()
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}

	return repl.Run(cmd.Context(), repl.Options{
		Planner:      newPlanner(cfg),
		HistoryLimit: cfg.HistoryLimit,
	})
}
