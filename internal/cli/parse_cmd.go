package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"reaperbridge/internal/parser"

	"github.com/spf13/cobra"
)

var parseFlags struct {
	Clips    bool
	Tracks   bool
	Time     bool
	Examples bool
}

var parseCmd = &cobra.Command{
	Use:   "parse [command]",
	Short: "Parse a command with the offline regex front end (no planner call)",
	Long: `parse maps a fixed set of phrasings straight to tool actions without
invoking the external planner. Target selection follows a fixed priority:
time selection, then selected clips, then selected tracks.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseFlags.Clips, "clips", false, "pretend clips are selected")
	parseCmd.Flags().BoolVar(&parseFlags.Tracks, "tracks", false, "pretend tracks are selected")
	parseCmd.Flags().BoolVar(&parseFlags.Time, "time", false, "pretend a time selection exists")
	parseCmd.Flags().BoolVar(&parseFlags.Examples, "examples", false, "list supported phrasings and exit")
}

func runParse(_ *cobra.Command, args []string) error {
	if parseFlags.Examples {
		for _, example := range parser.SupportedExamples {
			fmt.Println(example)
		}
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("parse requires a command argument (or --examples)")
	}

	tc := parser.TargetContext{
		HasTimeSelection: parseFlags.Time,
		HasSelectedClips: parseFlags.Clips,
		HasSelectedTracks: parseFlags.Tracks,
	}
	actions, err := parser.Parse(args[0], tc)
	if err != nil {
		exitWith(ExitGenericError, "ERROR: "+err.Error())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(actions)
}
