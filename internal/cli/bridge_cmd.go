package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"reaperbridge/internal/bridge"
	"reaperbridge/internal/config"
	"reaperbridge/internal/gemini"
	"reaperbridge/internal/model"

	"github.com/spf13/cobra"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge [input.json output.json]",
	Short: "Plan one command: request JSON in, response JSON out",
	Long: `bridge runs a single command through the planning pipeline.

With no arguments it reads the request object from stdin and writes the
response object to stdout. With exactly two arguments it reads the request
from the first file and writes the response to the second. The process exits
zero iff the response's "ok" field is true.`,
	Args: cobra.ArbitraryArgs,
	RunE: runBridge,
}

func runBridge(cmd *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		writeResponse(os.Stdout, usageErrorResponse())
		os.Exit(ExitGenericError)
	}

	var (
		in  io.Reader = os.Stdin
		out io.Writer = os.Stdout
	)
	outPath := ""
	if len(args) == 2 {
		f, err := os.Open(args[0])
		if err != nil {
			writeResponse(os.Stdout, inputErrorResponse("cannot read input file: "+err.Error()))
			os.Exit(ExitGenericError)
		}
		defer f.Close()
		in = f
		outPath = args[1]
	}

	resp := runBridgeRequest(cmd, in)

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			exitWith(ExitGenericError, "ERROR: cannot write output file: "+err.Error())
		}
		writeResponse(f, resp)
		if err := f.Close(); err != nil {
			exitWith(ExitGenericError, "ERROR: cannot write output file: "+err.Error())
		}
	} else {
		writeResponse(out, resp)
	}

	if !resp.OK {
		os.Exit(ExitPlanRejected)
	}
	return nil
}

func runBridgeRequest(cmd *cobra.Command, in io.Reader) model.Response {
	data, err := io.ReadAll(in)
	if err != nil {
		return inputErrorResponse("cannot read request: " + err.Error())
	}

	var req model.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return inputErrorResponse("request must be a JSON object.")
	}

	cfg, err := config.Load()
	if err != nil {
		return inputErrorResponse("configuration: " + err.Error())
	}

	planner := newPlanner(cfg)
	resp := bridge.Process(cmd.Context(), planner, req)
	if globalFlags.Verbose {
		fmt.Fprintf(os.Stderr, "bridge: ok=%v needs_clarification=%v tool_calls=%d\n",
			resp.OK, resp.NeedsClarification, len(resp.ToolCalls))
	}
	return resp
}

func newPlanner(cfg config.Config) *gemini.Client {
	client := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	if cfg.Gemini.BaseURL != "" {
		client.BaseURL = cfg.Gemini.BaseURL
	}
	return client
}

func writeResponse(w io.Writer, resp model.Response) {
	enc := json.NewEncoder(w)
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: encoding response:", err)
	}
}

func usageErrorResponse() model.Response {
	message := "Usage error: run with no arguments (stdin/stdout) or with exactly two file paths (input.json output.json)."
	return model.Response{Error: &message, Preview: "", ToolCalls: []model.ToolCall{}}
}

func inputErrorResponse(detail string) model.Response {
	message := "Input error: " + detail
	return model.Response{Error: &message, Preview: "", ToolCalls: []model.ToolCall{}}
}
