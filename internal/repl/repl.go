// Package repl is the interactive development harness: mock selection-context
// presets, the full planning pipeline, and an execution stub that only prints
// what the host executor would be asked to do.
package repl

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"reaperbridge/internal/bridge"
	"reaperbridge/internal/history"
	"reaperbridge/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Planner      model.Planner
	HistoryLimit int
}

func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(initialModel(ctx, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// buildRequest wraps the current mock context and an optional forced target
// into the same request shape the bridge boundary accepts.
func buildRequest(command string, sc model.SelectionContext, target model.Target) (model.Request, error) {
	rawCtx, err := json.Marshal(sc)
	if err != nil {
		return model.Request{}, err
	}
	return model.Request{
		Cmd:          command,
		Ctx:          rawCtx,
		ForcedTarget: string(target),
	}, nil
}

// renderExecution prints what the host executor would receive. Dev harness
// only; real execution happens host-side after confirmation.
func renderExecution(calls []model.ToolCall, sc model.SelectionContext) string {
	timeText := "no"
	if sc.TimeSelection != nil {
		timeText = "yes"
	}
	lines := []string{fmt.Sprintf("EXECUTION CONTEXT: items=%d tracks=%d time_selection=%s",
		len(sc.SelectedClips), len(sc.SelectedTracks), timeText)}
	for _, call := range calls {
		lines = append(lines, "EXECUTE "+call.Name+"("+formatArgs(call.Args)+")")
	}
	return strings.Join(lines, "\n")
}

func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, args[key]))
	}
	return strings.Join(parts, ", ")
}

func formatHistory(h *history.History) string {
	entries := h.Entries()
	if len(entries) == 0 {
		return "No commands yet."
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		suffix := ""
		if len(entry.ToolCalls) > 0 {
			suffix = fmt.Sprintf(" (%d tool call(s))", len(entry.ToolCalls))
		}
		lines = append(lines, entry.Timestamp.Format("15:04:05")+" "+entry.Command+suffix)
	}
	return strings.Join(lines, "\n")
}

// processCommand runs one command through the bridge pipeline.
func processCommand(ctx context.Context, planner model.Planner, command string, sc model.SelectionContext, target model.Target) model.Response {
	req, err := buildRequest(command, sc, target)
	if err != nil {
		message := "Input error: " + err.Error()
		return model.Response{Error: &message, ToolCalls: []model.ToolCall{}}
	}
	return bridge.Process(ctx, planner, req)
}
