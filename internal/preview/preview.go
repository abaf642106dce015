// Package preview renders a validated plan as human-readable text. Pure and
// deterministic: the same plan and context always produce identical bytes.
package preview

import (
	"fmt"
	"math"
	"strings"

	"reaperbridge/internal/model"
)

var clipScoped = map[string]bool{
	"fade_in":                true,
	"fade_out":               true,
	"cut_middle":             true,
	"crossfade":              true,
	"split_at_cursor":        true,
	"trim_to_time_selection": true,
}

var trackScoped = map[string]bool{
	"set_volume_delta": true,
	"set_volume_set":   true,
	"set_pan":          true,
	"add_fx":           true,
	"mute":             true,
	"unmute":           true,
	"solo":             true,
	"unsolo":           true,
}

// Render maps validated tool calls and the planning context to preview text,
// one line per call plus summary lines. No side effects, no external calls.
func Render(calls []model.ToolCall, sc model.SelectionContext) string {
	lines := make([]string, 0, len(calls)+3)
	hasClipOps := false
	hasTrackOps := false

	for _, call := range calls {
		lines = append(lines, describe(call))
		switch {
		case clipScoped[call.Name]:
			hasClipOps = true
		case trackScoped[call.Name]:
			hasTrackOps = true
		case call.Name == "duplicate":
			// Duplicate follows whichever selection is populated.
			if len(sc.SelectedClips) > 0 {
				hasClipOps = true
			} else {
				hasTrackOps = true
			}
		}
	}

	if hasClipOps {
		lines = append(lines, fmt.Sprintf("Applied to %d selected %s",
			len(sc.SelectedClips), pluralize("clip", len(sc.SelectedClips))))
	}
	if hasTrackOps {
		lines = append(lines, fmt.Sprintf("Applied to %d selected %s",
			len(sc.SelectedTracks), pluralize("track", len(sc.SelectedTracks))))
	}
	if span, ok := resolvedSpan(sc); ok {
		lines = append(lines, fmt.Sprintf("Range: %s to %s", clock(span.Start), clock(span.End)))
	}
	return strings.Join(lines, "\n")
}

func describe(call model.ToolCall) string {
	switch call.Name {
	case "fade_in":
		return "Fade in by " + duration(number(call.Args, "seconds"))
	case "fade_out":
		return "Fade out by " + duration(number(call.Args, "seconds"))
	case "cut_middle":
		return "Cut middle " + duration(number(call.Args, "seconds"))
	case "crossfade":
		return "Crossfade over " + duration(number(call.Args, "seconds"))
	case "trim_to_time_selection":
		return "Trim selected clips to time selection"
	case "split_at_cursor":
		return "Split at play cursor"
	case "duplicate":
		count := int(number(call.Args, "count"))
		return fmt.Sprintf("Duplicate %d %s", count, pluralize("time", count))
	case "set_volume_delta":
		if raw, ok := call.Args["db"]; ok {
			db, _ := raw.(float64)
			return fmt.Sprintf("Change volume by %+.1f dB", db)
		}
		percent := number(call.Args, "percent")
		return fmt.Sprintf("Change volume by %+.0f%% (gain x%.2f)", percent, 1+percent/100)
	case "set_volume_set":
		percent := number(call.Args, "percent")
		return fmt.Sprintf("Set volume to %.0f%% (gain x%.2f)", percent, percent/100)
	case "set_pan":
		pan := number(call.Args, "pan")
		switch {
		case pan < 0:
			return fmt.Sprintf("Set pan to %.0f left", -pan)
		case pan > 0:
			return fmt.Sprintf("Set pan to %.0f right", pan)
		}
		return "Set pan to center"
	case "add_fx":
		fxType, _ := call.Args["type"].(string)
		return fmt.Sprintf("Add %s FX", fxType)
	case "mute":
		return "Mute"
	case "unmute":
		return "Unmute"
	case "solo":
		return "Solo"
	case "unsolo":
		return "Unsolo"
	}
	return call.Name
}

// resolvedSpan prefers the clip span, falling back to a valid time selection.
func resolvedSpan(sc model.SelectionContext) (model.Range, bool) {
	if span, ok := sc.ClipSpan(); ok {
		return span, true
	}
	if sc.HasValidTimeSelection() {
		return *sc.TimeSelection, true
	}
	return model.Range{}, false
}

// duration renders seconds as milliseconds under one second, else seconds
// with one decimal.
func duration(seconds float64) string {
	if seconds < 1 {
		return fmt.Sprintf("%dms", int(math.Round(seconds*1000)))
	}
	return fmt.Sprintf("%.1fs", seconds)
}

// clock renders an absolute timeline position as mm:ss.mmm.
func clock(t float64) string {
	minutes := int(t) / 60
	return fmt.Sprintf("%02d:%06.3f", minutes, t-float64(60*minutes))
}

func number(args map[string]any, key string) float64 {
	switch n := args[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
