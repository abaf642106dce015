// Package parser is the offline regex front end. It resolves a fixed target
// priority (time selection, then clips, then tracks) instead of negotiating
// ambiguity, and covers only the literal command forms in SupportedExamples.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SupportedExamples is the literal command vocabulary, used for help output.
var SupportedExamples = []string{
	"fade in 500ms",
	"fade out 2s",
	"cut middle 1s",
	"trim to time selection",
	"split at cursor",
	"duplicate 4",
	"volume +3db",
	"volume -6db",
	"pan 30L",
	"pan 20R",
	"mute",
	"solo",
	"unmute",
	"unsolo",
	"add eq",
	"add compressor",
	"add reverb",
}

// Target names returned on parsed actions.
const (
	TargetTimeSelection  = "time_selection"
	TargetSelectedClips  = "selected_items"
	TargetSelectedTracks = "selected_tracks"
)

// TargetContext is the minimal selection knowledge the parser needs.
type TargetContext struct {
	HasTimeSelection bool
	HasSelectedClips bool
	HasSelectedTracks bool
}

// Action is one parsed operation.
type Action struct {
	Op     string         `json:"op"`
	Target string         `json:"target"`
	Params map[string]any `json:"params"`
}

var (
	timeRe = regexp.MustCompile(`(?P<num>\d+(?:\.\d+)?)\s*(?P<unit>ms|millisecond(?:s)?|s|sec(?:s)?|second(?:s)?)\b`)
	dbRe   = regexp.MustCompile(`(?P<db>[+-]?\d+(?:\.\d+)?)\s*db\b`)
	panRe  = regexp.MustCompile(`\bpan\s+(?P<num>\d+(?:\.\d+)?)\s*(?P<side>[lr])\b`)
	dupRe  = regexp.MustCompile(`\bduplicate\s+(?P<count>\d+)\b`)
	wsRe   = regexp.MustCompile(`\s+`)
)

// Parse turns a literal command into exactly one action, or an error whose
// message is suitable for direct display.
func Parse(command string, tc TargetContext) ([]Action, error) {
	cmd := normalize(command)
	if cmd == "" {
		return nil, fmt.Errorf("enter a command")
	}

	target := resolveTarget(tc)
	if target == "" {
		return nil, fmt.Errorf("select a time selection, clip(s), or track(s) first")
	}

	switch {
	case strings.HasPrefix(cmd, "fade in"):
		return clipEdit("fade_in", "fade in", cmd, target)
	case strings.HasPrefix(cmd, "fade out"):
		return clipEdit("fade_out", "fade out", cmd, target)
	case strings.HasPrefix(cmd, "cut middle"):
		return clipEdit("cut_middle", "cut middle", cmd, target)
	case cmd == "trim to time selection":
		if !tc.HasTimeSelection {
			return nil, fmt.Errorf("trim to time selection requires a time selection")
		}
		return single("trim_to_time_selection", TargetTimeSelection, nil), nil
	case cmd == "split at cursor":
		if target == TargetSelectedTracks {
			return nil, fmt.Errorf("split at cursor requires selected clip(s) or a time selection")
		}
		return single("split_at_cursor", target, nil), nil
	case strings.HasPrefix(cmd, "duplicate"):
		if target == TargetTimeSelection {
			return nil, fmt.Errorf("duplicate requires selected clip(s) or selected track(s)")
		}
		count, err := parseDup(cmd)
		if err != nil {
			return nil, err
		}
		return single("duplicate", target, map[string]any{"count": count}), nil
	case strings.HasPrefix(cmd, "volume"):
		if target != TargetSelectedTracks {
			return nil, fmt.Errorf("volume commands require selected track(s)")
		}
		db, err := parseDB(cmd)
		if err != nil {
			return nil, err
		}
		return single("set_volume_delta", TargetSelectedTracks, map[string]any{"db": db}), nil
	case strings.HasPrefix(cmd, "pan"):
		if target != TargetSelectedTracks {
			return nil, fmt.Errorf("pan commands require selected track(s)")
		}
		pan, err := parsePan(cmd)
		if err != nil {
			return nil, err
		}
		return single("set_pan", TargetSelectedTracks, map[string]any{"pan": pan}), nil
	case cmd == "mute" || cmd == "unmute" || cmd == "solo" || cmd == "unsolo":
		if target != TargetSelectedTracks {
			return nil, fmt.Errorf("%s requires selected track(s)", cmd)
		}
		return single(cmd, TargetSelectedTracks, nil), nil
	case cmd == "add eq" || cmd == "add compressor" || cmd == "add reverb":
		if target != TargetSelectedTracks {
			return nil, fmt.Errorf("FX insertion requires selected track(s)")
		}
		fxType := strings.TrimPrefix(cmd, "add ")
		return single("add_fx", TargetSelectedTracks, map[string]any{"type": fxType}), nil
	}
	return nil, fmt.Errorf("unsupported command")
}

func clipEdit(op, verb, cmd, target string) ([]Action, error) {
	if target == TargetSelectedTracks {
		return nil, fmt.Errorf("%s requires a time selection or selected clip(s)", verb)
	}
	seconds, err := parseTimeSeconds(cmd)
	if err != nil {
		return nil, err
	}
	return single(op, target, map[string]any{"seconds": seconds}), nil
}

func single(op, target string, params map[string]any) []Action {
	if params == nil {
		params = map[string]any{}
	}
	return []Action{{Op: op, Target: target, Params: params}}
}

func normalize(s string) string {
	return wsRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

func resolveTarget(tc TargetContext) string {
	switch {
	case tc.HasTimeSelection:
		return TargetTimeSelection
	case tc.HasSelectedClips:
		return TargetSelectedClips
	case tc.HasSelectedTracks:
		return TargetSelectedTracks
	}
	return ""
}

func parseTimeSeconds(cmd string) (float64, error) {
	m := timeRe.FindStringSubmatch(cmd)
	if m == nil {
		return 0, fmt.Errorf("missing time value (e.g., 500ms or 2s)")
	}
	num, err := strconv.ParseFloat(m[timeRe.SubexpIndex("num")], 64)
	if err != nil {
		return 0, fmt.Errorf("missing time value (e.g., 500ms or 2s)")
	}
	unit := m[timeRe.SubexpIndex("unit")]
	if strings.HasPrefix(unit, "ms") || strings.HasPrefix(unit, "millisecond") {
		return num / 1000, nil
	}
	return num, nil
}

func parseDB(cmd string) (float64, error) {
	m := dbRe.FindStringSubmatch(cmd)
	if m == nil {
		return 0, fmt.Errorf("missing dB value (e.g., +3db)")
	}
	return strconv.ParseFloat(m[dbRe.SubexpIndex("db")], 64)
}

func parsePan(cmd string) (float64, error) {
	m := panRe.FindStringSubmatch(cmd)
	if m == nil {
		return 0, fmt.Errorf("missing pan value (e.g., pan 30L)")
	}
	val, err := strconv.ParseFloat(m[panRe.SubexpIndex("num")], 64)
	if err != nil {
		return 0, err
	}
	pan := val
	if m[panRe.SubexpIndex("side")] == "l" {
		pan = -val
	}
	if pan < -100 || pan > 100 {
		return 0, fmt.Errorf("pan must be between 0 and 100 (e.g., pan 30L, pan 20R)")
	}
	return pan, nil
}

func parseDup(cmd string) (int, error) {
	m := dupRe.FindStringSubmatch(cmd)
	if m == nil {
		return 0, fmt.Errorf("missing duplicate count (e.g., duplicate 4)")
	}
	count, err := strconv.Atoi(m[dupRe.SubexpIndex("count")])
	if err != nil {
		return 0, err
	}
	if count < 1 || count > 32 {
		return 0, fmt.Errorf("duplicate count must be between 1 and 32")
	}
	return count, nil
}
