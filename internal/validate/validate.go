// Package validate checks schema-valid tool calls against the live selection
// context: numeric argument ranges and target availability. Fail-fast, one
// precise message, no aggregation.
package validate

import (
	"fmt"
	"math"
	"strings"

	"reaperbridge/internal/model"
)

// FXTypes is the closed set accepted by add_fx.
var FXTypes = map[string]bool{
	"compressor": true,
	"eq":         true,
	"reverb":     true,
}

type targetClass int

const (
	targetNone targetClass = iota
	targetClipOrTime
	targetClip
	targetClipPair
	targetTimeAndClip
	targetClipOrTrack
	targetTrack
)

type argCheck func(name string, args map[string]any) error

// rules is the single source of truth for per-tool argument ranges and target
// requirements. Every tool call not matching it is rejected.
var rules = map[string]struct {
	args   argCheck
	target targetClass
}{
	"fade_in":                {args: secondsRange(30), target: targetClipOrTime},
	"fade_out":               {args: secondsRange(30), target: targetClipOrTime},
	"cut_middle":             {args: secondsRange(0), target: targetClip},
	"crossfade":              {args: secondsRange(10), target: targetClipPair},
	"split_at_cursor":        {target: targetClipOrTime},
	"trim_to_time_selection": {target: targetTimeAndClip},
	"duplicate":              {args: checkDuplicate, target: targetClipOrTrack},
	"set_volume_delta":       {args: checkVolumeDelta, target: targetTrack},
	"set_volume_set":         {args: checkVolumeSet, target: targetTrack},
	"set_pan":                {args: checkPan, target: targetTrack},
	"add_fx":                 {args: checkFX, target: targetTrack},
	"mute":                   {target: targetTrack},
	"unmute":                 {target: targetTrack},
	"solo":                   {target: targetTrack},
	"unsolo":                 {target: targetTrack},
}

// Plan re-checks every tool call of an already schema-valid plan. Returns nil
// when the whole plan is acceptable, otherwise the first violation.
func Plan(plan model.ToolPlan, sc model.SelectionContext) error {
	if plan.NeedsClarification {
		return nil
	}
	for _, call := range plan.ToolCalls {
		rule, ok := rules[call.Name]
		if !ok {
			return fmt.Errorf("unsupported tool %q", call.Name)
		}
		if rule.args != nil {
			if err := rule.args(call.Name, call.Args); err != nil {
				return err
			}
		}
		if err := checkTarget(call.Name, rule.target, sc); err != nil {
			return err
		}
	}
	return nil
}

func checkTarget(name string, class targetClass, sc model.SelectionContext) error {
	hasClips := len(sc.SelectedClips) > 0
	hasTracks := len(sc.SelectedTracks) > 0
	hasTime := sc.HasValidTimeSelection()

	switch class {
	case targetClipOrTime:
		if !hasClips && !hasTime {
			return fmt.Errorf("%s requires at least 1 selected clip or a valid time selection", name)
		}
	case targetClip:
		if !hasClips {
			return fmt.Errorf("%s requires at least 1 selected clip", name)
		}
	case targetClipPair:
		if len(sc.SelectedClips) != 2 {
			return fmt.Errorf("%s requires exactly 2 selected clips", name)
		}
	case targetTimeAndClip:
		if !hasTime {
			return fmt.Errorf("%s requires a valid time selection", name)
		}
		if !hasClips {
			return fmt.Errorf("%s requires at least 1 selected clip", name)
		}
	case targetClipOrTrack:
		if !hasClips && !hasTracks {
			return fmt.Errorf("%s requires at least 1 selected clip or selected track", name)
		}
	case targetTrack:
		if !hasTracks {
			return fmt.Errorf("%s requires at least 1 selected track", name)
		}
	}
	return nil
}

// secondsRange builds a checker for the seconds argument: always > 0, and
// capped at max when max is positive.
func secondsRange(max float64) argCheck {
	return func(name string, args map[string]any) error {
		seconds, ok := asNumber(args["seconds"])
		if !ok {
			return fmt.Errorf("invalid args for %s: seconds must be a number", name)
		}
		if max > 0 {
			if seconds <= 0 || seconds > max {
				return fmt.Errorf("invalid args for %s: seconds must be > 0 and <= %g", name, max)
			}
			return nil
		}
		if seconds <= 0 {
			return fmt.Errorf("invalid args for %s: seconds must be > 0", name)
		}
		return nil
	}
}

func checkDuplicate(name string, args map[string]any) error {
	count, ok := asInteger(args["count"])
	if !ok {
		return fmt.Errorf("invalid args for %s: count must be an integer", name)
	}
	if count < 1 || count > 32 {
		return fmt.Errorf("invalid args for %s: count must be between 1 and 32", name)
	}
	return nil
}

func checkVolumeDelta(name string, args map[string]any) error {
	if raw, ok := args["db"]; ok {
		db, ok := asNumber(raw)
		if !ok {
			return fmt.Errorf("invalid args for %s: db must be a number", name)
		}
		if db < -24 || db > 24 {
			return fmt.Errorf("invalid args for %s: db must be between -24 and 24", name)
		}
		return nil
	}
	percent, ok := asNumber(args["percent"])
	if !ok {
		return fmt.Errorf("invalid args for %s: percent must be a number", name)
	}
	if percent < -90 || percent > 200 {
		return fmt.Errorf("invalid args for %s: percent must be between -90 and 200", name)
	}
	return nil
}

func checkVolumeSet(name string, args map[string]any) error {
	percent, ok := asNumber(args["percent"])
	if !ok {
		return fmt.Errorf("invalid args for %s: percent must be a number", name)
	}
	if percent < 0 || percent > 200 {
		return fmt.Errorf("invalid args for %s: percent must be between 0 and 200", name)
	}
	return nil
}

func checkPan(name string, args map[string]any) error {
	pan, ok := asInteger(args["pan"])
	if !ok {
		return fmt.Errorf("invalid args for %s: pan must be an integer", name)
	}
	if pan < -100 || pan > 100 {
		return fmt.Errorf("invalid args for %s: pan must be between -100 and 100", name)
	}
	return nil
}

func checkFX(name string, args map[string]any) error {
	fxType, ok := args["type"].(string)
	if !ok {
		return fmt.Errorf("invalid args for %s: type must be a string", name)
	}
	if !FXTypes[fxType] {
		return fmt.Errorf("invalid args for %s: type must be one of compressor, eq, reverb", name)
	}
	return nil
}

// asNumber accepts JSON numbers. Booleans are not numbers.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// asInteger accepts JSON numbers with an integral value.
func asInteger(v any) (int, bool) {
	n, ok := asNumber(v)
	if !ok || math.Trunc(n) != n {
		return 0, false
	}
	return int(n), true
}

// ClarificationForError synthesizes a local clarification question when a
// target-availability failure names the opposite selection kind from what is
// actually populated. Empty string means no local clarification applies.
func ClarificationForError(message string, sc model.SelectionContext) string {
	lowered := strings.ToLower(message)
	hasClips := len(sc.SelectedClips) > 0
	hasTracks := len(sc.SelectedTracks) > 0

	if strings.Contains(lowered, "selected track") && hasClips && !hasTracks {
		return "Should this apply to the selected clips or to tracks? Answer \"clips\" or \"tracks\"."
	}
	if strings.Contains(lowered, "selected clip") && hasTracks && !hasClips {
		return "Should this apply to clips or to the selected tracks? Answer \"clips\" or \"tracks\"."
	}
	return ""
}

// IsTargetSelectionError reports whether message is the availability failure
// for the given forced target.
func IsTargetSelectionError(message string, target model.Target) bool {
	lowered := strings.ToLower(message)
	if target == model.TargetTracks {
		return strings.Contains(lowered, "selected track")
	}
	return strings.Contains(lowered, "selected clip")
}
