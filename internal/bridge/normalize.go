package bridge

import (
	"strings"

	"reaperbridge/internal/model"
)

// ParseTarget normalizes a forced-target value. It accepts singular and
// plural forms, case-insensitive; anything else is TargetNone.
func ParseTarget(value string) model.Target {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "clip", "clips":
		return model.TargetClips
	case "track", "tracks":
		return model.TargetTracks
	}
	return model.TargetNone
}

// PlanningContext derives the planner-scoped copy of the selection context.
// Forcing a target clears the other target's selection and records the choice
// on the copy; the original is never touched.
func PlanningContext(sc model.SelectionContext, target model.Target, hint *model.ConversationHint) model.SelectionContext {
	planning := sc.Clone()
	switch target {
	case model.TargetTracks:
		planning.SelectedClips = nil
	case model.TargetClips:
		planning.SelectedTracks = nil
	}
	if target != model.TargetNone {
		planning.ForcedTarget = target
	}
	if hint != nil {
		h := *hint
		planning.ConversationHint = &h
	}
	return planning
}

// PlanningCommand appends the deterministic clarification note so a
// re-invoked planner is biased toward the resolved target.
func PlanningCommand(command string, target model.Target) string {
	command = strings.TrimSpace(command)
	switch target {
	case model.TargetTracks:
		return command + "\nUser clarified target: selected tracks."
	case model.TargetClips:
		return command + "\nUser clarified target: selected clips."
	}
	return command
}
