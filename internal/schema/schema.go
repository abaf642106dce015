// Package schema enforces the planning contract on raw planner output. A plan
// either fully satisfies the contract or is rejected whole; nothing partial
// ever reaches validation.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"reaperbridge/internal/model"
)

// ToolSpec declares the exact argument key-sets a whitelisted tool accepts.
// Most tools have one key-set; set_volume_delta accepts db or percent,
// mutually exclusive.
type ToolSpec struct {
	ArgSets [][]string
}

// Tools is the whitelist. No tool name or argument key outside this table is
// accepted in either direction.
var Tools = map[string]ToolSpec{
	"fade_in":                {ArgSets: [][]string{{"seconds"}}},
	"fade_out":               {ArgSets: [][]string{{"seconds"}}},
	"cut_middle":             {ArgSets: [][]string{{"seconds"}}},
	"crossfade":              {ArgSets: [][]string{{"seconds"}}},
	"trim_to_time_selection": {ArgSets: [][]string{{}}},
	"split_at_cursor":        {ArgSets: [][]string{{}}},
	"duplicate":              {ArgSets: [][]string{{"count"}}},
	"set_volume_delta":       {ArgSets: [][]string{{"db"}, {"percent"}}},
	"set_volume_set":         {ArgSets: [][]string{{"percent"}}},
	"set_pan":                {ArgSets: [][]string{{"pan"}}},
	"add_fx":                 {ArgSets: [][]string{{"type"}}},
	"mute":                   {ArgSets: [][]string{{}}},
	"unmute":                 {ArgSets: [][]string{{}}},
	"solo":                   {ArgSets: [][]string{{}}},
	"unsolo":                 {ArgSets: [][]string{{}}},
}

// IsWhitelisted reports whether name is a known tool.
func IsWhitelisted(name string) bool {
	_, ok := Tools[name]
	return ok
}

// Error marks a structural contract violation, independent of domain validity.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "planner output: " + e.Reason
}

func schemaErrorf(format string, args ...any) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// Enforce validates the raw plan object's shape and normalizes it into a
// ToolPlan. Top-level keys must be exactly tool_calls, needs_clarification
// and clarification_question, and the two plan modes are mutually exclusive.
func Enforce(raw map[string]any) (model.ToolPlan, error) {
	var plan model.ToolPlan

	if len(raw) != 3 {
		return plan, schemaErrorf("keys must be exactly tool_calls, needs_clarification, clarification_question")
	}
	for _, key := range []string{"tool_calls", "needs_clarification", "clarification_question"} {
		if _, ok := raw[key]; !ok {
			return plan, schemaErrorf("keys must be exactly tool_calls, needs_clarification, clarification_question")
		}
	}

	needsClarification, ok := raw["needs_clarification"].(bool)
	if !ok {
		return plan, schemaErrorf("needs_clarification must be a boolean")
	}
	rawCalls, ok := raw["tool_calls"].([]any)
	if !ok {
		return plan, schemaErrorf("tool_calls must be a list")
	}

	if needsClarification {
		if len(rawCalls) > 0 {
			return plan, schemaErrorf("clarification cannot include tool_calls")
		}
		question, ok := raw["clarification_question"].(string)
		if !ok || strings.TrimSpace(question) == "" {
			return plan, schemaErrorf("clarification_question must be a non-empty string")
		}
		plan.NeedsClarification = true
		plan.ClarificationQuestion = strings.TrimSpace(question)
		return plan, nil
	}

	if raw["clarification_question"] != nil {
		return plan, schemaErrorf("clarification_question must be null when needs_clarification is false")
	}
	if len(rawCalls) == 0 {
		return plan, schemaErrorf("tool_calls cannot be empty")
	}

	plan.ToolCalls = make([]model.ToolCall, 0, len(rawCalls))
	for index, rawCall := range rawCalls {
		call, ok := rawCall.(map[string]any)
		if !ok {
			return model.ToolPlan{}, schemaErrorf("tool_call at index %d is not an object", index)
		}
		if len(call) != 2 {
			return model.ToolPlan{}, schemaErrorf("tool_call at index %d must contain only name and args", index)
		}
		name, ok := call["name"].(string)
		if !ok || !IsWhitelisted(name) {
			return model.ToolPlan{}, schemaErrorf("unsupported tool %q", call["name"])
		}
		args, ok := call["args"].(map[string]any)
		if !ok {
			return model.ToolPlan{}, schemaErrorf("args for %s must be an object", name)
		}
		if !argKeysMatch(name, args) {
			return model.ToolPlan{}, schemaErrorf("args for %s must be %s", name, readableArgSets(name))
		}
		plan.ToolCalls = append(plan.ToolCalls, model.ToolCall{Name: name, Args: args})
	}
	return plan, nil
}

func argKeysMatch(name string, args map[string]any) bool {
	for _, set := range Tools[name].ArgSets {
		if len(args) != len(set) {
			continue
		}
		matched := true
		for _, key := range set {
			if _, ok := args[key]; !ok {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func readableArgSets(name string) string {
	parts := make([]string, 0, len(Tools[name].ArgSets))
	for _, set := range Tools[name].ArgSets {
		keys := append([]string(nil), set...)
		sort.Strings(keys)
		parts = append(parts, "{"+strings.Join(keys, ", ")+"}")
	}
	return strings.Join(parts, " or ")
}
