package model

import "encoding/json"

// Target identifies which half of the selection a command applies to when the
// user has disambiguated between clips and tracks.
type Target string

const (
	TargetNone   Target = ""
	TargetClips  Target = "clips"
	TargetTracks Target = "tracks"
)

// Clip is a selected media item region on the REAPER timeline. Start and End
// are optional in the host payload; a clip only contributes to span
// calculations when the corresponding bound is present.
type Clip struct {
	ID    string   `json:"id,omitempty"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// Track is a selected mixer channel.
type Track struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Range is a time span in seconds. It is valid only when End is strictly
// greater than Start.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Valid reports whether the range covers a positive span.
func (r Range) Valid() bool {
	return r.End > r.Start
}

// ConversationHint carries optional dialogue state the host wants the planner
// to see. Both fields are free text.
type ConversationHint struct {
	LastIntent    string `json:"last_intent,omitempty"`
	PendingIntent string `json:"pending_intent,omitempty"`
}

// SelectionContext is the snapshot of editor selection state supplied fresh
// with every request. The pipeline never mutates it; target forcing operates
// on a deep copy.
type SelectionContext struct {
	SelectedClips    []Clip            `json:"selected_items"`
	SelectedTracks   []Track           `json:"selected_tracks"`
	TimeSelection    *Range            `json:"time_selection"`
	Cursor           float64           `json:"cursor"`
	ForcedTarget     Target            `json:"forced_target,omitempty"`
	ConversationHint *ConversationHint `json:"conversation_hint,omitempty"`
}

// Clone returns a deep copy, including clip bound pointers and the time
// selection, so callers can edit the copy freely.
func (sc SelectionContext) Clone() SelectionContext {
	out := sc
	if sc.SelectedClips != nil {
		out.SelectedClips = make([]Clip, len(sc.SelectedClips))
		for i, clip := range sc.SelectedClips {
			c := clip
			if clip.Start != nil {
				v := *clip.Start
				c.Start = &v
			}
			if clip.End != nil {
				v := *clip.End
				c.End = &v
			}
			out.SelectedClips[i] = c
		}
	}
	if sc.SelectedTracks != nil {
		out.SelectedTracks = append([]Track(nil), sc.SelectedTracks...)
	}
	if sc.TimeSelection != nil {
		ts := *sc.TimeSelection
		out.TimeSelection = &ts
	}
	if sc.ConversationHint != nil {
		hint := *sc.ConversationHint
		out.ConversationHint = &hint
	}
	return out
}

// HasValidTimeSelection reports whether a usable time selection is present.
func (sc SelectionContext) HasValidTimeSelection() bool {
	return sc.TimeSelection != nil && sc.TimeSelection.Valid()
}

// ClipSpan returns the minimum start and maximum end across selected clips.
// ok is false when no clip carries both bounds.
func (sc SelectionContext) ClipSpan() (span Range, ok bool) {
	haveStart := false
	haveEnd := false
	for _, clip := range sc.SelectedClips {
		if clip.Start != nil {
			if !haveStart || *clip.Start < span.Start {
				span.Start = *clip.Start
			}
			haveStart = true
		}
		if clip.End != nil {
			if !haveEnd || *clip.End > span.End {
				span.End = *clip.End
			}
			haveEnd = true
		}
	}
	return span, haveStart && haveEnd
}

// ContextSummary is the reduced projection of a SelectionContext handed to the
// planner. It carries counts and bounds only, never raw selection payloads.
type ContextSummary struct {
	SelectedClipsCount  int     `json:"selected_clips_count"`
	SelectedTracksCount int     `json:"selected_tracks_count"`
	Cursor              float64 `json:"cursor"`
	TimeSelection       *Range  `json:"time_selection"`
	SelectedClipsRange  *Range  `json:"selected_clips_range,omitempty"`
	ForcedTarget        Target  `json:"forced_target,omitempty"`
}

// Summarize projects a selection context down to the planner-facing summary.
func Summarize(sc SelectionContext) ContextSummary {
	summary := ContextSummary{
		SelectedClipsCount:  len(sc.SelectedClips),
		SelectedTracksCount: len(sc.SelectedTracks),
		Cursor:              sc.Cursor,
	}
	if span, ok := sc.ClipSpan(); ok {
		summary.SelectedClipsRange = &span
	}
	if sc.HasValidTimeSelection() {
		ts := *sc.TimeSelection
		summary.TimeSelection = &ts
	}
	if sc.ForcedTarget == TargetClips || sc.ForcedTarget == TargetTracks {
		summary.ForcedTarget = sc.ForcedTarget
	}
	return summary
}

// ToolCall is one named, argument-bound operation from the fixed whitelist.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolPlan is the planner's complete output: either tool calls or a
// clarification question, never both.
type ToolPlan struct {
	ToolCalls             []ToolCall
	NeedsClarification    bool
	ClarificationQuestion string
}

// Request is the bridge input payload. Ctx stays raw so a malformed context
// can be reported as an input error rather than a JSON decode failure.
type Request struct {
	Cmd                 string            `json:"cmd"`
	Ctx                 json.RawMessage   `json:"ctx"`
	ForcedTarget        string            `json:"forced_target,omitempty"`
	ClarificationAnswer string            `json:"clarification_answer,omitempty"`
	ConversationHint    *ConversationHint `json:"conversation_hint,omitempty"`
}

// Response is the bridge output payload. Clarification responses carry
// OK=true; every failure carries OK=false and exactly one error message.
type Response struct {
	OK                    bool       `json:"ok"`
	NeedsClarification    bool       `json:"needs_clarification"`
	ClarificationQuestion *string    `json:"clarification_question"`
	Error                 *string    `json:"error"`
	Preview               string     `json:"preview"`
	ToolCalls             []ToolCall `json:"tool_calls"`
}
