package model

import (
	"encoding/json"
	"testing"
)

func TestSelectionContext_DecodesHostShape(t *testing.T) {
	raw := `{
		"selected_items": [{"id": "item-1", "start": 42.1, "end": 45.1}],
		"selected_tracks": [{"id": "track-1", "name": "Lead Vox"}],
		"time_selection": {"start": 42.1, "end": 44.1},
		"cursor": 43.0
	}`
	var sc SelectionContext
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(sc.SelectedClips) != 1 || sc.SelectedClips[0].Start == nil || *sc.SelectedClips[0].Start != 42.1 {
		t.Fatalf("clips not decoded: %+v", sc.SelectedClips)
	}
	if len(sc.SelectedTracks) != 1 || sc.SelectedTracks[0].Name != "Lead Vox" {
		t.Fatalf("tracks not decoded: %+v", sc.SelectedTracks)
	}
	if !sc.HasValidTimeSelection() || sc.Cursor != 43.0 {
		t.Fatalf("time selection or cursor not decoded: %+v", sc)
	}
}

func TestClone_IsDeep(t *testing.T) {
	start, end := 1.0, 2.0
	sc := SelectionContext{
		SelectedClips:    []Clip{{ID: "a", Start: &start, End: &end}},
		SelectedTracks:   []Track{{ID: "t"}},
		TimeSelection:    &Range{Start: 1, End: 2},
		ConversationHint: &ConversationHint{LastIntent: "fade"},
	}
	clone := sc.Clone()

	*clone.SelectedClips[0].Start = 99
	clone.SelectedTracks[0].ID = "mutated"
	clone.TimeSelection.End = 99
	clone.ConversationHint.LastIntent = "mutated"

	if *sc.SelectedClips[0].Start != 1.0 {
		t.Fatalf("clip bound shared between original and clone")
	}
	if sc.SelectedTracks[0].ID != "t" {
		t.Fatalf("track slice shared")
	}
	if sc.TimeSelection.End != 2 {
		t.Fatalf("time selection shared")
	}
	if sc.ConversationHint.LastIntent != "fade" {
		t.Fatalf("hint shared")
	}
}

func TestClipSpan(t *testing.T) {
	s1, e1 := 42.1, 44.2
	s2, e2 := 44.0, 46.5
	sc := SelectionContext{SelectedClips: []Clip{
		{Start: &s1, End: &e1},
		{Start: &s2, End: &e2},
	}}
	span, ok := sc.ClipSpan()
	if !ok || span.Start != 42.1 || span.End != 46.5 {
		t.Fatalf("unexpected span: %+v ok=%v", span, ok)
	}

	// A clip without bounds contributes nothing.
	if _, ok := (SelectionContext{SelectedClips: []Clip{{ID: "x"}}}).ClipSpan(); ok {
		t.Fatalf("span should be uncomputable without bounds")
	}
}

func TestRangeValid(t *testing.T) {
	if (Range{Start: 1, End: 1}).Valid() {
		t.Fatalf("zero-length range must be invalid")
	}
	if (Range{Start: 2, End: 1}).Valid() {
		t.Fatalf("inverted range must be invalid")
	}
	if !(Range{Start: 1, End: 2}).Valid() {
		t.Fatalf("positive range must be valid")
	}
}

func TestSummarize(t *testing.T) {
	start, end := 10.0, 12.0
	sc := SelectionContext{
		SelectedClips:  []Clip{{Start: &start, End: &end}},
		SelectedTracks: []Track{{ID: "t1"}, {ID: "t2"}},
		TimeSelection:  &Range{Start: 5, End: 5}, // invalid, must be dropped
		Cursor:         11.0,
		ForcedTarget:   TargetTracks,
	}
	summary := Summarize(sc)
	if summary.SelectedClipsCount != 1 || summary.SelectedTracksCount != 2 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.TimeSelection != nil {
		t.Fatalf("invalid time selection should not be summarized")
	}
	if summary.SelectedClipsRange == nil || summary.SelectedClipsRange.Start != 10.0 {
		t.Fatalf("clip range missing: %+v", summary)
	}
	if summary.ForcedTarget != TargetTracks {
		t.Fatalf("forced target missing: %+v", summary)
	}
}

func TestResponseSerialization(t *testing.T) {
	question := "Clips or tracks?"
	resp := Response{
		OK:                    true,
		NeedsClarification:    true,
		ClarificationQuestion: &question,
		Preview:               "Clarification needed before generating a preview.",
		ToolCalls:             []ToolCall{},
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"ok", "needs_clarification", "clarification_question", "error", "preview", "tool_calls"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("response JSON missing %q: %s", key, data)
		}
	}
	if decoded["error"] != nil {
		t.Fatalf("error should serialize as null: %s", data)
	}
	if calls, ok := decoded["tool_calls"].([]any); !ok || len(calls) != 0 {
		t.Fatalf("tool_calls should serialize as an empty list: %s", data)
	}
}
