package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"reaperbridge/internal/model"
)

// stubPlanner returns a canned plan object and records what it was asked.
type stubPlanner struct {
	raw         map[string]any
	err         error
	lastCommand string
	lastSummary model.ContextSummary
	calls       int
}

func (s *stubPlanner) PlanToolCalls(_ context.Context, command string, summary model.ContextSummary) (map[string]any, error) {
	s.calls++
	s.lastCommand = command
	s.lastSummary = summary
	if s.err != nil {
		return nil, s.err
	}
	return s.raw, nil
}

func planOf(calls ...map[string]any) map[string]any {
	list := make([]any, 0, len(calls))
	for _, call := range calls {
		list = append(list, call)
	}
	return map[string]any{
		"tool_calls":             list,
		"needs_clarification":    false,
		"clarification_question": nil,
	}
}

func clarificationOf(question string) map[string]any {
	return map[string]any{
		"tool_calls":             []any{},
		"needs_clarification":    true,
		"clarification_question": question,
	}
}

func call(name string, args map[string]any) map[string]any {
	if args == nil {
		args = map[string]any{}
	}
	return map[string]any{"name": name, "args": args}
}

func rawCtx(t *testing.T, sc model.SelectionContext) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(sc)
	if err != nil {
		t.Fatalf("marshal context: %v", err)
	}
	return data
}

func oneClipCtx() model.SelectionContext {
	start, end := 42.1, 45.1
	return model.SelectionContext{
		SelectedClips: []model.Clip{{ID: "item-1", Start: &start, End: &end}},
		Cursor:        43.0,
	}
}

func oneTrackCtx() model.SelectionContext {
	return model.SelectionContext{
		SelectedTracks: []model.Track{{ID: "track-1", Name: "Lead Vox"}},
	}
}

func bothCtx() model.SelectionContext {
	sc := oneClipCtx()
	sc.SelectedTracks = []model.Track{{ID: "track-1"}}
	return sc
}

func TestProcess_FadeInScenario(t *testing.T) {
	planner := &stubPlanner{raw: planOf(call("fade_in", map[string]any{"seconds": 2.0}))}
	resp := Process(context.Background(), planner, model.Request{
		Cmd: "fade in 2s",
		Ctx: rawCtx(t, oneClipCtx()),
	})
	if !resp.OK || resp.NeedsClarification || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "fade_in" {
		t.Fatalf("unexpected tool calls: %+v", resp.ToolCalls)
	}
	if !strings.Contains(resp.Preview, "2.0s") {
		t.Fatalf("preview should mention 2.0s: %q", resp.Preview)
	}
	if !strings.Contains(resp.Preview, "Applied to 1 selected clip") {
		t.Fatalf("preview should mention affected clip count: %q", resp.Preview)
	}
}

func TestProcess_EmptyCommand(t *testing.T) {
	planner := &stubPlanner{}
	resp := Process(context.Background(), planner, model.Request{
		Cmd: "   ",
		Ctx: rawCtx(t, oneClipCtx()),
	})
	if resp.OK || resp.Error == nil || *resp.Error != "Input error: cmd must be a non-empty string." {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if planner.calls != 0 {
		t.Fatalf("planner should not be invoked on input error")
	}
}

func TestProcess_NonObjectContext(t *testing.T) {
	for _, raw := range []string{"", "null", "[1,2]", `"text"`} {
		resp := Process(context.Background(), &stubPlanner{}, model.Request{
			Cmd: "mute",
			Ctx: json.RawMessage(raw),
		})
		if resp.OK || resp.Error == nil || *resp.Error != "Input error: ctx must be an object." {
			t.Fatalf("ctx=%q: unexpected response: %+v", raw, resp)
		}
	}
}

func TestProcess_NotConfigured(t *testing.T) {
	planner := &stubPlanner{err: model.ErrNotConfigured}
	resp := Process(context.Background(), planner, model.Request{
		Cmd: "mute",
		Ctx: rawCtx(t, oneTrackCtx()),
	})
	if resp.OK || resp.Error == nil || *resp.Error != model.ErrNotConfigured.Error() {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestProcess_PlannerTransportError(t *testing.T) {
	planner := &stubPlanner{err: errors.New("connection refused")}
	resp := Process(context.Background(), planner, model.Request{
		Cmd: "mute",
		Ctx: rawCtx(t, oneTrackCtx()),
	})
	if resp.OK || resp.Error == nil || !strings.HasPrefix(*resp.Error, "Gemini planning error:") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestProcess_SchemaViolation(t *testing.T) {
	planner := &stubPlanner{raw: map[string]any{"tool_calls": []any{}}}
	resp := Process(context.Background(), planner, model.Request{
		Cmd: "mute",
		Ctx: rawCtx(t, oneTrackCtx()),
	})
	if resp.OK || resp.Error == nil || !strings.Contains(*resp.Error, "planner output") {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.ToolCalls) != 0 {
		t.Fatalf("failed response must carry no tool calls")
	}
}

func TestProcess_FirstClarificationIsNotAnError(t *testing.T) {
	planner := &stubPlanner{raw: clarificationOf("Apply to the clip or the track?")}
	resp := Process(context.Background(), planner, model.Request{
		Cmd: "increase the volume",
		Ctx: rawCtx(t, bothCtx()),
	})
	if !resp.OK || !resp.NeedsClarification {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ClarificationQuestion == nil || *resp.ClarificationQuestion == "" {
		t.Fatalf("expected non-empty question")
	}
	if resp.Error != nil || len(resp.ToolCalls) != 0 {
		t.Fatalf("clarification must carry no error and no tool calls: %+v", resp)
	}
}

func TestProcess_SecondClarificationIsTerminal(t *testing.T) {
	planner := &stubPlanner{raw: clarificationOf("Did you mean something else entirely?")}
	resp := Process(context.Background(), planner, model.Request{
		Cmd:          "increase the volume",
		Ctx:          rawCtx(t, bothCtx()),
		ForcedTarget: "tracks",
	})
	if resp.OK || resp.NeedsClarification {
		t.Fatalf("forced target must never yield a second clarification: %+v", resp)
	}
	if resp.Error == nil || !strings.Contains(*resp.Error, "Could not resolve command after clarification") {
		t.Fatalf("unexpected error: %+v", resp)
	}
}

func TestProcess_SecondClarificationMentioningBothTargets(t *testing.T) {
	planner := &stubPlanner{raw: clarificationOf("Apply to the clip or the track?")}
	resp := Process(context.Background(), planner, model.Request{
		Cmd:          "increase the volume",
		Ctx:          rawCtx(t, oneClipCtx()),
		ForcedTarget: "tracks",
	})
	if resp.OK || resp.Error == nil || *resp.Error != "No selected tracks. Select a track in REAPER." {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestProcess_ValidationFailureSynthesizesClarification(t *testing.T) {
	// Scenario: planner chose a track tool but only clips are selected.
	planner := &stubPlanner{raw: planOf(call("mute", nil))}
	resp := Process(context.Background(), planner, model.Request{
		Cmd: "mute",
		Ctx: rawCtx(t, oneClipCtx()),
	})
	if !resp.OK || !resp.NeedsClarification {
		t.Fatalf("expected local clarification: %+v", resp)
	}
	if resp.ClarificationQuestion == nil || !strings.Contains(*resp.ClarificationQuestion, "clips") {
		t.Fatalf("unexpected question: %+v", resp.ClarificationQuestion)
	}
	if planner.calls != 1 {
		t.Fatalf("local clarification must not re-invoke the planner")
	}
}

func TestProcess_NoSelectionAtAll(t *testing.T) {
	// Scenario: "mute" with nothing selected fails validation terminally.
	planner := &stubPlanner{raw: planOf(call("mute", nil))}
	resp := Process(context.Background(), planner, model.Request{
		Cmd: "mute",
		Ctx: rawCtx(t, model.SelectionContext{}),
	})
	if resp.OK || resp.Error == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !strings.Contains(*resp.Error, "at least 1 selected track") {
		t.Fatalf("unexpected error: %q", *resp.Error)
	}
}

func TestProcess_ForcedTargetEmptySelection(t *testing.T) {
	planner := &stubPlanner{raw: planOf(call("mute", nil))}
	resp := Process(context.Background(), planner, model.Request{
		Cmd:          "mute",
		Ctx:          rawCtx(t, oneClipCtx()),
		ForcedTarget: "tracks",
	})
	if resp.OK || resp.Error == nil || *resp.Error != "No selected tracks. Select a track in REAPER." {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestProcess_ForcedTargetRangeFailure(t *testing.T) {
	planner := &stubPlanner{raw: planOf(call("set_pan", map[string]any{"pan": 500.0}))}
	resp := Process(context.Background(), planner, model.Request{
		Cmd:          "pan hard left",
		Ctx:          rawCtx(t, oneTrackCtx()),
		ForcedTarget: "tracks",
	})
	if resp.OK || resp.Error == nil || !strings.HasPrefix(*resp.Error, "Validation error:") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestProcess_ForcedTargetClearsOtherSelection(t *testing.T) {
	planner := &stubPlanner{raw: planOf(call("mute", nil))}
	resp := Process(context.Background(), planner, model.Request{
		Cmd:          "increase the volume",
		Ctx:          rawCtx(t, bothCtx()),
		ForcedTarget: "tracks",
	})
	if !resp.OK {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if planner.lastSummary.SelectedClipsCount != 0 {
		t.Fatalf("forcing tracks must clear clips in the planning summary: %+v", planner.lastSummary)
	}
	if planner.lastSummary.SelectedTracksCount != 1 {
		t.Fatalf("tracks must survive forcing: %+v", planner.lastSummary)
	}
	if planner.lastSummary.ForcedTarget != model.TargetTracks {
		t.Fatalf("summary should record forced target: %+v", planner.lastSummary)
	}
}

func TestProcess_ForcedTargetAppendsCommandNote(t *testing.T) {
	planner := &stubPlanner{raw: planOf(call("mute", nil))}
	Process(context.Background(), planner, model.Request{
		Cmd:          "increase the volume",
		Ctx:          rawCtx(t, oneTrackCtx()),
		ForcedTarget: "tracks",
	})
	if !strings.HasSuffix(planner.lastCommand, "\nUser clarified target: selected tracks.") {
		t.Fatalf("command should carry the clarification note: %q", planner.lastCommand)
	}
}

func TestProcess_ClarificationAnswerActsAsForcedTarget(t *testing.T) {
	planner := &stubPlanner{raw: planOf(call("fade_in", map[string]any{"seconds": 1.0}))}
	Process(context.Background(), planner, model.Request{
		Cmd:                 "fade in 1s",
		Ctx:                 rawCtx(t, bothCtx()),
		ClarificationAnswer: "clip",
	})
	if !strings.HasSuffix(planner.lastCommand, "User clarified target: selected clips.") {
		t.Fatalf("answer should force clips: %q", planner.lastCommand)
	}
	if planner.lastSummary.SelectedTracksCount != 0 {
		t.Fatalf("forcing clips must clear tracks: %+v", planner.lastSummary)
	}
}

func TestProcess_ForcedTargetWinsOverAnswer(t *testing.T) {
	planner := &stubPlanner{raw: planOf(call("mute", nil))}
	Process(context.Background(), planner, model.Request{
		Cmd:                 "mute",
		Ctx:                 rawCtx(t, bothCtx()),
		ForcedTarget:        "tracks",
		ClarificationAnswer: "clips",
	})
	if planner.lastSummary.ForcedTarget != model.TargetTracks {
		t.Fatalf("forced_target should take precedence: %+v", planner.lastSummary)
	}
}

func TestProcess_OriginalContextNeverMutated(t *testing.T) {
	sc := bothCtx()
	raw := rawCtx(t, sc)
	planner := &stubPlanner{raw: planOf(call("mute", nil))}
	Process(context.Background(), planner, model.Request{
		Cmd:          "mute",
		Ctx:          raw,
		ForcedTarget: "tracks",
	})
	again := rawCtx(t, sc)
	if string(raw) != string(again) {
		t.Fatalf("caller context mutated: %s vs %s", raw, again)
	}
}

func TestProcess_PanicIsWrapped(t *testing.T) {
	resp := Process(context.Background(), panicPlanner{}, model.Request{
		Cmd: "fade in",
		Ctx: rawCtx(t, oneClipCtx()),
	})
	if resp.OK || resp.Error == nil || !strings.HasPrefix(*resp.Error, "Unexpected planning error:") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

type panicPlanner struct{}

func (panicPlanner) PlanToolCalls(context.Context, string, model.ContextSummary) (map[string]any, error) {
	panic("boom")
}

func TestParseTarget(t *testing.T) {
	cases := map[string]model.Target{
		"clip":   model.TargetClips,
		"Clips":  model.TargetClips,
		"track":  model.TargetTracks,
		"TRACKS": model.TargetTracks,
		"":       model.TargetNone,
		"both":   model.TargetNone,
	}
	for in, want := range cases {
		if got := ParseTarget(in); got != want {
			t.Fatalf("ParseTarget(%q) = %q, want %q", in, got, want)
		}
	}
}
