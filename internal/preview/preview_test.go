package preview

import (
	"strings"
	"testing"

	"reaperbridge/internal/model"
)

func clipCtx() model.SelectionContext {
	start, end := 42.1, 45.1
	return model.SelectionContext{
		SelectedClips: []model.Clip{{ID: "item-1", Start: &start, End: &end}},
		Cursor:        43.0,
	}
}

func trackCtx(n int) model.SelectionContext {
	sc := model.SelectionContext{}
	for i := 0; i < n; i++ {
		sc.SelectedTracks = append(sc.SelectedTracks, model.Track{ID: "track"})
	}
	return sc
}

func one(name string, args map[string]any) []model.ToolCall {
	if args == nil {
		args = map[string]any{}
	}
	return []model.ToolCall{{Name: name, Args: args}}
}

func TestRender_FadeInWithSummary(t *testing.T) {
	got := Render(one("fade_in", map[string]any{"seconds": 2.0}), clipCtx())
	want := "Fade in by 2.0s\nApplied to 1 selected clip\nRange: 00:42.100 to 00:45.100"
	if got != want {
		t.Fatalf("unexpected preview:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_SubSecondDurationUsesMilliseconds(t *testing.T) {
	got := Render(one("fade_out", map[string]any{"seconds": 0.5}), clipCtx())
	if !strings.Contains(got, "Fade out by 500ms") {
		t.Fatalf("unexpected preview: %q", got)
	}
}

func TestRender_VolumeDB(t *testing.T) {
	got := Render(one("set_volume_delta", map[string]any{"db": -3.0}), trackCtx(2))
	if !strings.Contains(got, "Change volume by -3.0 dB") {
		t.Fatalf("unexpected preview: %q", got)
	}
	if !strings.Contains(got, "Applied to 2 selected tracks") {
		t.Fatalf("missing track summary: %q", got)
	}
}

func TestRender_VolumePercentShowsGain(t *testing.T) {
	got := Render(one("set_volume_delta", map[string]any{"percent": 50.0}), trackCtx(1))
	if !strings.Contains(got, "Change volume by +50% (gain x1.50)") {
		t.Fatalf("unexpected preview: %q", got)
	}
}

func TestRender_VolumeSetShowsGain(t *testing.T) {
	got := Render(one("set_volume_set", map[string]any{"percent": 85.0}), trackCtx(1))
	if !strings.Contains(got, "Set volume to 85% (gain x0.85)") {
		t.Fatalf("unexpected preview: %q", got)
	}
}

func TestRender_Pan(t *testing.T) {
	cases := map[float64]string{
		-40: "Set pan to 40 left",
		25:  "Set pan to 25 right",
		0:   "Set pan to center",
	}
	for pan, want := range cases {
		got := Render(one("set_pan", map[string]any{"pan": pan}), trackCtx(1))
		if !strings.Contains(got, want) {
			t.Fatalf("pan=%v: %q missing %q", pan, got, want)
		}
	}
}

func TestRender_FXAndToggles(t *testing.T) {
	got := Render([]model.ToolCall{
		{Name: "add_fx", Args: map[string]any{"type": "reverb"}},
		{Name: "mute", Args: map[string]any{}},
		{Name: "solo", Args: map[string]any{}},
	}, trackCtx(1))
	for _, want := range []string{"Add reverb FX", "Mute", "Solo", "Applied to 1 selected track"} {
		if !strings.Contains(got, want) {
			t.Fatalf("%q missing %q", got, want)
		}
	}
}

func TestRender_Duplicate(t *testing.T) {
	got := Render(one("duplicate", map[string]any{"count": 3.0}), clipCtx())
	if !strings.Contains(got, "Duplicate 3 times") {
		t.Fatalf("unexpected preview: %q", got)
	}
	if !strings.Contains(got, "Applied to 1 selected clip") {
		t.Fatalf("duplicate with clips selected should count clips: %q", got)
	}

	got = Render(one("duplicate", map[string]any{"count": 1.0}), trackCtx(1))
	if !strings.Contains(got, "Duplicate 1 time\n") && !strings.HasPrefix(got, "Duplicate 1 time") {
		t.Fatalf("unexpected preview: %q", got)
	}
	if !strings.Contains(got, "Applied to 1 selected track") {
		t.Fatalf("duplicate with tracks selected should count tracks: %q", got)
	}
}

func TestRender_TimeSelectionFallbackSpan(t *testing.T) {
	sc := model.SelectionContext{
		SelectedTracks: []model.Track{{ID: "t"}},
		TimeSelection:  &model.Range{Start: 61.25, End: 65.0},
	}
	got := Render(one("mute", nil), sc)
	if !strings.Contains(got, "Range: 01:01.250 to 01:05.000") {
		t.Fatalf("unexpected preview: %q", got)
	}
}

func TestRender_NoSpanWhenUncomputable(t *testing.T) {
	got := Render(one("mute", nil), trackCtx(1))
	if strings.Contains(got, "Range:") {
		t.Fatalf("no span should be rendered: %q", got)
	}
}

func TestRender_ClipSpanAcrossMultipleClips(t *testing.T) {
	s1, e1 := 42.1, 44.2
	s2, e2 := 44.0, 46.5
	sc := model.SelectionContext{SelectedClips: []model.Clip{
		{Start: &s1, End: &e1},
		{Start: &s2, End: &e2},
	}}
	got := Render(one("crossfade", map[string]any{"seconds": 1.0}), sc)
	if !strings.Contains(got, "Range: 00:42.100 to 00:46.500") {
		t.Fatalf("unexpected preview: %q", got)
	}
	if !strings.Contains(got, "Applied to 2 selected clips") {
		t.Fatalf("missing clip summary: %q", got)
	}
}

func TestRender_Idempotent(t *testing.T) {
	calls := []model.ToolCall{
		{Name: "fade_in", Args: map[string]any{"seconds": 2.0}},
		{Name: "cut_middle", Args: map[string]any{"seconds": 0.75}},
	}
	sc := clipCtx()
	first := Render(calls, sc)
	second := Render(calls, sc)
	if first != second {
		t.Fatalf("rendering is not deterministic:\n%s\nvs\n%s", first, second)
	}
}
