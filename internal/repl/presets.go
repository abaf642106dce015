package repl

import (
	"fmt"
	"sort"
	"strings"

	"reaperbridge/internal/model"
)

// Context presets stand in for a live editor during development.
var presets = map[string]func() model.SelectionContext{
	"items":  presetItems,
	"items2": presetItems2,
	"tracks": presetTracks,
	"time":   presetTime,
	"none":   presetNone,
}

func presetNames() string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func presetItems() model.SelectionContext {
	return model.SelectionContext{
		SelectedClips: []model.Clip{clip("item-1", 42.1, 45.1)},
		Cursor:        43.0,
	}
}

func presetItems2() model.SelectionContext {
	return model.SelectionContext{
		SelectedClips: []model.Clip{
			clip("item-1", 42.1, 44.2),
			clip("item-2", 44.0, 46.5),
		},
		Cursor: 44.1,
	}
}

func presetTracks() model.SelectionContext {
	return model.SelectionContext{
		SelectedTracks: []model.Track{{ID: "track-1", Name: "Lead Vox"}},
		Cursor:         43.0,
	}
}

func presetTime() model.SelectionContext {
	return model.SelectionContext{
		TimeSelection: &model.Range{Start: 42.1, End: 44.1},
		Cursor:        43.0,
	}
}

func presetNone() model.SelectionContext {
	return model.SelectionContext{Cursor: 43.0}
}

func clip(id string, start, end float64) model.Clip {
	return model.Clip{ID: id, Start: &start, End: &end}
}

// summarizeContext renders the one-line status shown after switching presets.
func summarizeContext(sc model.SelectionContext) string {
	timeText := "none"
	if sc.TimeSelection != nil {
		timeText = fmt.Sprintf("%s -> %s", clock(sc.TimeSelection.Start), clock(sc.TimeSelection.End))
	}
	return fmt.Sprintf("items=%d, tracks=%d, time_selection=%s, cursor=%s",
		len(sc.SelectedClips), len(sc.SelectedTracks), timeText, clock(sc.Cursor))
}

func clock(t float64) string {
	minutes := int(t) / 60
	return fmt.Sprintf("%02d:%06.3f", minutes, t-float64(60*minutes))
}
