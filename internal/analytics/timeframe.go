package analytics

import (
	"time"
)

// Window is a resolved absolute time range. A zero bound means that side is
// open ended.
type Window struct {
	Start time.Time
	End   time.Time
}

const (
	PresetWeek    = "7d"
	PresetMonth   = "30d"
	PresetQuarter = "90d"
	PresetYTD     = "ytd"
	PresetCustom  = "custom"

	defaultPresetDays = 30
)

// ResolveWindow turns a preset or explicit bounds into an absolute window
// anchored at now. An absent or unrecognized preset resolves to the default
// 30 day window. Custom bounds must both be RFC3339; if either is missing or
// unparsable the whole selection falls back to the default window.
//
// Resolution is anchored to now at call time, so two calls made moments apart
// resolve to slightly different absolute windows. Callers that cache by
// resolved window inherit that drift.
func ResolveWindow(preset, from, to string, now time.Time) Window {
	switch preset {
	case PresetWeek:
		return Window{Start: now.AddDate(0, 0, -7), End: now}
	case PresetQuarter:
		return Window{Start: now.AddDate(0, 0, -90), End: now}
	case PresetYTD:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return Window{Start: start, End: now}
	case PresetCustom:
		start, startErr := time.Parse(time.RFC3339, from)
		end, endErr := time.Parse(time.RFC3339, to)
		if startErr != nil || endErr != nil {
			return defaultWindow(now)
		}
		return Window{Start: start, End: end}
	case PresetMonth:
		return defaultWindow(now)
	default:
		return defaultWindow(now)
	}
}

func defaultWindow(now time.Time) Window {
	return Window{Start: now.AddDate(0, 0, -defaultPresetDays), End: now}
}
