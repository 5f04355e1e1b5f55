package prefs

import "strings"

// ViewMode identifies how a list surface renders its items.
type ViewMode string

const (
	ViewModeGrid    ViewMode = "grid"
	ViewModeList    ViewMode = "list"
	ViewModeTable   ViewMode = "table"
	ViewModeCompact ViewMode = "compact"
)

// ViewModes lists the supported modes in display-cycle order.
var ViewModes = []ViewMode{ViewModeGrid, ViewModeList, ViewModeTable, ViewModeCompact}

// IsValid returns whether the mode is one of the supported values.
func (m ViewMode) IsValid() bool {
	switch m {
	case ViewModeGrid, ViewModeList, ViewModeTable, ViewModeCompact:
		return true
	default:
		return false
	}
}

// Next returns the mode after m in ViewModes, wrapping around.
func (m ViewMode) Next() ViewMode {
	for i, mode := range ViewModes {
		if mode == m {
			return ViewModes[(i+1)%len(ViewModes)]
		}
	}
	return ViewModes[0]
}

// ParseViewMode converts raw input to a ViewMode. ok is false for unknown values.
func ParseViewMode(raw string) (ViewMode, bool) {
	mode := ViewMode(strings.ToLower(strings.TrimSpace(raw)))
	return mode, mode.IsValid()
}

// NormalizeViewMode converts arbitrary persisted input to a valid mode,
// resolving missing or invalid values to fallback.
func NormalizeViewMode(raw string, fallback ViewMode) ViewMode {
	if mode, ok := ParseViewMode(raw); ok {
		return mode
	}
	return fallback
}
