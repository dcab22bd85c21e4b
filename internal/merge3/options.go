package merge3

import (
	"fmt"
	"strings"

	"github.com/codalotl/textmerge/internal/xdiff"
)

// DefaultMarkerSize is the width of conflict markers when Options.MarkerSize is zero.
const DefaultMarkerSize = 7

// Level controls how hard Merge tries to avoid conflicts.
type Level int

const (
	LevelMinimal      Level = iota // every overlapping change is a conflict
	LevelEager                     // overlapping changes with identical results are not conflicts
	LevelZealous                   // LevelEager, then conflicts are re-diffed to shrink them and nearby conflicts are joined
	LevelZealousAlnum              // LevelZealous, and conflicts separated only by lines without letters or digits are joined
)

// Favor resolves conflicts automatically instead of marking them.
type Favor int

const (
	FavorNone   Favor = iota
	FavorOurs         // take side 1
	FavorTheirs       // take side 2
	FavorUnion        // take side 1, then side 2
)

var favorNames = []string{"none", "ours", "theirs", "union"}

func (f Favor) String() string {
	if f < 0 || int(f) >= len(favorNames) {
		return fmt.Sprintf("Favor(%d)", int(f))
	}
	return favorNames[f]
}

// ParseFavor parses "none", "ours", "theirs" or "union". The empty string is FavorNone.
func ParseFavor(name string) (Favor, error) {
	if name == "" {
		return FavorNone, nil
	}
	for i, n := range favorNames {
		if strings.EqualFold(name, n) {
			return Favor(i), nil
		}
	}
	return FavorNone, fmt.Errorf("merge3: unknown favor %q (want one of %s)", name, strings.Join(favorNames, ", "))
}

// mode is the clean atom mode a conflict takes under f.
func (f Favor) mode() Mode {
	switch f {
	case FavorOurs:
		return ModeOurs
	case FavorTheirs:
		return ModeTheirs
	case FavorUnion:
		return ModeBoth
	}
	return ModeConflict
}

// Style selects how conflicts are written.
type Style int

const (
	StyleMerge        Style = iota // ours and theirs only
	StyleDiff3                     // also show the ancestor's lines
	StyleZealousDiff3              // like StyleDiff3, with lines common to both sides moved out of the conflict
)

var styleNames = []string{"merge", "diff3", "zdiff3"}

func (s Style) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return styleNames[s]
}

// ParseStyle parses "merge", "diff3" or "zdiff3". The empty string is StyleMerge.
func ParseStyle(name string) (Style, error) {
	if name == "" {
		return StyleMerge, nil
	}
	for i, n := range styleNames {
		if strings.EqualFold(name, n) {
			return Style(i), nil
		}
	}
	return StyleMerge, fmt.Errorf("merge3: unknown conflict style %q (want one of %s)", name, strings.Join(styleNames, ", "))
}

// Options configures Merge. The zero value is a minimal-level merge with exact line comparison and default markers.
type Options struct {
	// Diff configures the two ancestor diffs and any refinement diffs. TrimCommonTail and IgnoreBlankLines do not apply to merges and are
	// ignored.
	Diff xdiff.Options

	Level Level
	Favor Favor
	Style Style

	// MarkerSize is the width of conflict markers. Zero means DefaultMarkerSize.
	MarkerSize int

	// Labels follow the markers of each section when non-empty.
	AncestorLabel string
	OursLabel     string
	TheirsLabel   string
}

// Validate reports whether o is usable.
func (o Options) Validate() error {
	if err := o.Diff.Validate(); err != nil {
		return err
	}
	if o.Level < LevelMinimal || o.Level > LevelZealousAlnum {
		return fmt.Errorf("merge3: unknown level %d", o.Level)
	}
	if o.Favor < FavorNone || o.Favor > FavorUnion {
		return fmt.Errorf("merge3: unknown favor %d", o.Favor)
	}
	if o.Style < StyleMerge || o.Style > StyleZealousDiff3 {
		return fmt.Errorf("merge3: unknown style %d", o.Style)
	}
	if o.MarkerSize < 0 {
		return fmt.Errorf("merge3: MarkerSize must not be negative, got %d", o.MarkerSize)
	}
	return nil
}

func (o Options) markerSize() int {
	if o.MarkerSize == 0 {
		return DefaultMarkerSize
	}
	return o.MarkerSize
}

// level is the effective level. Showing the ancestor only makes sense for conflicts that were not re-diffed.
func (o Options) level() Level {
	if o.Style != StyleMerge && o.Level > LevelEager {
		return LevelEager
	}
	return o.Level
}
