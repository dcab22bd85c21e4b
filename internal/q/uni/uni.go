// Package uni measures and cuts text by terminal display width, respecting grapheme clusters.
package uni

import (
	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// Options select the width rules of a CJK locale. The zero value measures as a non-East Asian terminal does.
type Options struct {
	EastAsianWidth   bool // ambiguous-width East Asian code points take 2 columns
	TreatEmojiAsWide bool // with EastAsianWidth, emoji take 2 columns
}

// TextWidth returns the text width of str for monospace fonts in terminals. If opts is nil, locale is assumed to be non-East Asian.
func TextWidth[T string | []byte](str T, opts *Options) int {
	return condition(opts).StringWidth(string(str))
}

// Truncate returns the longest prefix of s that fits in width columns. s is only cut between grapheme clusters, so combining marks and
// multi-rune emoji are never split. If opts is nil, locale is assumed to be non-East Asian.
func Truncate(s string, width int, opts *Options) string {
	cond := condition(opts)
	if width <= 0 {
		return ""
	}
	if cond.StringWidth(s) <= width {
		return s
	}

	iter := graphemes.FromString(s)
	w := 0
	for iter.Next() {
		gw := cond.StringWidth(iter.Value())
		if w+gw > width {
			return s[:iter.Start()]
		}
		w += gw
	}
	return s
}

// condition builds the runewidth rules for opts. Emoji count as narrow unless both East Asian width and wide emoji are requested.
func condition(opts *Options) *runewidth.Condition {
	var o Options
	if opts != nil {
		o = *opts
	}
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = o.EastAsianWidth
	cond.StrictEmojiNeutral = !(o.EastAsianWidth && o.TreatEmojiAsWide)
	return cond
}
