package sticker

import (
	"strings"

	"github.com/nbd-wtf/emoji"
)

// RunKind tags a Run as either plain text or a single emoji sequence.
type RunKind int

const (
	RunText RunKind = iota
	RunGlyph
)

type Run struct {
	Kind RunKind
	Text string
}

const (
	runeZWJ        = 0x200D
	runeVS16       = 0xFE0F
	runeKeycap     = 0x20E3
	runeSkinToneLo = 0x1F3FB
	runeSkinToneHi = 0x1F3FF
	runeRegionalLo = 0x1F1E6
	runeRegionalHi = 0x1F1FF
)

// Segment decomposes s into an ordered sequence of alternating text and glyph
// runs. Every rune of s belongs to exactly one run; concatenating the run
// texts reproduces s. A glyph run covers one complete emoji sequence: the base
// emoji plus any variation selectors, skin-tone modifiers, keycap combiners
// and ZWJ-joined continuations. Consecutive distinct emoji yield distinct runs.
func Segment(s string) []Run {
	runes := []rune(s)
	var runs []Run
	var text strings.Builder

	flushText := func() {
		if text.Len() > 0 {
			runs = append(runs, Run{Kind: RunText, Text: text.String()})
			text.Reset()
		}
	}

	i := 0
	for i < len(runes) {
		if n := emojiSequenceLen(runes[i:]); n > 0 {
			flushText()
			runs = append(runs, Run{Kind: RunGlyph, Text: string(runes[i : i+n])})
			i += n
			continue
		}
		text.WriteRune(runes[i])
		i++
	}
	flushText()
	return runs
}

// emojiSequenceLen reports how many runes at the start of rs form one emoji
// sequence, or 0 if rs does not start with an emoji.
func emojiSequenceLen(rs []rune) int {
	if len(rs) == 0 {
		return 0
	}

	// Keycap sequences: [#*0-9] VS16? U+20E3.
	if isKeycapBase(rs[0]) {
		j := 1
		if j < len(rs) && rs[j] == runeVS16 {
			j++
		}
		if j < len(rs) && rs[j] == runeKeycap {
			return j + 1
		}
	}

	if !emoji.IsEmoji(rs[0]) {
		return 0
	}

	// Flags are pairs of regional indicators.
	if rs[0] >= runeRegionalLo && rs[0] <= runeRegionalHi {
		if len(rs) > 1 && rs[1] >= runeRegionalLo && rs[1] <= runeRegionalHi {
			return 2
		}
		return 1
	}

	i := 1
	for i < len(rs) {
		switch {
		case rs[i] == runeVS16,
			rs[i] >= runeSkinToneLo && rs[i] <= runeSkinToneHi:
			i++
		case rs[i] == runeZWJ && i+1 < len(rs) && emoji.IsEmoji(rs[i+1]):
			i += 2
		default:
			return i
		}
	}
	return i
}

func isKeycapBase(r rune) bool {
	return r == '#' || r == '*' || (r >= '0' && r <= '9')
}
