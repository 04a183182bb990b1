package analytics

import (
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
	"mvdan.cc/xurls/v2"
)

// LinkDetector finds URL-like substrings in message text.
type LinkDetector interface {
	FindLinks(text string) []string
}

// RegexpLinkDetector matches links with a compiled regular expression.
type RegexpLinkDetector struct {
	re *regexp.Regexp
}

// NewLinkDetector returns a detector that finds links with or without a
// scheme ("http://x.co", "example.com/path").
func NewLinkDetector() *RegexpLinkDetector {
	return &RegexpLinkDetector{re: xurls.Relaxed()}
}

// NewStrictLinkDetector returns a detector that only matches links carrying
// a scheme.
func NewStrictLinkDetector() *RegexpLinkDetector {
	return &RegexpLinkDetector{re: xurls.Strict()}
}

func (d *RegexpLinkDetector) FindLinks(text string) []string {
	return d.re.FindAllString(text, -1)
}

// Compiling the relaxed pattern is expensive, so the default is shared.
var defaultLinkDetector = sync.OnceValue(func() LinkDetector {
	return NewLinkDetector()
})

// EmojiSet reports whether a single code point is an emoji.
type EmojiSet interface {
	Contains(r rune) bool
}

// NewEmojiSet returns the default emoji set, built once from the gomoji
// catalogue. Every code point that appears in a catalogued emoji is a member,
// so skin-tone modifiers and regional indicators count on their own.
// Sequence glue (ZWJ, variation selectors, the keycap mark, tag characters)
// and ASCII keycap bases are not members. The set is shared and must not be
// modified.
func NewEmojiSet() RuneSet {
	return defaultEmojiSet()
}

var defaultEmojiSet = sync.OnceValue(func() RuneSet {
	s := make(RuneSet)
	for _, e := range gomoji.AllEmojis() {
		for _, r := range e.Character {
			if !isSequenceMark(r) {
				s[r] = struct{}{}
			}
		}
	}
	return s
})

func isSequenceMark(r rune) bool {
	switch {
	case r < utf8.RuneSelf:
		return true
	case r == '\u200d', r == '\ufe0e', r == '\ufe0f', r == '\u20e3':
		return true
	case r >= 0xe0020 && r <= 0xe007f:
		return true
	}
	return false
}

// RuneSet is a fixed EmojiSet listing its members explicitly.
type RuneSet map[rune]struct{}

// NewRuneSet builds a RuneSet from the runes of each string.
func NewRuneSet(members ...string) RuneSet {
	s := make(RuneSet)
	for _, m := range members {
		for _, r := range m {
			s[r] = struct{}{}
		}
	}
	return s
}

func (s RuneSet) Contains(r rune) bool {
	_, ok := s[r]
	return ok
}
