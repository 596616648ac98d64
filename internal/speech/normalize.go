// Package speech prepares text for the voice pipeline: markup and emoji
// stripping, Brazilian-Portuguese currency wording, and the fixed phrase
// catalog the client prefetches.
package speech

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	fencedCodePattern   = regexp.MustCompile("(?s)```.*?```")
	inlineCodePattern   = regexp.MustCompile("`[^`]*`")
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+`)
)

// Normalize strips markup and emoji so arbitrary assistant text sounds
// natural when spoken. Newline runs become sentence breaks (". "),
// whitespace collapses, and the result is trimmed. Empty output means
// "nothing to speak", never an error. Normalize is idempotent.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	raw = fencedCodePattern.ReplaceAllString(raw, " ")
	raw = inlineCodePattern.ReplaceAllString(raw, " ")
	raw = markdownLinkPattern.ReplaceAllString(raw, "$1")
	raw = urlPattern.ReplaceAllString(raw, " ")

	var b strings.Builder
	b.Grow(len(raw))
	pendingSpace := false
	pendingBreak := false

	flush := func() {
		if b.Len() == 0 {
			pendingSpace = false
			pendingBreak = false
			return
		}
		if pendingSpace {
			b.WriteByte(' ')
		}
		if pendingBreak {
			b.WriteString(". ")
		}
		pendingSpace = false
		pendingBreak = false
	}

	for _, r := range raw {
		switch {
		case r == '‍' || r == '️' || r == '⃣':
			// Emoji joiners and variation selectors.
			continue
		case isMarkdownEmphasis(r):
			continue
		case unicode.In(r, unicode.So, unicode.Sk):
			// Emoji and decorative symbol glyphs.
			continue
		case unicode.IsControl(r) && r != '\n' && r != '\r':
			continue
		case r == '\n' || r == '\r':
			pendingBreak = true
		case unicode.IsSpace(r):
			pendingSpace = true
		default:
			flush()
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}

func isMarkdownEmphasis(r rune) bool {
	switch r {
	case '*', '_', '~', '`', '#':
		return true
	default:
		return false
	}
}
