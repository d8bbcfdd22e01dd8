package message

import (
	"unicode"
	"unicode/utf8"
)

// Reply shapes outgoing reply text for a message context. In a direct chat
// the text is returned with its first letter upper-cased and the sender is
// ignored. In a room the text is prefixed with the sender's nickname when
// withNickname is set and returned unchanged otherwise. Protocol-level
// escaping is the transport's concern, not Reply's.
func Reply(kind Kind, sender, text string, withNickname bool) string {
	switch kind {
	case Direct:
		return upperFirst(text)
	default:
		if withNickname {
			return sender + ": " + text
		}
		return text
	}
}

// upperFirst upper-cases the first rune of s.
func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 || r == utf8.RuneError && n == 1 {
		return s
	}
	u := unicode.ToUpper(r)
	if u == r {
		return s
	}
	return string(u) + s[n:]
}
