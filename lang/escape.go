package lang

import (
	"regexp"
	"strings"
)

// Sentinels standing in for grammar characters that arrive through data.
// They are private-use code points, so they never collide with markup.
// Input that already holds one of them is kept apart by sentinelMark.
const (
	sentinelPlus   = "\uE000"
	sentinelLBrace = "\uE001"
	sentinelRBrace = "\uE002"
	sentinelRBrack = "\uE003"
	sentinelMark   = "\uE004"
)

var (
	escaper = strings.NewReplacer(
		"+", sentinelPlus,
		"{", sentinelLBrace,
		"}", sentinelRBrace,
		"]", sentinelRBrack,
		sentinelPlus, sentinelMark+sentinelPlus,
		sentinelLBrace, sentinelMark+sentinelLBrace,
		sentinelRBrace, sentinelMark+sentinelRBrace,
		sentinelRBrack, sentinelMark+sentinelRBrack,
		sentinelMark, sentinelMark+sentinelMark,
	)
	// Marked pairs are listed first so they win over the bare sentinels.
	unescaper = strings.NewReplacer(
		sentinelMark+sentinelPlus, sentinelPlus,
		sentinelMark+sentinelLBrace, sentinelLBrace,
		sentinelMark+sentinelRBrace, sentinelRBrace,
		sentinelMark+sentinelRBrack, sentinelRBrack,
		sentinelMark+sentinelMark, sentinelMark,
		sentinelRBrack, "]",
		sentinelRBrace, "}",
		sentinelLBrace, "{",
		sentinelPlus, "+",
	)
)

// Escape replaces the characters '+', '{', '}' and ']' with sentinels the
// tokenizer does not recognize. Sentinel code points already present in s
// are escaped too, so Unescape(Escape(s)) == s for every s.
func Escape(s string) string { return escaper.Replace(s) }

// Unescape reverses [Escape].
func Unescape(s string) string { return unescaper.Replace(s) }

var (
	reScript  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	reStyle   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	reComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	reTag     = regexp.MustCompile(`</?[a-zA-Z!?/][^<>]*>`)
)

// StripHTML removes script and style elements with their bodies, comments,
// and any other tags, repeating until nothing more matches. Whatever angle
// brackets remain are replaced by entities, so the result contains no '<'
// or '>' and StripHTML(StripHTML(s)) == StripHTML(s).
func StripHTML(s string) string {
	for {
		next := reScript.ReplaceAllString(s, "")
		next = reStyle.ReplaceAllString(next, "")
		next = reComment.ReplaceAllString(next, "")
		next = reTag.ReplaceAllString(next, "")

		if next == s {
			break
		}

		s = next
	}

	if strings.ContainsAny(s, "<>") {
		s = strings.NewReplacer("<", "&lt;", ">", "&gt;").Replace(s)
	}

	return s
}
