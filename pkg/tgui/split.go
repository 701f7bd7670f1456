package tgui

import "strings"

// SplitLines splits a logical HTML message into chunks that are safe to send
// to Telegram one by one, each at most limit runes.
//
// Lines are accumulated greedily: a new chunk starts when appending the next
// line would exceed the limit. Line order is preserved and, as long as no
// single line exceeds the limit on its own, concatenating the chunks with
// "\n" reproduces the original message.
//
// A single line longer than the limit is hard-truncated with a "…" marker.
// The cut never lands inside an HTML entity or tag, so each chunk stays safe
// for ParseMode=HTML.
func SplitLines(s string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}
	if len([]rune(s)) <= limit {
		return []string{s}
	}

	lines := strings.Split(s, "\n")
	chunks := make([]string, 0, 2)

	var cur strings.Builder
	curRunes := 0

	flush := func() {
		if curRunes == 0 {
			return
		}
		chunks = append(chunks, cur.String())
		cur.Reset()
		curRunes = 0
	}

	for _, line := range lines {
		lr := len([]rune(line))
		if lr > limit {
			// Last resort: should not happen with bounded catalog data.
			line = truncSafe(line, limit)
			lr = len([]rune(line))
		}

		// +1 for the joining newline.
		need := lr
		if curRunes > 0 {
			need++
		}
		if curRunes+need > limit {
			flush()
		}
		if curRunes > 0 {
			cur.WriteByte('\n')
			curRunes++
		}
		cur.WriteString(line)
		curRunes += lr
	}
	flush()

	if len(chunks) == 0 {
		chunks = []string{""}
	}
	return chunks
}

// truncSafe truncates s to at most limit runes (including the "…" marker),
// backing the cut off so it cannot split an HTML entity ("&...;") or land
// inside a tag ("<...>").
func truncSafe(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	cut := limit - 1 // room for the marker

	// If the nearest '&' or '<' before the cut is still open, move the cut
	// in front of it so no entity or tag is split.
	for i := cut - 1; i >= 0; i-- {
		r := rs[i]
		if r == ';' || r == '>' {
			break
		}
		if r == '&' || r == '<' {
			cut = i
			break
		}
	}
	return string(rs[:cut]) + "…"
}
