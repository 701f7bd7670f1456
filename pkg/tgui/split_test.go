package tgui

import (
	"strings"
	"testing"
)

func TestSplitLinesShortPassThrough(t *testing.T) {
	in := "hello\nworld"
	out := SplitLines(in, 4096)
	if len(out) != 1 || out[0] != in {
		t.Fatalf("expected single untouched chunk, got %q", out)
	}
}

func TestSplitLinesGreedyAndReassembles(t *testing.T) {
	line := strings.Repeat("x", 100)
	var b strings.Builder
	for i := 0; i < 50; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	in := b.String()

	out := SplitLines(in, 1000)
	if len(out) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(out))
	}
	for i, c := range out {
		if n := len([]rune(c)); n > 1000 {
			t.Fatalf("chunk %d has %d runes, over limit", i, n)
		}
	}
	if got := strings.Join(out, "\n"); got != in {
		t.Fatalf("chunks do not reassemble the original message")
	}
}

func TestSplitLinesKeepsLineOrder(t *testing.T) {
	lines := []string{"aaa", "bbb", "ccc", "ddd", "eee"}
	out := SplitLines(strings.Join(lines, "\n"), 8)
	joined := strings.Join(out, "\n")
	prev := -1
	for _, l := range lines {
		i := strings.Index(joined, l)
		if i < 0 {
			t.Fatalf("line %q missing from output", l)
		}
		if i < prev {
			t.Fatalf("line %q out of order", l)
		}
		prev = i
	}
}

func TestSplitLinesTruncatesOversizedLine(t *testing.T) {
	in := strings.Repeat("a", 5000)
	out := SplitLines(in, 4096)
	if len(out) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(out))
	}
	if n := len([]rune(out[0])); n > 4096 {
		t.Fatalf("chunk has %d runes, over limit", n)
	}
	if !strings.HasSuffix(out[0], "…") {
		t.Fatalf("expected truncation marker")
	}
}

func TestTruncSafeDoesNotSplitEntity(t *testing.T) {
	// Place an entity right at the cut point.
	in := strings.Repeat("a", 95) + "&amp;" + strings.Repeat("b", 100)
	got := truncSafe(in, 98)
	if strings.Contains(got, "&a") && !strings.Contains(got, "&amp;") {
		t.Fatalf("entity was split: %q", got)
	}
	if strings.HasSuffix(strings.TrimSuffix(got, "…"), "&") {
		t.Fatalf("dangling ampersand at cut: %q", got)
	}
}

func TestTruncSafeDoesNotSplitTag(t *testing.T) {
	in := strings.Repeat("a", 90) + `<a href="tg://user?id=42">name</a>` + strings.Repeat("b", 100)
	got := truncSafe(in, 100)
	trimmed := strings.TrimSuffix(got, "…")
	if i := strings.LastIndex(trimmed, "<"); i >= 0 {
		if !strings.Contains(trimmed[i:], ">") {
			t.Fatalf("tag was split: %q", got)
		}
	}
}

func TestTruncRunes(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel…"},
		{"héllo", 2, "hé…"},
		{"", 3, ""},
		{"abc", 0, ""},
	}
	for _, c := range cases {
		if got := TruncRunes(c.in, c.n); got != c.want {
			t.Fatalf("TruncRunes(%q,%d)=%q want %q", c.in, c.n, got, c.want)
		}
	}
}
