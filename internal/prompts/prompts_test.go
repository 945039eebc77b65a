package prompts

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClipKeepsWindowAroundStrayBytes(t *testing.T) {
	t.Parallel()

	// A latin-1 byte early in an over-limit document must not shrink the
	// clipped window below the ceiling.
	content := "caf\xe9 " + strings.Repeat("a", 500)
	got := Clip(content, 100)

	if !strings.HasSuffix(got, TruncationMarker) {
		t.Fatalf("marker missing: %q", got)
	}
	kept := strings.TrimSuffix(got, TruncationMarker)
	if kept != content[:100] {
		t.Fatalf("kept %d bytes, want the full 100-byte window: %q", len(kept), kept)
	}
}

func TestClipTrimsRuneSplitAtCeiling(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		tail string
	}{
		{"two-byte rune", "é"},
		{"four-byte rune", "\U0001f642"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			head := strings.Repeat("a", 101-len(tc.tail))
			content := head + tc.tail + strings.Repeat("b", 50)

			got := Clip(content, 100)
			kept := strings.TrimSuffix(got, TruncationMarker)
			if kept != head {
				t.Fatalf("kept %q, want the split rune dropped whole", kept)
			}
			if !utf8.ValidString(kept) {
				t.Fatalf("clipped window not valid UTF-8: %q", kept)
			}
		})
	}
}

func TestClipNoopBelowLimit(t *testing.T) {
	t.Parallel()

	if got := Clip("short", 100); got != "short" {
		t.Fatalf("Clip altered content below the ceiling: %q", got)
	}
	long := strings.Repeat("x", 500)
	if got := Clip(long, 0); got != long {
		t.Fatalf("non-positive limit must disable clipping")
	}
}
