package report

import (
	"fmt"
	"strings"
	"testing"
)

func TestUnifiedDiff(t *testing.T) {
	before := "one\ntwo\nemail: ada@example.org\nfour\nfive\nsix\nseven\neight\nnine\nten\n"
	after := strings.Replace(before, "ada@example.org", "[REDACTED:EMAIL]", 1)

	got := UnifiedDiff("notes.txt", before, after)
	want := "--- a/notes.txt\n+++ b/notes.txt\n" +
		"@@ -1,6 +1,6 @@\n" +
		" one\n two\n-email: ada@example.org\n+email: [REDACTED:EMAIL]\n four\n five\n six\n"
	if got != want {
		t.Fatalf("diff mismatch\n got: %q\nwant: %q", got, want)
	}
	if UnifiedDiff("x", before, before) != "" {
		t.Fatal("equal inputs must produce no diff")
	}
}

func TestUnifiedDiff_SeparateHunks(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("line%02d", i))
	}
	before := strings.Join(lines, "\n") + "\n"
	mod := append([]string(nil), lines...)
	mod[1] = "changed-a"
	mod[18] = "changed-b"
	after := strings.Join(mod, "\n") + "\n"

	got := UnifiedDiff("f", before, after)
	if n := strings.Count(got, "@@ -"); n != 2 {
		t.Fatalf("expected 2 hunks, got %d:\n%s", n, got)
	}
	if !strings.Contains(got, "@@ -1,5 +1,5 @@") || !strings.Contains(got, "@@ -16,5 +16,5 @@") {
		t.Fatalf("unexpected hunk headers:\n%s", got)
	}
}
