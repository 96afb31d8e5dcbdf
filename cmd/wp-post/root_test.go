package main

import "testing"

func TestFlagFormat(t *testing.T) {
	t.Cleanup(func() { flagMarkdown, flagRaw = false, false })

	flagMarkdown, flagRaw = false, false
	if got := flagFormat(); got != "" {
		t.Errorf("no flags: %q, want empty", got)
	}
	flagMarkdown = true
	if got := flagFormat(); got != "gutenberg" {
		t.Errorf("--markdown: %q", got)
	}
	flagMarkdown, flagRaw = false, true
	if got := flagFormat(); got != "raw" {
		t.Errorf("--raw: %q", got)
	}
}
