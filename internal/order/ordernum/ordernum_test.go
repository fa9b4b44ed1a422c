package ordernum

import (
	"regexp"
	"testing"
)

var (
	baseFormat = regexp.MustCompile(`^ORD-\d{8}-[A-Z0-9]{4}$`)
	wideFormat = regexp.MustCompile(`^ORD-\d{8}-[A-Z0-9]{8}$`)
)

func TestNextFormat(t *testing.T) {
	g := New()
	for i := 0; i < 100; i++ {
		n := g.Next(1)
		if !baseFormat.MatchString(n) {
			t.Fatalf("unexpected order number format: %s", n)
		}
	}
}

func TestNextWidensSuffixOnLateAttempts(t *testing.T) {
	g := New()

	for attempt := 1; attempt <= widenAfter; attempt++ {
		if n := g.Next(attempt); !baseFormat.MatchString(n) {
			t.Fatalf("attempt %d: expected 4-char suffix, got %s", attempt, n)
		}
	}
	for attempt := widenAfter + 1; attempt <= widenAfter+2; attempt++ {
		if n := g.Next(attempt); !wideFormat.MatchString(n) {
			t.Fatalf("attempt %d: expected 8-char suffix, got %s", attempt, n)
		}
	}
}
