package fieldstream_test

import (
	"testing"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

func TestEmitter(t *testing.T) {
	var e fieldstream.Emitter

	steps := []struct {
		value  string
		want   fieldstream.Delta
		ok     bool
		cursor string
	}{
		{"Hel", fieldstream.Delta{Text: "Hel"}, true, "Hel"},
		{"Hello", fieldstream.Delta{Text: "lo"}, true, "Hello"},
		{"Hello", fieldstream.Delta{}, false, "Hello"},
		{"Help", fieldstream.Delta{Text: "Help", Resync: true}, true, "Help"},
		{"", fieldstream.Delta{}, false, "Help"},
		{"Help me", fieldstream.Delta{Text: " me"}, true, "Help me"},
	}

	for i, s := range steps {
		got, ok := e.Next(s.value)
		if ok != s.ok || got != s.want {
			t.Errorf("step %d: Next(%q) = %+v, %v; want %+v, %v", i, s.value, got, ok, s.want, s.ok)
		}
		if e.Cursor() != s.cursor {
			t.Errorf("step %d: Cursor() = %q, want %q", i, e.Cursor(), s.cursor)
		}
	}
}

func TestEmitterZeroValue(t *testing.T) {
	var e fieldstream.Emitter
	if e.Cursor() != "" {
		t.Errorf("Cursor() = %q, want empty", e.Cursor())
	}
	if _, ok := e.Next(""); ok {
		t.Error("expected no delta for empty value")
	}
}
