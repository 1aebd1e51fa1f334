package fieldstream_test

import (
	"errors"
	"testing"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
	"github.com/deepankarm/fieldstream/pkg/internal/partialjson"
)

func TestParsePartial(t *testing.T) {
	tests := []struct {
		name       string
		buf        string
		incomplete bool
		complete   bool
		response   any
		pending    bool
	}{
		{"empty", ``, true, false, nil, false},
		{"pending key", `{"resp`, true, false, nil, false},
		{"key without colon", `{"response"`, true, false, nil, false},
		{"open brace", `{`, false, false, nil, false},
		{"value not started", `{"response": `, false, false, nil, true},
		{"truncated string", `{"response": "Hel`, false, false, "Hel", true},
		{"closed string", `{"response": "Hello", `, true, false, nil, false},
		{"closed string, next key started", `{"response": "Hello", "x`, true, false, nil, false},
		{"closed string, next value open", `{"response": "Hello", "n": 1`, false, false, "Hello", false},
		{"complete", `{"response": "Hello"}`, false, true, "Hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := fieldstream.ParsePartial([]byte(tt.buf))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.IsIncomplete() != tt.incomplete {
				t.Fatalf("IsIncomplete() = %v, want %v", p.IsIncomplete(), tt.incomplete)
			}
			if tt.incomplete {
				if p.Fields() != nil || p.Raw() != nil {
					t.Error("Incomplete should carry no fields")
				}
				return
			}
			if p.Complete() != tt.complete {
				t.Errorf("Complete() = %v, want %v", p.Complete(), tt.complete)
			}
			if got := p.Fields()["response"]; got != tt.response {
				t.Errorf("response = %v, want %v", got, tt.response)
			}
			if got := p.Pending("response"); got != tt.pending {
				t.Errorf("Pending(response) = %v, want %v", got, tt.pending)
			}
		})
	}
}

func TestParsePartialNestedPendingKey(t *testing.T) {
	// A key still being written inside a nested object does not hold back
	// the top-level fields.
	p, err := fieldstream.ParsePartial([]byte(`{"response": "Hi", "meta": {"mo`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsIncomplete() {
		t.Fatal("expected a value")
	}
	if p.Fields()["response"] != "Hi" {
		t.Errorf("response = %v, want 'Hi'", p.Fields()["response"])
	}
}

func TestParsePartialSyntaxError(t *testing.T) {
	_, err := fieldstream.ParsePartial([]byte(`{"response": "Hi" "x"}`))
	var syntaxErr *partialjson.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *partialjson.SyntaxError, got %v", err)
	}
	if syntaxErr.Offset != 18 {
		t.Errorf("Offset = %d, want 18", syntaxErr.Offset)
	}
}

func TestIncomplete(t *testing.T) {
	p := fieldstream.Incomplete()
	if !p.IsIncomplete() || p.Complete() || p.Pending("response") {
		t.Errorf("Incomplete() = %+v", p)
	}
}
