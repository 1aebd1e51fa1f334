package fieldstream_bench

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

// ============================================================================
// Benchmark Fixtures
// ============================================================================

var (
	shortDoc = []byte(`{"response": "Hello world", "mood": "calm"}`)
	longDoc  = buildDoc(4096)
	deepDoc  = []byte(`{"meta": {"a": {"b": {"c": [1, 2, {"d": [true, null, "x"]}]}}}, "response": "nested first"}`)
)

// buildDoc returns a document whose response field holds about n bytes of
// text with escapes sprinkled in.
func buildDoc(n int) []byte {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(`The quick \"brown\" fox jumps over the lazy dog.\n`)
	}
	return []byte(`{"response": "` + b.String() + `", "tokens": 1234}`)
}

// ============================================================================
// Benchmarks: ParsePartial (one parse of a whole buffer)
// ============================================================================

func BenchmarkParsePartial_Short(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := fieldstream.ParsePartial(shortDoc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParsePartial_Long(b *testing.B) {
	b.SetBytes(int64(len(longDoc)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := fieldstream.ParsePartial(longDoc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParsePartial_Deep(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := fieldstream.ParsePartial(deepDoc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParsePartial_Truncated(b *testing.B) {
	half := longDoc[:len(longDoc)/2]
	b.SetBytes(int64(len(half)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p, err := fieldstream.ParsePartial(half)
		if err != nil {
			b.Fatal(err)
		}
		if p.Complete() {
			b.Fatal("half a document parsed as complete")
		}
	}
}

// Comparison: json.Unmarshal on the same document as BenchmarkParsePartial_Long
func BenchmarkParsePartial_StdlibUnmarshal(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var m map[string]any
		if err := json.Unmarshal(longDoc, &m); err != nil {
			b.Fatal(err)
		}
	}
}
