package ltree_test

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/creachadair/ltree"
	"github.com/creachadair/ltree/ast"
)

var benchInput []byte

// benchData returns a synthetic document of nested tables, built once.
func benchData(b *testing.B) []byte {
	if benchInput == nil {
		var buf bytes.Buffer
		w := ltree.NewWriter(&buf)
		w.BeginTable()
		for i := 0; i < 2000; i++ {
			w.WriteKey(fmt.Sprintf("field%d", i))
			w.BeginTable()
			w.WriteInt(int64(i))
			w.WriteFloat(float64(i) / 3)
			w.WriteString(fmt.Sprintf("value %d with 'some' text", i))
			w.WriteKey("ok")
			w.WriteBool(i%2 == 0)
			w.EndTable()
		}
		w.EndTable()
		if err := w.Close(); err != nil {
			b.Fatalf("Building benchmark input: %v", err)
		}
		benchInput = buf.Bytes()
		b.Logf("Benchmark input: %d bytes", len(benchInput))
	}
	return benchInput
}

func BenchmarkScanner(b *testing.B) {
	input := benchData(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec := ltree.NewScanner(bytes.NewReader(input))
		for {
			err := dec.Next()
			if err == io.EOF {
				break
			} else if err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}

			// Convert tokens to values, the way a consumer would.
			switch dec.Token() {
			case ltree.String:
				dec.Unquote()
			case ltree.Integer:
				dec.Int64()
			case ltree.Number:
				dec.Float64()
			}
		}
	}
}

func BenchmarkStream(b *testing.B) {
	input := benchData(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		st := ltree.NewStream(bytes.NewReader(input))
		if err := st.Parse(nopHandler{}); err != nil {
			b.Fatalf("Unexpected error: %v", err)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	input := benchData(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ast.ParseSingle(bytes.NewReader(input)); err != nil {
			b.Fatalf("Unexpected error: %v", err)
		}
	}
}

type nopHandler struct{}

func (nopHandler) BeginTable(ltree.Anchor) error { return nil }
func (nopHandler) EndTable(ltree.Anchor) error   { return nil }
func (nopHandler) Key(ltree.Anchor) error        { return nil }
func (nopHandler) Value(ltree.Anchor) error      { return nil }
func (nopHandler) EndOfInput(ltree.Anchor)       {}
