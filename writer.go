// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package ltree

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Formatting selects the layout of text produced by a Writer.
type Formatting int

const (
	// Compact renders a value on a single line: {a = 1, "b", [10] = true}.
	Compact Formatting = iota

	// Prettified renders one field per line, indented by nesting depth.
	Prettified
)

// writeState is the state of the writer's structural grammar.
type writeState byte

const (
	wStart      writeState = iota // nothing written yet
	wTableStart                   // "{" written, no fields yet
	wFieldStart                   // inside a table, between fields
	wKeyStart                     // "[" written, awaiting the key literal
	wKey                          // key literal written, awaiting "]"
	wKeyEnd                       // "] = " or "name = " written, awaiting the value
	wDone                         // a complete top-level value was written
	wError                        // terminal; the writer is unusable
)

var stateStr = [...]string{
	wStart:      "at start of output",
	wTableStart: "at start of table",
	wFieldStart: "between fields",
	wKeyStart:   "at start of key",
	wKey:        "inside key",
	wKeyEnd:     "after key",
	wDone:       "after end of document",
	wError:      "in error state",
}

// A Writer emits Lua table-constructor text one structural token at a time,
// validating that the calls observe the table grammar. Operations that
// would produce malformed output fail with a [*WriteError] and leave the
// writer unusable.
//
// A Writer is not safe for concurrent use without external synchronization.
type Writer struct {
	w         *bufio.Writer
	out       io.Writer
	ownOutput bool
	closed    bool

	format  Formatting
	iwidth  int
	ichar   byte
	maxBare int

	st     writeState
	stk    []wframe
	icache []byte // indentation buffer, reused between fields
}

// A wframe records the emission state of one open table.
type wframe struct {
	fields int    // fields written so far
	pos    int    // positional fields written so far
	comma  bool   // the next boundary's comma was already emitted
	cur    string // path element for the field being written
}

// NewWriter constructs a writer that emits text to w with default settings:
// compact formatting, two-space indentation when prettified, bare keys up
// to 64 bytes, and ownership of w.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic("ltree: writer has no output")
	}
	return &Writer{
		w: bufio.NewWriter(w), out: w, ownOutput: true,
		iwidth: 2, ichar: ' ', maxBare: 64,
	}
}

// SetFormat sets the output layout. It must be called before the first
// write.
func (w *Writer) SetFormat(f Formatting) { w.format = f }

// SetIndent sets the per-level indentation used by prettified output.
// It must be called before the first write.
func (w *Writer) SetIndent(width int, char byte) {
	if width < 0 {
		panic("ltree: negative indent width")
	}
	w.iwidth, w.ichar = width, char
	w.icache = nil
}

// SetMaxUnquotedKeyLength sets the longest key WriteKey will emit in the
// bare "name = value" form; longer keys are written bracketed and quoted.
// Setting 0 disables bare keys entirely.
func (w *Writer) SetMaxUnquotedKeyLength(n int) {
	if n < 0 {
		panic("ltree: negative key length")
	}
	w.maxBare = n
}

// CloseOutput configures whether Close closes the underlying writer, if
// the writer implements io.Closer. It is true by default.
func (w *Writer) CloseOutput(ok bool) { w.ownOutput = ok }

// Path renders the writer's current position as a Lua-like access path,
// in the same form the stream parser reports. At the top level the path
// is empty.
func (w *Writer) Path() string {
	var sb strings.Builder
	for _, f := range w.stk {
		sb.WriteString(f.cur)
	}
	return sb.String()
}

// BeginTable opens a table constructor, as a document value, a positional
// field, or the value of a preceding key.
func (w *Writer) BeginTable() error {
	switch w.st {
	case wStart:
	case wTableStart, wFieldStart:
		if err := w.sep(); err != nil {
			return err
		}
		w.nextField()
	case wKeyEnd:
	default:
		return w.fail("table not allowed %s", stateStr[w.st])
	}
	w.stk = append(w.stk, wframe{})
	w.st = wTableStart
	return w.emit("{")
}

// EndTable closes the current table constructor.
func (w *Writer) EndTable() error {
	switch w.st {
	case wTableStart:
	case wFieldStart:
		if w.format == Prettified {
			text := ",\n"
			if w.top().comma {
				text = "\n"
			}
			if err := w.emit(text + w.indent(len(w.stk)-1)); err != nil {
				return err
			}
		}
	default:
		return w.fail("end of table not allowed %s", stateStr[w.st])
	}
	w.stk = w.stk[:len(w.stk)-1]
	if len(w.stk) == 0 {
		w.st = wDone
	} else {
		w.st = wFieldStart
	}
	return w.emit("}")
}

// BeginKey opens a bracketed key expression. Exactly one non-nil literal
// must be written before the matching EndKey.
func (w *Writer) BeginKey() error {
	switch w.st {
	case wTableStart, wFieldStart:
		if err := w.sep(); err != nil {
			return err
		}
	default:
		return w.fail("key not allowed %s", stateStr[w.st])
	}
	w.st = wKeyStart
	return w.emit("[")
}

// EndKey closes a bracketed key expression and awaits the field value.
func (w *Writer) EndKey() error {
	if w.st != wKey {
		return w.fail("end of key not allowed %s", stateStr[w.st])
	}
	w.st = wKeyEnd
	return w.emit("] = ")
}

// WriteKey emits a string field key followed by "=". Keys that form a
// valid, unreserved identifier no longer than the configured limit are
// written bare; all others are written bracketed and quoted.
func (w *Writer) WriteKey(name string) error {
	switch w.st {
	case wTableStart, wFieldStart:
		if err := w.sep(); err != nil {
			return err
		}
	default:
		return w.fail("key not allowed %s", stateStr[w.st])
	}
	w.top().cur = stringPath(name)
	w.st = wKeyEnd
	if w.isBareKey(name) {
		return w.emit(name + " = ")
	}
	return w.emit("[" + Quote(name) + "] = ")
}

// isBareKey reports whether name may be emitted without brackets and
// quotes. Reserved words are screened by length before the set lookup.
func (w *Writer) isBareKey(name string) bool {
	return w.maxBare > 0 && len(name) <= w.maxBare && IsName(name) && !IsReserved(name)
}

// WriteString emits a double-quoted string literal, as a value or as the
// literal of an open key expression.
func (w *Writer) WriteString(s string) error {
	return w.literal(Quote(s), stringPath(s))
}

// WriteStringDelim emits a string literal quoted with delim, which must be
// a single or double quotation mark.
func (w *Writer) WriteStringDelim(s string, delim byte) error {
	q, err := QuoteDelim(s, delim)
	if err != nil {
		return w.failErr(err)
	}
	return w.literal(q, stringPath(s))
}

// WriteLongString emits a long-bracket string literal of the given level.
// It reports an error if s cannot be represented at that level.
func (w *Writer) WriteLongString(s string, level int) error {
	q, err := LongQuote(s, level)
	if err != nil {
		return w.failErr(err)
	}
	return w.literal(q, stringPath(s))
}

// WriteInt emits an integer literal.
func (w *Writer) WriteInt(v int64) error {
	return w.literal(FormatInt(v), "["+FormatInt(v)+"]")
}

// WriteFloat emits a float literal, using the constant spellings for NaN
// and the infinities.
func (w *Writer) WriteFloat(v float64) error {
	text := FormatFloat(v)
	return w.literal(text, "["+text+"]")
}

// WriteBool emits true or false.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.literal("true", "[true]")
	}
	return w.literal("false", "[false]")
}

// WriteNil emits a nil literal. Nil is not a value inside an open key
// expression; tables cannot be keyed by nil.
func (w *Writer) WriteNil() error {
	if w.st == wKeyStart {
		return w.fail("nil is not a valid table key")
	}
	return w.literal("nil", "")
}

// WriteComment emits text as a comment. In prettified form the comment
// occupies its own line as a "--" line comment when it has no newlines; in
// compact form, and for multi-line text, a long-bracket comment is used at
// the lowest level that can contain the text. A line comment between fields
// carries the preceding field's comma, since a comma written after it would
// be swallowed by the comment.
func (w *Writer) WriteComment(text string) error {
	switch w.st {
	case wStart, wTableStart, wFieldStart, wDone:
	default:
		return w.fail("comment not allowed %s", stateStr[w.st])
	}
	if w.format == Prettified && !strings.ContainsAny(text, "\n\r") {
		switch w.st {
		case wStart:
			return w.emit("-- " + text + "\n")
		case wDone:
			return w.emit("\n-- " + text)
		}
		line := "\n" + w.indent(len(w.stk)) + "-- " + text
		if w.st == wFieldStart && !w.top().comma {
			w.top().comma = true
			line = "," + line
		}
		return w.emit(line)
	}

	level := 0
	for strings.Contains(text, "]"+strings.Repeat("=", level)+"]") {
		level++
	}
	eqs := strings.Repeat("=", level)
	return w.emit("--[" + eqs + "[" + text + "]" + eqs + "]")
}

// literal emits a formatted literal according to the current state: a
// top-level value, a field value, or the literal of an open key.
func (w *Writer) literal(text, path string) error {
	switch w.st {
	case wStart:
		w.st = wDone
	case wTableStart, wFieldStart:
		if err := w.sep(); err != nil {
			return err
		}
		w.nextField()
		w.st = wFieldStart
	case wKeyStart:
		w.top().cur = path
		w.st = wKey
	case wKeyEnd:
		w.st = wFieldStart
	default:
		return w.fail("value not allowed %s", stateStr[w.st])
	}
	return w.emit(text)
}

// sep emits the separator that precedes a field: a comma after any earlier
// field, unless a comment already emitted it, and in prettified form a
// newline and indentation.
// Precondition: w.st is wTableStart or wFieldStart.
func (w *Writer) sep() error {
	f := w.top()
	f.fields++
	comma := f.fields > 1 && !f.comma
	f.comma = false
	switch {
	case w.format == Prettified:
		if comma {
			return w.emit(",\n" + w.indent(len(w.stk)))
		}
		return w.emit("\n" + w.indent(len(w.stk)))
	case comma:
		return w.emit(", ")
	}
	return nil
}

// nextField accounts a positional field in the current frame.
func (w *Writer) nextField() {
	f := w.top()
	f.pos++
	f.cur = fmt.Sprintf("[%d]", f.pos)
}

func (w *Writer) top() *wframe { return &w.stk[len(w.stk)-1] }

// indent returns the cached indentation for the given nesting depth.
func (w *Writer) indent(depth int) string {
	n := depth * w.iwidth
	for len(w.icache) < n {
		w.icache = append(w.icache, w.ichar)
	}
	return string(w.icache[:n])
}

// Flush writes any buffered output to the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }

// Close flushes buffered output and, if enabled, closes the underlying
// writer. It reports an error if the writer is already closed, or if the
// document is incomplete.
func (w *Writer) Close() error {
	if w.closed {
		return &WriteError{Message: "writer is already closed"}
	}
	w.closed = true
	var serr error
	if w.st != wDone && w.st != wStart && w.st != wError {
		serr = &WriteError{Path: w.Path(), Message: "document is incomplete"}
	}
	if err := w.w.Flush(); err != nil && serr == nil {
		serr = err
	}
	if c, ok := w.out.(io.Closer); ok && w.ownOutput {
		if err := c.Close(); err != nil && serr == nil {
			serr = err
		}
	}
	return serr
}

func (w *Writer) emit(text string) error {
	if w.closed {
		return w.fail("writer is closed")
	}
	if _, err := w.w.WriteString(text); err != nil {
		w.st = wError
		return err
	}
	return nil
}

// stringPath renders a string used as a key as a path element.
func stringPath(s string) string {
	if isBarePath(s) {
		return "." + s
	}
	return `["` + s + `"]`
}

func (w *Writer) fail(msg string, args ...any) error {
	return w.failErr(fmt.Errorf(msg, args...))
}

func (w *Writer) failErr(err error) error {
	w.st = wError
	return &WriteError{Path: w.Path(), Message: err.Error()}
}

// WriteError is the concrete type of structural errors reported by a
// Writer. Path locates the error as a Lua-like access path from the top of
// the document; it is empty at the top level.
type WriteError struct {
	Path    string
	Message string
}

// Error satisfies the error interface.
func (e *WriteError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("write at %s: %s", e.Path, e.Message)
	}
	return "write: " + e.Message
}
