// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package ltree implements a scanner, a stream parser, and a stream writer
// for the table-constructor subset of Lua: the literal syntax Lua source
// uses for data, such as {alpha = 1, "beta", [10] = true}.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for table-constructor
// input.  Construct a scanner from an io.Reader and call its Next method to
// iterate over the stream. Next advances to the next input token and
// returns nil, or reports an error:
//
//	s := ltree.NewScanner(input)
//	for s.Next() == nil {
//	   log.Printf("Next token: %v", s.Token())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other
// error indicates an I/O or lexical error in the input.
//
//	if s.Err() != io.EOF {
//	   log.Fatalf("Scanning failed: %v", err)
//	}
//
// The scanner recognizes Lua's full literal micro-grammar: single and
// double quoted strings with escapes, long-bracket strings and comments of
// any level, decimal and hexadecimal numbers, and the constant spellings
// nil, true, false, math.huge, -math.huge, and 0/0. Comments are skipped
// unless PreserveComments is enabled.
//
// # Streaming
//
// The Stream type implements an event-driven stream parser.  The parser
// works by calling methods on a Handler value to report the structure of
// the input. In case of error, parsing is terminated and an error of
// concrete type *ltree.SyntaxError is returned, locating the failure both
// by line and column and by a Lua-like access path such as .alpha[3].
//
// Construct a Stream from an io.Reader, and call its Parse method. Parse
// returns nil if the input was fully processed without error. If a Handler
// method reports an error, parsing stops and that error is returned.
//
//	s := ltree.NewStream(input)
//	if err := s.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// To parse a single value from the front of the input, call ParseOne. This
// method returns io.EOF if no further values are available.
//
// # Handlers
//
// The Handler interface accepts parser events from a Stream. The methods
// of a handler correspond to the syntax of table constructors:
//
//	Syntax     | Methods                   | Description
//	---------- | ------------------------- | ----------------------------------
//	table      | BeginTable, EndTable      | { ... }
//	key        | Key                       | name = value, [literal] = value
//	value      | Value                     | nil, true, false, number, string
//	--         | EndOfInput                | end of input
//
// Each method is passed an Anchor value that can be used to retrieve
// location and type information. The Anchor passed to a handler method is
// only valid for the duration of that method call; the handler must copy
// any data it needs to retain beyond the lifetime of the call.
//
// The parser ensures that corresponding BeginTable and EndTable methods
// are correctly paired, or that a SyntaxError is reported.
//
// # Writing
//
// The Writer type is the emission mirror of the parser: its methods write
// one structural token at a time, and a call sequence is valid exactly
// when the corresponding input would parse. Invalid sequences fail with a
// *ltree.WriteError rather than producing malformed text.
//
//	w := ltree.NewWriter(out)
//	w.BeginTable()
//	w.WriteKey("alpha")
//	w.WriteInt(1)
//	w.EndTable()
//	err := w.Close()
package ltree
