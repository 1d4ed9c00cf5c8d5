// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package ltree_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/creachadair/ltree"
)

func ExampleScanner() {
	s := ltree.NewScanner(strings.NewReader(`{x = 1, "two"}`))
	for s.Next() == nil {
		fmt.Println(s.Token(), string(s.Text()))
	}
	// Output:
	// "{" {
	// name x
	// "=" =
	// integer 1
	// "," ,
	// string "two"
	// "}" }
}

func ExampleWriter() {
	var buf strings.Builder
	w := ltree.NewWriter(&buf)

	w.BeginTable()
	w.WriteKey("alpha")
	w.WriteInt(1)
	w.WriteString("beta")
	w.BeginKey()
	w.WriteInt(10)
	w.EndKey()
	w.WriteBool(true)
	w.EndTable()
	if err := w.Close(); err != nil {
		log.Fatalf("Close: %v", err)
	}

	fmt.Println(buf.String())
	// Output:
	// {alpha = 1, "beta", [10] = true}
}
