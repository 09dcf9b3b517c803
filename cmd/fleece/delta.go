package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/phucvin/fleece/mutable"
	"github.com/phucvin/fleece/store"
	"github.com/phucvin/fleece/value"
)

func cmdDelta(out, errOut io.Writer, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "usage: fleece delta <doc.fleece> key=value [key=value ...]")

		return 2
	}

	path, edits := args[0], args[1:]

	doc, err := store.Load(path)
	if err != nil {
		fmt.Fprintln(errOut, "fleece delta:", err)

		return 1
	}

	root, err := value.Root(doc)
	if err != nil {
		fmt.Fprintln(errOut, "fleece delta:", err)

		return 1
	}

	d, err := mutable.DictFromValue(root)
	if err != nil {
		fmt.Fprintln(errOut, "fleece delta:", err)

		return 1
	}

	for _, edit := range edits {
		key, val, ok := strings.Cut(edit, "=")
		if !ok {
			fmt.Fprintf(errOut, "fleece delta: invalid edit %q, want key=value\n", edit)

			return 2
		}

		if val == "~" {
			d.Remove(key)

			continue
		}

		d.Set(key, parseScalar(val))
	}

	if err := store.AppendDelta(path, d); err != nil {
		fmt.Fprintln(errOut, "fleece delta:", err)

		return 1
	}

	fmt.Fprintf(out, "appended delta to %s\n", path)

	return 0
}
