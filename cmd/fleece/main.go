// Command fleece is a small CLI over the store/encoder/value packages:
// encode a JSON document into a fleece file, look up a value by dotted
// path without decoding the rest of the document, or append a delta
// against an existing file.
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

func run(out, errOut io.Writer, args []string) int {
	if len(args) == 0 {
		printUsage(errOut)

		return 2
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "encode":
		return cmdEncode(out, errOut, rest)
	case "get":
		return cmdGet(out, errOut, rest)
	case "delta":
		return cmdDelta(out, errOut, rest)
	case "-h", "--help", "help":
		printUsage(out)

		return 0
	default:
		fmt.Fprintf(errOut, "fleece: unknown command %q\n", cmd)
		printUsage(errOut)

		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  fleece encode [--compress=none|zstd|s2|lz4] <in.json> <out.fleece>")
	fmt.Fprintln(w, "  fleece get <doc.fleece> <dotted.path>")
	fmt.Fprintln(w, "  fleece delta <doc.fleece> key=value [key=value ...]")
}
