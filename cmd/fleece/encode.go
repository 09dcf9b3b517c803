package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/phucvin/fleece/encoder"
	"github.com/phucvin/fleece/store"
)

func cmdEncode(out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("encode", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	compress := flagSet.String("compress", "none", "compression codec: none, zstd, s2, lz4")

	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(errOut, "fleece encode:", err)

		return 2
	}

	rest := flagSet.Args()
	if len(rest) != 2 {
		fmt.Fprintln(errOut, "usage: fleece encode [--compress=none|zstd|s2|lz4] <in.json> <out.fleece>")

		return 2
	}

	inPath, outPath := rest[0], rest[1]

	var raw []byte
	var err error

	if inPath == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(inPath)
	}

	if err != nil {
		fmt.Fprintln(errOut, "fleece encode:", err)

		return 1
	}

	v, err := decodeJSON(raw)
	if err != nil {
		fmt.Fprintln(errOut, "fleece encode:", err)

		return 1
	}

	doc, err := encoder.Encode(v)
	if err != nil {
		fmt.Fprintln(errOut, "fleece encode:", err)

		return 1
	}

	ctype, err := parseCompression(*compress)
	if err != nil {
		fmt.Fprintln(errOut, "fleece encode:", err)

		return 2
	}

	codec, err := store.CreateCodec(ctype, "fleece encode")
	if err != nil {
		fmt.Fprintln(errOut, "fleece encode:", err)

		return 2
	}

	stats, err := store.SaveStats(outPath, doc, codec)
	if err != nil {
		fmt.Fprintln(errOut, "fleece encode:", err)

		return 1
	}

	if ctype == store.CompressionNone {
		fmt.Fprintf(out, "wrote %s (%d bytes, %s)\n", outPath, len(doc), ctype)
	} else {
		fmt.Fprintf(out, "wrote %s (%d bytes, %s, %.1f%% smaller)\n", outPath, stats.CompressedSize, ctype, stats.SpaceSavings())
	}

	return 0
}

func parseCompression(s string) (store.CompressionType, error) {
	switch s {
	case "none", "":
		return store.CompressionNone, nil
	case "zstd":
		return store.CompressionZstd, nil
	case "s2":
		return store.CompressionS2, nil
	case "lz4":
		return store.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}
