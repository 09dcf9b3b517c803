package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phucvin/fleece/format"
	"github.com/phucvin/fleece/store"
	"github.com/phucvin/fleece/value"
)

func cmdGet(out, errOut io.Writer, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "usage: fleece get <doc.fleece> <dotted.path>")

		return 2
	}

	path, dotted := args[0], args[1]

	doc, err := store.Load(path)
	if err != nil {
		fmt.Fprintln(errOut, "fleece get:", err)

		return 1
	}

	root, err := value.Root(doc)
	if err != nil {
		fmt.Fprintln(errOut, "fleece get:", err)

		return 1
	}

	v, err := navigate(root, splitPath(dotted))
	if err != nil {
		fmt.Fprintln(errOut, "fleece get:", err)

		return 1
	}

	if v.IsAbsent() {
		fmt.Fprintln(errOut, "fleece get: no value at", dotted)

		return 1
	}

	fmt.Fprintln(out, render(v))

	return 0
}

// splitPath breaks a dotted path like "a.b.2.c" into its segments; an
// empty path yields no segments, which navigate treats as the root.
func splitPath(dotted string) []string {
	if dotted == "" {
		return nil
	}

	return strings.Split(dotted, ".")
}

// navigate walks v through segments, treating each as an array index
// when the current value is an array and as a dict key when it is a
// dict; an index that is negative or past the end yields no value.
// Only the collections actually on the path are ever parsed; sibling
// keys and elements are left untouched.
func navigate(v value.Value, segments []string) (value.Value, error) {
	for _, seg := range segments {
		if v.IsAbsent() {
			return value.Value{}, nil
		}

		switch v.Kind() {
		case format.KindArray:
			arr, err := v.AsArray()
			if err != nil {
				return value.Value{}, err
			}

			idx, err := strconv.Atoi(seg)
			if err != nil {
				return value.Value{}, fmt.Errorf("%q is not a valid array index", seg)
			}

			next, err := arr.Get(idx)
			if err != nil {
				return value.Value{}, err
			}

			v = next
		case format.KindDict:
			d, err := v.AsDict()
			if err != nil {
				return value.Value{}, err
			}

			next, err := d.Get(seg)
			if err != nil {
				return value.Value{}, err
			}

			v = next
		default:
			return value.Value{}, fmt.Errorf("cannot descend into %s at %q", v.Kind(), seg)
		}
	}

	return v, nil
}

// render formats v as a compact JSON-like text representation.
func render(v value.Value) string {
	if v.IsAbsent() {
		return "null"
	}

	switch v.Kind() {
	case format.KindNull:
		return "null"
	case format.KindBool:
		b, _ := v.AsBool()

		return strconv.FormatBool(b)
	case format.KindNumber:
		if v.IsInteger() {
			if i, err := v.AsInt(); err == nil {
				return strconv.FormatInt(i, 10)
			}

			u, _ := v.AsUint()

			return strconv.FormatUint(u, 10)
		}

		f, _ := v.AsFloat()

		return strconv.FormatFloat(f, 'g', -1, 64)
	case format.KindString:
		s, _ := v.Str()

		return strconv.Quote(s)
	case format.KindBinary:
		b, _ := v.Binary()

		return fmt.Sprintf("<%d bytes binary>", len(b))
	case format.KindArray:
		arr, _ := v.AsArray()

		parts := make([]string, arr.Len())
		for i := range parts {
			parts[i] = render(arr.MustGet(i))
		}

		return "[" + strings.Join(parts, ",") + "]"
	case format.KindDict:
		d, _ := v.AsDict()

		keys := d.Keys()
		parts := make([]string, len(keys))

		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ":" + render(d.MustGet(k))
		}

		return "{" + strings.Join(parts, ",") + "}"
	default:
		return "null"
	}
}
