package encoder_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phucvin/fleece/encoder"
	"github.com/phucvin/fleece/errs"
	"github.com/phucvin/fleece/value"
)

func root(t *testing.T, buf []byte) value.Value {
	t.Helper()

	v, err := value.Root(buf)
	require.NoError(t, err)

	return v
}

func TestEncodeNull(t *testing.T) {
	buf, err := encoder.Encode(nil)
	require.NoError(t, err)

	v := root(t, buf)
	assert.True(t, v.IsNull())
}

func TestEncodeSmallInt(t *testing.T) {
	buf, err := encoder.Encode(int64(-1))
	require.NoError(t, err)

	v := root(t, buf)

	i, err := v.AsInt()
	require.NoError(t, err)
	assert.EqualValues(t, -1, i)
}

func TestEncodeLongInt(t *testing.T) {
	buf, err := encoder.Encode(int64(1_000_000_000))
	require.NoError(t, err)

	v := root(t, buf)

	i, err := v.AsInt()
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_000_000, i)
}

func TestEncodeLargeUint64RoundTripsThroughAsUint(t *testing.T) {
	const big = uint64(1) << 63 // exceeds math.MaxInt64

	buf, err := encoder.Encode(big)
	require.NoError(t, err)

	v := root(t, buf)

	u, err := v.AsUint()
	require.NoError(t, err)
	assert.EqualValues(t, big, u)

	_, err = v.AsInt()
	assert.ErrorIs(t, err, errs.ErrIntegerOutOfRange)
}

func TestEncodeNegativeIntRejectedByAsUint(t *testing.T) {
	buf, err := encoder.Encode(int64(-42))
	require.NoError(t, err)

	v := root(t, buf)

	_, err = v.AsUint()
	assert.ErrorIs(t, err, errs.ErrIntegerOutOfRange)
}

func TestEncodeFloat(t *testing.T) {
	buf, err := encoder.Encode(3.5)
	require.NoError(t, err)

	v := root(t, buf)

	f, err := v.AsFloat()
	require.NoError(t, err)
	assert.InDelta(t, 3.5, f, 0)
}

func TestEncodeBoolAndFalse(t *testing.T) {
	buf, err := encoder.Encode(false)
	require.NoError(t, err)

	v := root(t, buf)

	b, err := v.AsBool()
	require.NoError(t, err)
	assert.False(t, b)
}

func TestEncodeDictSortedKeys(t *testing.T) {
	buf, err := encoder.Encode(map[string]any{
		"b": int64(2),
		"a": int64(1),
	})
	require.NoError(t, err)

	v := root(t, buf)

	d, err := v.AsDict()
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"a", "b"}, d.Keys())

	av, err := d.Get("a")
	require.NoError(t, err)
	ai, err := av.AsInt()
	require.NoError(t, err)
	assert.EqualValues(t, 1, ai)
}

func TestEncodeArray(t *testing.T) {
	buf, err := encoder.Encode([]any{int64(1), "two", 3.0})
	require.NoError(t, err)

	v := root(t, buf)

	arr, err := v.AsArray()
	require.NoError(t, err)
	require.Equal(t, 3, arr.Len())

	el0, err := arr.Get(0)
	require.NoError(t, err)
	i0, err := el0.AsInt()
	require.NoError(t, err)
	assert.EqualValues(t, 1, i0)

	el1, err := arr.Get(1)
	require.NoError(t, err)
	s1, err := el1.Str()
	require.NoError(t, err)
	assert.Equal(t, "two", s1)
}

func TestEncodeStringInterning(t *testing.T) {
	buf, err := encoder.Encode([]any{"foo", "foo", "foo"})
	require.NoError(t, err)

	v := root(t, buf)

	arr, err := v.AsArray()
	require.NoError(t, err)
	require.Equal(t, 3, arr.Len())

	p0, err := arr.Get(0)
	require.NoError(t, err)
	p1, err := arr.Get(1)
	require.NoError(t, err)
	p2, err := arr.Get(2)
	require.NoError(t, err)

	assert.Equal(t, p0.Pos(), p1.Pos())
	assert.Equal(t, p1.Pos(), p2.Pos())
}

func TestEncodeNestedLazy(t *testing.T) {
	buf, err := encoder.Encode(map[string]any{
		"items": []any{
			map[string]any{"name": "widget", "qty": int64(3)},
			map[string]any{"name": "gadget", "qty": int64(7)},
		},
	})
	require.NoError(t, err)

	v := root(t, buf)

	d, err := v.AsDict()
	require.NoError(t, err)

	items, err := d.Get("items")
	require.NoError(t, err)

	arr, err := items.AsArray()
	require.NoError(t, err)
	require.Equal(t, 2, arr.Len())

	second, err := arr.Get(1)
	require.NoError(t, err)

	sd, err := second.AsDict()
	require.NoError(t, err)

	name, err := sd.Get("name")
	require.NoError(t, err)

	ns, err := name.Str()
	require.NoError(t, err)
	assert.Equal(t, "gadget", ns)
}

func TestEncodeBinary(t *testing.T) {
	buf, err := encoder.Encode(encoder.Binary{0x01, 0x02, 0x03})
	require.NoError(t, err)

	v := root(t, buf)

	b, err := v.Binary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, b)
}

func TestEncodeDeltaReusesUnchangedSubtree(t *testing.T) {
	base, err := encoder.Encode(map[string]any{
		"a": int64(1),
		"b": []any{int64(1), int64(2), int64(3)},
	})
	require.NoError(t, err)

	baseRoot := root(t, base)

	baseDict, err := baseRoot.AsDict()
	require.NoError(t, err)

	bArr, err := baseDict.Get("b")
	require.NoError(t, err)

	delta, err := encoder.EncodeDelta(base, map[string]any{
		"a": int64(2),
		"b": bArr,
	})
	require.NoError(t, err)

	// The unchanged array subtree should not be recursively re-encoded:
	// the delta suffix should be far smaller than a full re-encode.
	full, err := encoder.Encode(map[string]any{
		"a": int64(2),
		"b": []any{int64(1), int64(2), int64(3)},
	})
	require.NoError(t, err)

	assert.Less(t, len(delta), len(full))

	doc := append(append([]byte{}, base...), delta...)

	v := root(t, doc)

	d, err := v.AsDict()
	require.NoError(t, err)

	av, err := d.Get("a")
	require.NoError(t, err)
	ai, err := av.AsInt()
	require.NoError(t, err)
	assert.EqualValues(t, 2, ai)

	bv, err := d.Get("b")
	require.NoError(t, err)
	barr, err := bv.AsArray()
	require.NoError(t, err)
	require.Equal(t, 3, barr.Len())

	el2, err := barr.Get(2)
	require.NoError(t, err)
	i2, err := el2.AsInt()
	require.NoError(t, err)
	assert.EqualValues(t, 3, i2)
}

func TestEncodeWideCollectionForLargeOffset(t *testing.T) {
	// Enough distinct strings precede the array's own header that a
	// narrow (15-bit) pointer can no longer reach the first element,
	// forcing the whole collection to wide slots.
	const n = 20000

	elems := make([]any, 0, n+1)
	elems = append(elems, "first")

	for i := 0; i < n; i++ {
		elems = append(elems, fmt.Sprintf("s%06d", i))
	}

	buf, err := encoder.Encode(elems)
	require.NoError(t, err)

	v := root(t, buf)
	arr, err := v.AsArray()
	require.NoError(t, err)
	require.Equal(t, len(elems), arr.Len())

	first, err := arr.Get(0)
	require.NoError(t, err)

	s, err := first.Str()
	require.NoError(t, err)
	assert.Equal(t, "first", s)

	last, err := arr.Get(n)
	require.NoError(t, err)

	ls, err := last.Str()
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("s%06d", n-1), ls)
}

func TestEncodeUnsupportedValue(t *testing.T) {
	_, err := encoder.Encode(struct{ X int }{X: 1})
	require.Error(t, err)
}
