package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phucvin/fleece/encoder"
	"github.com/phucvin/fleece/store"
	"github.com/phucvin/fleece/value"
)

func TestCodecRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("hello fleece ", 200))

	codecs := []store.Codec{
		store.NewNoOpCompressor(),
		store.NewZstdCompressor(),
		store.NewS2Compressor(),
		store.NewLZ4Compressor(),
	}

	for _, c := range codecs {
		compressed, err := c.Compress(data)
		require.NoError(t, err)

		out, err := c.Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	doc, err := encoder.Encode(map[string]any{"hello": "world"})
	require.NoError(t, err)

	for _, codec := range []store.Codec{
		store.NewNoOpCompressor(),
		store.NewZstdCompressor(),
		store.NewS2Compressor(),
		store.NewLZ4Compressor(),
	} {
		path := filepath.Join(t.TempDir(), "doc.fleece")

		require.NoError(t, store.Save(path, doc, codec))

		loaded, err := store.Load(path)
		require.NoError(t, err)
		assert.Equal(t, doc, loaded)

		v, err := value.Root(loaded)
		require.NoError(t, err)

		d, err := v.AsDict()
		require.NoError(t, err)

		hv, err := d.Get("hello")
		require.NoError(t, err)

		s, err := hv.Str()
		require.NoError(t, err)
		assert.Equal(t, "world", s)
	}
}

func TestSaveStatsReportsCompression(t *testing.T) {
	doc, err := encoder.Encode(strings.Repeat("compressible ", 500))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "doc.fleece")

	stats, err := store.SaveStats(path, doc, store.NewZstdCompressor())
	require.NoError(t, err)

	assert.Equal(t, store.CompressionZstd, stats.Algorithm)
	assert.EqualValues(t, len(doc), stats.OriginalSize)
	assert.Less(t, stats.CompressedSize, stats.OriginalSize)
	assert.Less(t, stats.CompressionRatio(), 1.0)
	assert.Greater(t, stats.SpaceSavings(), 0.0)

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestLoadRejectsCorruptChecksum(t *testing.T) {
	doc, err := encoder.Encode("x")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "doc.fleece")
	require.NoError(t, store.Save(path, doc, store.NewNoOpCompressor()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err = store.Load(path)
	assert.ErrorIs(t, err, store.ErrChecksumMismatch)
}

func TestAppendDeltaGrowsFileBySmallSuffix(t *testing.T) {
	bigKept := strings.Repeat("A", 1000)

	doc, err := encoder.Encode(map[string]any{
		"kept":    bigKept,
		"changed": "old",
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "doc.fleece")
	require.NoError(t, store.Save(path, doc, store.NewNoOpCompressor()))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	loadedBase, err := store.Load(path)
	require.NoError(t, err)

	baseRoot, err := value.Root(loadedBase)
	require.NoError(t, err)

	baseDict, err := baseRoot.AsDict()
	require.NoError(t, err)

	keptHandle, err := baseDict.Get("kept")
	require.NoError(t, err)

	require.NoError(t, store.AppendDelta(path, map[string]any{
		"kept":    keptHandle,
		"changed": "new",
	}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Less(t, len(after)-len(before), 100)

	loaded, err := store.Load(path)
	require.NoError(t, err)

	v, err := value.Root(loaded)
	require.NoError(t, err)

	d, err := v.AsDict()
	require.NoError(t, err)

	kept, err := d.Get("kept")
	require.NoError(t, err)
	ks, err := kept.Str()
	require.NoError(t, err)
	assert.Equal(t, bigKept, ks)

	changed, err := d.Get("changed")
	require.NoError(t, err)
	cs, err := changed.Str()
	require.NoError(t, err)
	assert.Equal(t, "new", cs)
}

func TestAppendDeltaRejectsCompressedFile(t *testing.T) {
	doc, err := encoder.Encode(map[string]any{"a": int64(1)})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "doc.fleece")
	require.NoError(t, store.Save(path, doc, store.NewZstdCompressor()))

	err = store.AppendDelta(path, map[string]any{"a": int64(2)})
	assert.ErrorIs(t, err, store.ErrDeltaRequiresUncompressed)
}
