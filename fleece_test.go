package fleece

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phucvin/fleece/store"
)

// TestEncodeRoot verifies the package-level Encode/Root wrappers round
// trip a simple document.
func TestEncodeRoot(t *testing.T) {
	doc, err := Encode(map[string]any{
		"name": "widget",
		"tags": []any{"a", "b"},
	})
	require.NoError(t, err)

	root, err := Root(doc)
	require.NoError(t, err)

	dict, err := root.AsDict()
	require.NoError(t, err)

	name, err := dict.MustGet("name").Str()
	require.NoError(t, err)
	require.Equal(t, "widget", name)
}

// TestSaveLoadAppendDelta verifies a document saved uncompressed can have
// a mutated root dict appended as a delta and still read back correctly.
func TestSaveLoadAppendDelta(t *testing.T) {
	doc, err := Encode(map[string]any{
		"status": "draft",
		"owner":  "alice",
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "doc.fleece")
	require.NoError(t, Save(path, doc, store.NewNoOpCompressor()))

	loaded, err := Load(path)
	require.NoError(t, err)

	root, err := Root(loaded)
	require.NoError(t, err)

	d, err := NewMutableDict(root)
	require.NoError(t, err)
	d.Set("status", "published")

	require.NoError(t, AppendDelta(path, d))

	loaded2, err := Load(path)
	require.NoError(t, err)

	root2, err := Root(loaded2)
	require.NoError(t, err)

	dict2, err := root2.AsDict()
	require.NoError(t, err)

	status, err := dict2.MustGet("status").Str()
	require.NoError(t, err)
	require.Equal(t, "published", status)

	owner, err := dict2.MustGet("owner").Str()
	require.NoError(t, err)
	require.Equal(t, "alice", owner)
}

// TestNewMutableArray verifies an array read from a document can be
// promoted to a mutable overlay and re-encoded.
func TestNewMutableArray(t *testing.T) {
	doc, err := Encode([]any{int64(1), int64(2), int64(3)})
	require.NoError(t, err)

	root, err := Root(doc)
	require.NoError(t, err)

	arr, err := NewMutableArray(root)
	require.NoError(t, err)
	arr.Push(int64(4))

	out, err := Encode(arr)
	require.NoError(t, err)

	outRoot, err := Root(out)
	require.NoError(t, err)

	outArr, err := outRoot.AsArray()
	require.NoError(t, err)
	require.Equal(t, 4, outArr.Len())

	v, err := outArr.Get(3)
	require.NoError(t, err)

	i, err := v.AsInt()
	require.NoError(t, err)
	require.Equal(t, int64(4), i)
}
