package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	var out, errOut bytes.Buffer
	code = run(&out, &errOut, args)

	return out.String(), errOut.String(), code
}

func TestRunNoArgsPrintsUsage(t *testing.T) {
	_, errOut, code := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "Usage:")
}

func TestRunUnknownCommand(t *testing.T) {
	_, errOut, code := runCLI(t, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown command")
}

func TestEncodeGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.json")
	outPath := filepath.Join(dir, "doc.fleece")

	require.NoError(t, os.WriteFile(inPath, []byte(`{"name":"widget","tags":["a","b"],"qty":3}`), 0o644))

	_, errOut, code := runCLI(t, "encode", inPath, outPath)
	require.Equal(t, 0, code, errOut)

	out, errOut, code := runCLI(t, "get", outPath, "name")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "\"widget\"\n", out)

	out, _, code = runCLI(t, "get", outPath, "tags.1")
	require.Equal(t, 0, code)
	assert.Equal(t, "\"b\"\n", out)

	out, _, code = runCLI(t, "get", outPath, "qty")
	require.Equal(t, 0, code)
	assert.Equal(t, "3\n", out)
}

func TestEncodeWithCompression(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.json")
	outPath := filepath.Join(dir, "doc.fleece")

	require.NoError(t, os.WriteFile(inPath, []byte(`{"a":1}`), 0o644))

	_, errOut, code := runCLI(t, "encode", "--compress=zstd", inPath, outPath)
	require.Equal(t, 0, code, errOut)

	out, _, code := runCLI(t, "get", outPath, "a")
	require.Equal(t, 0, code)
	assert.Equal(t, "1\n", out)
}

func TestDeltaAppliesEditsInPlace(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.json")
	outPath := filepath.Join(dir, "doc.fleece")

	require.NoError(t, os.WriteFile(inPath, []byte(`{"status":"draft","owner":"alice"}`), 0o644))

	_, errOut, code := runCLI(t, "encode", inPath, outPath)
	require.Equal(t, 0, code, errOut)

	before, err := os.ReadFile(outPath)
	require.NoError(t, err)

	_, errOut, code = runCLI(t, "delta", outPath, "status=published", "owner=~")
	require.Equal(t, 0, code, errOut)

	after, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Greater(t, len(after), len(before))

	out, _, code := runCLI(t, "get", outPath, "status")
	require.Equal(t, 0, code)
	assert.Equal(t, "\"published\"\n", out)
}

func TestGetMissingPathFails(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.json")
	outPath := filepath.Join(dir, "doc.fleece")

	require.NoError(t, os.WriteFile(inPath, []byte(`{"a":1}`), 0o644))

	_, errOut, code := runCLI(t, "encode", inPath, outPath)
	require.Equal(t, 0, code, errOut)

	_, errOut, code = runCLI(t, "get", outPath, "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no value at")
}
