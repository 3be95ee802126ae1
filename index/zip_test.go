package index_test

import (
	"path/filepath"
	"testing"

	"github.com/TimothyStiles/gsearch/index"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipIndexSaveThenOpenRoundTrip(t *testing.T) {
	mem := index.NewMemoryIndex([]index.LocatedSignature{
		{Signature: buildNumSignature(t, "a", 21, []uint64{1, 2}), Location: "a.sig"},
		{Signature: buildNumSignature(t, "b", 31, []uint64{3, 4}), Location: "b.sig"},
	})
	path := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, signature.SaveZip(path, mustSigs(t, mem), nil))

	zi, err := index.OpenZip(path)
	require.NoError(t, err)
	defer zi.Close()

	sigs, err := zi.Signatures()
	require.NoError(t, err)
	assert.Len(t, sigs, 2)
}

func TestZipIndexSaveWritesLoadableArchive(t *testing.T) {
	mem := index.NewMemoryIndex([]index.LocatedSignature{
		{Signature: buildNumSignature(t, "a", 21, []uint64{1}), Location: "a.sig"},
	})
	src := filepath.Join(t.TempDir(), "src.zip")
	require.NoError(t, signature.SaveZip(src, mustSigs(t, mem), nil))

	zi, err := index.OpenZip(src)
	require.NoError(t, err)
	defer zi.Close()

	out := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, zi.Save(out))

	reopened, err := index.OpenZip(out)
	require.NoError(t, err)
	defer reopened.Close()
	sigs, err := reopened.Signatures()
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "a", sigs[0].Name())
}

func mustSigs(t *testing.T, idx index.Index) []*signature.Signature {
	t.Helper()
	sigs, err := idx.Signatures()
	require.NoError(t, err)
	return sigs
}
