package index_test

import (
	"path/filepath"
	"testing"

	"github.com/TimothyStiles/gsearch/index"
	"github.com/TimothyStiles/gsearch/kmer"
	"github.com/TimothyStiles/gsearch/manifest"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildNumSignature(t *testing.T, name string, ksize int, hashes []uint64) *signature.Signature {
	t.Helper()
	sk := sketch.New(ksize, kmer.DNA, 42, 1000, false)
	for _, h := range hashes {
		require.NoError(t, sk.AddHash(h))
	}
	return signature.New(name, "", name+".sig", "CC0", sk)
}

func TestDirectoryIndexLoadsSigFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, signature.Save(filepath.Join(dir, "a.sig"), []*signature.Signature{buildNumSignature(t, "a", 21, []uint64{1, 2})}))
	require.NoError(t, signature.Save(filepath.Join(dir, "b.sig"), []*signature.Signature{buildNumSignature(t, "b", 31, []uint64{3, 4})}))

	idx, err := index.OpenDirectory(dir)
	require.NoError(t, err)
	defer idx.Close()

	sigs, err := idx.Signatures()
	require.NoError(t, err)
	assert.Len(t, sigs, 2)
}

func TestDirectoryIndexInsertWritesFileAndIsVisible(t *testing.T) {
	dir := t.TempDir()
	idx, err := index.OpenDirectory(dir)
	require.NoError(t, err)
	defer idx.Close()

	sig := buildNumSignature(t, "new", 21, []uint64{5})
	require.NoError(t, idx.Insert(sig, "new.sig"))

	sigs, err := idx.Signatures()
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	reopened, err := index.OpenDirectory(dir)
	require.NoError(t, err)
	defer reopened.Close()
	sigs, err = reopened.Signatures()
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "new", sigs[0].Name())
}

func TestDirectoryIndexSelectNarrowsByKsize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, signature.Save(filepath.Join(dir, "a.sig"), []*signature.Signature{buildNumSignature(t, "a", 21, []uint64{1})}))
	require.NoError(t, signature.Save(filepath.Join(dir, "b.sig"), []*signature.Signature{buildNumSignature(t, "b", 31, []uint64{2})}))

	idx, err := index.OpenDirectory(dir)
	require.NoError(t, err)
	defer idx.Close()

	narrowed := idx.Select(manifest.Criteria{Ksize: 21})
	sigs, err := narrowed.Signatures()
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "a", sigs[0].Name())
}
