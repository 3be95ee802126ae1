package index_test

import (
	"path/filepath"
	"testing"

	"github.com/TimothyStiles/gsearch/index"
	"github.com/TimothyStiles/gsearch/manifest"
	"github.com/TimothyStiles/gsearch/search"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowFor(t *testing.T, sig *signature.Signature, location string) manifest.Row {
	t.Helper()
	sk := sig.Sketches()[0]
	md5, err := sig.MD5Sum(0)
	require.NoError(t, err)
	return manifest.Row{
		InternalLocation: location,
		MD5:              md5,
		Ksize:            sk.Ksize(),
		Moltype:          string(sk.MolType()),
		Num:              sk.Num(),
		Scaled:           sk.Scaled(),
		NHashes:          sk.Len(),
		Seed:             sk.Seed(),
		Name:             sig.Name(),
		Filename:         sig.Filename(),
	}
}

func TestStandaloneIndexLazilyLoadsFromManifestLocations(t *testing.T) {
	dir := t.TempDir()
	sigA := buildNumSignature(t, "a", 21, []uint64{1, 2})
	sigB := buildNumSignature(t, "b", 21, []uint64{3, 4})
	require.NoError(t, signature.Save(filepath.Join(dir, "a.sig"), []*signature.Signature{sigA}))
	require.NoError(t, signature.Save(filepath.Join(dir, "b.sig"), []*signature.Signature{sigB}))

	rows := []manifest.Row{rowFor(t, sigA, "a.sig"), rowFor(t, sigB, "b.sig")}
	idx := index.NewStandaloneIndex(dir, rows)

	sigs, err := idx.Signatures()
	require.NoError(t, err)
	assert.Len(t, sigs, 2)
}

func TestStandaloneIndexFindMatchesSharedHashes(t *testing.T) {
	dir := t.TempDir()
	sigA := buildNumSignature(t, "a", 21, []uint64{1, 2, 3})
	require.NoError(t, signature.Save(filepath.Join(dir, "a.sig"), []*signature.Signature{sigA}))

	rows := []manifest.Row{rowFor(t, sigA, "a.sig")}
	idx := index.NewStandaloneIndex(dir, rows)

	query := buildNumSignature(t, "query", 21, []uint64{1, 2, 3}).Sketches()[0]
	results, err := idx.Find(search.JaccardSearchFunc, query, 1.0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Signature.Name())
}
