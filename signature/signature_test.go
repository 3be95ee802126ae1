package signature_test

import (
	"testing"

	"github.com/TimothyStiles/gsearch/kmer"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSig(t *testing.T, seq string) *signature.Signature {
	t.Helper()
	sk := sketch.NewScaledFromFactor(31, kmer.DNA, 42, 1000, false)
	require.NoError(t, sk.AddSequence(seq, false))
	return signature.New("test", "", "test.fa", "CC0", sk)
}

const sampleSeq = "TGCCGCCCAGCACCGGGTGACTAGGTTGAGCCATGATTAACCTGCAATGA"

func TestIdenticalSequencesProduceEqualMD5(t *testing.T) {
	a := buildSig(t, sampleSeq)
	b := buildSig(t, sampleSeq)
	md5a, err := a.MD5Sum(0)
	require.NoError(t, err)
	md5b, err := b.MD5Sum(0)
	require.NoError(t, err)
	assert.Equal(t, md5a, md5b)
}

func TestMD5SumIndependentOfNameAndFilename(t *testing.T) {
	sk := sketch.NewScaledFromFactor(31, kmer.DNA, 42, 1000, false)
	require.NoError(t, sk.AddSequence(sampleSeq, false))
	a := signature.New("nameA", "", "a.fa", "CC0", sk)
	b := signature.New("nameB", "", "b.fa", "MIT", sk)
	md5a, _ := a.MD5Sum(0)
	md5b, _ := b.MD5Sum(0)
	assert.Equal(t, md5a, md5b)
}

func TestRoundTripPreservesSketchAndAbundance(t *testing.T) {
	sk := sketch.New(21, kmer.DNA, 42, 100, true)
	require.NoError(t, sk.AddSequence("ACGTACGTACGTACGTACGTACGTAC", false))
	sig := signature.New("roundtrip", "x@example.com", "f.fa", "CC0", sk)

	data, err := signature.Marshal([]*signature.Signature{sig})
	require.NoError(t, err)

	loaded, err := signature.Unmarshal(data, false)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, sig.Name(), loaded[0].Name())

	origHashes := sig.Sketches()[0].Hashes()
	gotHashes := loaded[0].Sketches()[0].Hashes()
	assert.Equal(t, origHashes, gotHashes)

	origAbund := sig.Sketches()[0].Abundances()
	gotAbund := loaded[0].Sketches()[0].Abundances()
	assert.Equal(t, origAbund, gotAbund)
}

func TestUnmarshalRejectsCorruptMD5(t *testing.T) {
	sk := sketch.New(21, kmer.DNA, 42, 100, false)
	require.NoError(t, sk.AddHash(1))
	sig := signature.New("corrupt", "", "f.fa", "CC0", sk)
	data, err := signature.Marshal([]*signature.Signature{sig})
	require.NoError(t, err)

	corrupted := []byte(string(data))
	corrupted = []byte(replaceOnce(string(corrupted), `"mins":[1]`, `"mins":[1,2]`))

	_, err = signature.Unmarshal(corrupted, false)
	assert.Error(t, err)
}

func TestUnmarshalIgnoreMD5SumSkipsVerification(t *testing.T) {
	sk := sketch.New(21, kmer.DNA, 42, 100, false)
	require.NoError(t, sk.AddHash(1))
	sig := signature.New("ignore", "", "f.fa", "CC0", sk)
	data, err := signature.Marshal([]*signature.Signature{sig})
	require.NoError(t, err)

	corrupted := []byte(replaceOnce(string(data), `"mins":[1]`, `"mins":[1,2]`))
	_, err = signature.Unmarshal(corrupted, true)
	assert.NoError(t, err)
}

func TestUpdateRefreezesAfterScope(t *testing.T) {
	sk := sketch.New(21, kmer.DNA, 42, 100, false)
	sig := signature.New("upd", "", "f.fa", "CC0", sk)
	err := sig.Update(0, func(m *sketch.Sketch) error {
		return m.AddHash(9)
	})
	require.NoError(t, err)
	assert.True(t, sig.Sketches()[0].Frozen())
	assert.Contains(t, sig.Sketches()[0].Hashes(), uint64(9))
}

func replaceOnce(s, old, new string) string {
	i := indexOf(s, old)
	if i < 0 {
		return s
	}
	return s[:i] + new + s[i+len(old):]
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
