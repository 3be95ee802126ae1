package kmer_test

import (
	"testing"

	"github.com/TimothyStiles/gsearch/kmer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		kmer string
		want string
	}{
		{"already canonical", "AAAA", "AAAA"},
		{"reverse complement wins", "TTTT", "AAAA"},
		{"palindrome", "GAATTC", "GAATTC"},
		{"mixed", "GGCC", "GGCC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kmer.Canonical(tt.kmer))
		})
	}
}

func TestDNAKmersRejectsInvalidByDefault(t *testing.T) {
	err := kmer.DNAKmers("ACGTNACGT", 4, false, func(string) error { return nil })
	require.Error(t, err)
	var invalid *kmer.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestDNAKmersForceSkips(t *testing.T) {
	var got []string
	err := kmer.DNAKmers("ACGTNACGT", 4, true, func(km string) error {
		got = append(got, km)
		return nil
	})
	require.NoError(t, err)
	// Windows overlapping the N (positions 1..4) are skipped; the rest yield.
	assert.NotEmpty(t, got)
	for _, km := range got {
		assert.NotContains(t, km, "N")
	}
}

func TestDNAKmersEmptySequence(t *testing.T) {
	var got []string
	err := kmer.DNAKmers("AC", 4, false, func(km string) error {
		got = append(got, km)
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTranslateCodonNIsSentinelX(t *testing.T) {
	aa, err := kmer.TranslateCodon("ANG")
	require.NoError(t, err)
	assert.Equal(t, byte('X'), aa)
}

func TestTranslateCodonInvalidByte(t *testing.T) {
	_, err := kmer.TranslateCodon("AYG")
	require.Error(t, err)
}

func TestTranslateCodonStop(t *testing.T) {
	aa, err := kmer.TranslateCodon("TAA")
	require.NoError(t, err)
	assert.Equal(t, byte('*'), aa)
}

func TestSixFramesCount(t *testing.T) {
	frames, err := kmer.SixFrames("ATGAAACCCGGGTTTTAG")
	require.NoError(t, err)
	for i, f := range frames {
		assert.NotEmpty(t, f, "frame %d should translate something", i)
	}
	// Forward frame 0 should read ATG AAA CCC GGG TTT TAG.
	assert.Equal(t, "MKPGF*", frames[0])
}
