package hasher_test

import (
	"testing"

	"github.com/TimothyStiles/gsearch/hasher"
	"github.com/stretchr/testify/assert"
)

func TestHash64Deterministic(t *testing.T) {
	a := hasher.Hash64String("ACGTACGT", hasher.DefaultSeed)
	b := hasher.Hash64String("ACGTACGT", hasher.DefaultSeed)
	assert.Equal(t, a, b)
}

func TestHash64SeedChangesOutput(t *testing.T) {
	a := hasher.Hash64String("ACGTACGT", 42)
	b := hasher.Hash64String("ACGTACGT", 43)
	assert.NotEqual(t, a, b)
}

func TestHash64DifferentInputsDiffer(t *testing.T) {
	a := hasher.Hash64String("ACGTACGT", hasher.DefaultSeed)
	b := hasher.Hash64String("TTTTTTTT", hasher.DefaultSeed)
	assert.NotEqual(t, a, b)
}
