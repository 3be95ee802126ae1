package sketch_test

import (
	"testing"

	"github.com/TimothyStiles/gsearch/kmer"
	"github.com/TimothyStiles/gsearch/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildScaled(t *testing.T, maxHash uint64, hashes []uint64, trackAbundance bool) *sketch.Sketch {
	t.Helper()
	s := sketch.NewScaled(21, kmer.DNA, 42, maxHash, trackAbundance)
	for _, h := range hashes {
		require.NoError(t, s.AddHash(h))
	}
	return s
}

func TestJaccardSymmetric(t *testing.T) {
	a := buildScaled(t, ^uint64(0), []uint64{1, 2, 3, 4}, false)
	b := buildScaled(t, ^uint64(0), []uint64{3, 4, 5, 6}, false)

	jAB, err := a.Jaccard(b, false)
	require.NoError(t, err)
	jBA, err := b.Jaccard(a, false)
	require.NoError(t, err)
	assert.Equal(t, jAB, jBA)
	assert.InDelta(t, 2.0/6.0, jAB, 1e-9)
}

func TestJaccardBothEmptyIsZero(t *testing.T) {
	a := buildScaled(t, ^uint64(0), nil, false)
	b := buildScaled(t, ^uint64(0), nil, false)
	j, err := a.Jaccard(b, false)
	require.NoError(t, err)
	assert.Equal(t, 0.0, j)
}

func TestJaccardBoundedZeroOne(t *testing.T) {
	a := buildScaled(t, ^uint64(0), []uint64{1, 2, 3}, false)
	b := buildScaled(t, ^uint64(0), []uint64{1, 2, 3}, false)
	j, err := a.Jaccard(b, false)
	require.NoError(t, err)
	assert.Equal(t, 1.0, j)
}

func TestContainedByIsAsymmetric(t *testing.T) {
	small := buildScaled(t, ^uint64(0), []uint64{1, 2}, false)
	big := buildScaled(t, ^uint64(0), []uint64{1, 2, 3, 4}, false)

	cSmallInBig, err := small.ContainedBy(big, false)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cSmallInBig)

	cBigInSmall, err := big.ContainedBy(small, false)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cBigInSmall)
}

func TestContainedByRequiresScaledMode(t *testing.T) {
	a := sketch.New(21, kmer.DNA, 42, 10, false)
	b := sketch.New(21, kmer.DNA, 42, 10, false)
	_, err := a.ContainedBy(b, false)
	assert.Error(t, err)
}

func TestMaxContainmentPicksLarger(t *testing.T) {
	small := buildScaled(t, ^uint64(0), []uint64{1, 2}, false)
	big := buildScaled(t, ^uint64(0), []uint64{1, 2, 3, 4}, false)
	m, err := small.MaxContainment(big, false)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m)
}

func TestAvgContainmentIsMean(t *testing.T) {
	small := buildScaled(t, ^uint64(0), []uint64{1, 2}, false)
	big := buildScaled(t, ^uint64(0), []uint64{1, 2, 3, 4}, false)
	avg, err := small.AvgContainment(big, false)
	require.NoError(t, err)
	assert.InDelta(t, (1.0+0.5)/2, avg, 1e-9)
}

func TestMergeIsIdempotentOnSelf(t *testing.T) {
	a := buildScaled(t, ^uint64(0), []uint64{1, 2, 3}, false)
	merged, err := a.Merge(a)
	require.NoError(t, err)
	assert.Equal(t, a.Hashes(), merged.Hashes())
	assert.True(t, merged.Frozen())
}

func TestMergeUnionsHashes(t *testing.T) {
	a := buildScaled(t, ^uint64(0), []uint64{1, 2}, false)
	b := buildScaled(t, ^uint64(0), []uint64{2, 3}, false)
	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, merged.Hashes())
}

func TestIntersectionKeepsOnlySharedHashes(t *testing.T) {
	a := buildScaled(t, ^uint64(0), []uint64{1, 2, 3}, false)
	b := buildScaled(t, ^uint64(0), []uint64{2, 3, 4}, false)
	inter, err := a.Intersection(b)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, inter.Hashes())
}

func TestDownsampleNumMonotone(t *testing.T) {
	s := sketch.New(21, kmer.DNA, 42, 5, false)
	for _, h := range []uint64{1, 2, 3, 4, 5} {
		require.NoError(t, s.AddHash(h))
	}
	down, err := s.Downsample(sketch.ModeNum, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, down.Hashes())

	_, err = down.Downsample(sketch.ModeNum, 5)
	assert.Error(t, err, "downsampling to a larger num must be rejected")
}

func TestDownsampleScaledCannotGoToNum(t *testing.T) {
	s := buildScaled(t, ^uint64(0), []uint64{1, 2, 3}, false)
	_, err := s.Downsample(sketch.ModeNum, 2)
	assert.Error(t, err)
}

func TestDownsampleScaledShrinksMaxHash(t *testing.T) {
	s := buildScaled(t, 1000, []uint64{100, 500, 900}, false)
	down, err := s.Downsample(sketch.ModeScaled, 600)
	require.NoError(t, err)
	assert.Equal(t, []uint64{100, 500}, down.Hashes())
}

func TestFlattenDropsAbundance(t *testing.T) {
	s := sketch.New(21, kmer.DNA, 42, 10, true)
	require.NoError(t, s.AddHash(1))
	flat := s.Flatten()
	assert.False(t, flat.TrackAbundance())
	assert.Nil(t, flat.Abundances())
}

func TestInflateAddsUnitAbundance(t *testing.T) {
	s := sketch.New(21, kmer.DNA, 42, 10, false)
	require.NoError(t, s.AddHash(1))
	require.NoError(t, s.AddHash(2))
	inflated := s.Inflate()
	assert.True(t, inflated.TrackAbundance())
	assert.Equal(t, uint64(1), inflated.Abundances()[1])
}

func TestSimilarityFallsBackToJaccardWhenIgnoringAbundance(t *testing.T) {
	a := buildScaled(t, ^uint64(0), []uint64{1, 2}, true)
	b := buildScaled(t, ^uint64(0), []uint64{1, 3}, true)
	sim, err := a.Similarity(b, true, false)
	require.NoError(t, err)
	jac, err := a.Jaccard(b, false)
	require.NoError(t, err)
	assert.Equal(t, jac, sim)
}

func TestSimilarityWeightedIsOneForIdenticalAbundance(t *testing.T) {
	a := buildScaled(t, ^uint64(0), []uint64{1, 2, 3}, true)
	b := buildScaled(t, ^uint64(0), []uint64{1, 2, 3}, true)
	sim, err := a.Similarity(b, false, false)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
}
