package search

import (
	"github.com/TimothyStiles/gsearch/index"
	"github.com/TimothyStiles/gsearch/sketch"
)

// CounterGather is the peek/consume collaborator spec.md §4.7 describes:
// a backend that can answer "which subject has the biggest remaining
// intersection" without Gather re-scanning every candidate on every
// iteration. Gather always drives one of these: index.SQLiteIndex answers
// from its reverse index plus a running per-sketch counter (via
// indexCounterGather, adapting index.GatherPeeker); every other backend
// falls back to ListCounterGather's linear rescan of the gathered
// candidates.
type CounterGather interface {
	// Peek returns the next gather result against remainingQuery and the
	// hashes it claims, or ok=false if nothing clears thresholdBP.
	Peek(remainingQuery *sketch.Sketch, thresholdBP uint64) (result GatherResult, claimedHashes []uint64, ok bool)
	// Consume removes claimedHashes from the collaborator's internal
	// bookkeeping so the next Peek does not re-offer them.
	Consume(claimedHashes []uint64)
}

// ListCounterGather is a CounterGather built directly from a slice of
// candidate sketches, used by backends (like MemoryIndex) with no
// cheaper way to track remaining overlap than a linear rescan.
type ListCounterGather struct {
	candidates []candidateGather
	ksize      int
	initialLen int
}

// NewListCounterGather builds a ListCounterGather over candidates, each
// keyed by its own md5sum for Gather's deterministic tie-break.
func NewListCounterGather(candidates []candidateGather, ksize, initialLen int) *ListCounterGather {
	return &ListCounterGather{candidates: candidates, ksize: ksize, initialLen: initialLen}
}

func (l *ListCounterGather) Peek(remainingQuery *sketch.Sketch, thresholdBP uint64) (GatherResult, []uint64, bool) {
	minShared := float64(thresholdBP) / float64(max1(int(remainingQuery.Scaled())))
	bestIdx := -1
	var bestOverlap uint64
	var bestMD5 string
	for i, c := range l.candidates {
		if c.sketch == nil {
			continue
		}
		common, err := remainingQuery.CountCommon(c.sketch, true)
		if err != nil || common == 0 {
			continue
		}
		if common > bestOverlap || (common == bestOverlap && (bestIdx == -1 || c.md5 < bestMD5)) {
			bestOverlap, bestIdx, bestMD5 = common, i, c.md5
		}
	}
	if bestIdx == -1 || float64(bestOverlap) < minShared {
		return GatherResult{}, nil, false
	}
	best := l.candidates[bestIdx]
	claimed := intersectingHashes(remainingQuery, best.sketch)
	ani, _, _, _, _ := estimateGatherANI(bestOverlap, remainingQuery.Len(), l.ksize)
	return GatherResult{
		Signature:         best.sig,
		Location:          best.location,
		Intersection:      bestOverlap,
		FUniqueToQuery:    float64(bestOverlap) / float64(max1(l.initialLen)),
		UniqueIntersectBP: bestOverlap * remainingQuery.Scaled(),
		QueryANI:          ani,
	}, claimed, true
}

func (l *ListCounterGather) Consume(claimedHashes []uint64) {
	claimed := make(map[uint64]bool, len(claimedHashes))
	for _, h := range claimedHashes {
		claimed[h] = true
	}
	for i, c := range l.candidates {
		if c.sketch == nil {
			continue
		}
		allClaimed := true
		for _, h := range c.sketch.Hashes() {
			if !claimed[h] {
				allClaimed = false
				break
			}
		}
		if allClaimed {
			l.candidates[i].sketch = nil
		}
	}
}

// indexCounterGather adapts an index.GatherPeeker (the SQLite backend's
// reverse-index-plus-running-counter implementation) to CounterGather, so
// Gather can drive it through the same Peek/Consume loop it uses for
// ListCounterGather.
type indexCounterGather struct {
	peeker     index.GatherPeeker
	ksize      int
	initialLen int
}

func (a *indexCounterGather) Peek(remainingQuery *sketch.Sketch, thresholdBP uint64) (GatherResult, []uint64, bool) {
	minShared := float64(thresholdBP) / float64(max1(int(remainingQuery.Scaled())))
	sig, location, overlap, claimed, ok := a.peeker.PeekGather(remainingQuery, minShared)
	if !ok {
		return GatherResult{}, nil, false
	}
	ani, _, _, _, _ := estimateGatherANI(overlap, remainingQuery.Len(), a.ksize)
	return GatherResult{
		Signature:         sig,
		Location:          location,
		Intersection:      overlap,
		FUniqueToQuery:    float64(overlap) / float64(max1(a.initialLen)),
		UniqueIntersectBP: overlap * remainingQuery.Scaled(),
		QueryANI:          ani,
	}, claimed, true
}

func (a *indexCounterGather) Consume(claimedHashes []uint64) {
	a.peeker.ConsumeGather(claimedHashes)
}
