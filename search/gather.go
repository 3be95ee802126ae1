package search

import (
	"context"
	"math"
	"sort"

	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/index"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
)

// GatherResult is one iteration's match from Gather, carrying every
// derived statistic spec.md §4.7 names.
type GatherResult struct {
	Signature         *signature.Signature
	Location          string
	Intersection      uint64
	FUniqueToQuery    float64
	FUniqueWeighted   float64
	UniqueIntersectBP uint64
	AverageAbund      float64
	MedianAbund       float64
	StdAbund          float64
	SumFUniqWeighted  float64
	QueryANI          float64
}

// candidateGather scores a single candidate sketch against the remaining
// query, used by ListCounterGather's per-iteration linear scan.
type candidateGather struct {
	md5      string
	location string
	sig      *signature.Signature
	sketch   *sketch.Sketch
}

// Gather performs iterative greedy cover selection over query against
// every signature idx holds (spec.md §4.7 "Gather"). The query is first
// downsampled to the coarsest scaled factor among the index's matching
// sketches, and thresholdBP is converted to a minimum shared-hash count
// via that scaled factor. ctx is checked between iterations so a long-running gather can
// be cancelled at a result boundary (spec.md §5 "Cancellation").
func Gather(ctx context.Context, idx index.Index, query *sketch.Sketch, thresholdBP uint64) ([]GatherResult, error) {
	if query.Mode() != sketch.ModeScaled {
		return nil, &gserrors.ModeIncompatible{Operation: "Gather", Detail: "requires a scaled-mode query"}
	}
	for _, r := range idx.Manifest().Rows() {
		if r.Ksize == query.Ksize() && r.Moltype == string(query.MolType()) && r.Scaled > query.Scaled() {
			down, err := query.Downsample(sketch.ModeScaled, sketch.MaxHashForScaled(r.Scaled))
			if err != nil {
				return nil, err
			}
			query = down
		}
	}
	originalQuery := query
	remaining := query
	initialSize := query.Len()
	if initialSize == 0 {
		return nil, nil
	}

	// SQLite backends answer Peek from the reverse hash index plus a
	// running per-sketch counter (spec.md §4.7), seeded by one SQL join
	// rather than loading every signature's full hash set up front; every
	// other backend falls back to ListCounterGather's linear rescan of
	// every signature idx holds.
	var cg CounterGather
	if src, ok := idx.(index.GatherSessionSource); ok {
		session, err := src.NewGatherSession(query)
		if err != nil {
			return nil, err
		}
		cg = &indexCounterGather{peeker: session, ksize: query.Ksize(), initialLen: initialSize}
	} else {
		located, err := idx.SignaturesWithLocation()
		if err != nil {
			return nil, err
		}
		var candidates []candidateGather
		for _, ls := range located {
			for i, sk := range ls.Signature.Sketches() {
				if sk.MolType() != query.MolType() || sk.Ksize() != query.Ksize() {
					continue
				}
				md5, err := ls.Signature.MD5Sum(i)
				if err != nil {
					return nil, err
				}
				candidates = append(candidates, candidateGather{md5: md5, location: ls.Location, sig: ls.Signature, sketch: sk})
			}
		}
		cg = NewListCounterGather(candidates, query.Ksize(), initialSize)
	}

	var results []GatherResult
	var sumFUniqWeighted float64
	queryAbund := originalQuery.Abundances()

	for {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}
		if remaining.Len() == 0 {
			break
		}

		result, claimed, ok := cg.Peek(remaining, thresholdBP)
		if !ok {
			break
		}

		var fWeighted float64
		var avgAbund, medAbund, stdAbund float64
		if queryAbund != nil {
			abunds := make([]float64, 0, len(claimed))
			var totalWeighted, totalAbund float64
			for _, h := range originalQuery.Hashes() {
				totalAbund += float64(queryAbund[h])
			}
			for _, h := range claimed {
				a := float64(queryAbund[h])
				abunds = append(abunds, a)
				totalWeighted += a
			}
			if totalAbund > 0 {
				fWeighted = totalWeighted / totalAbund
			}
			avgAbund, medAbund, stdAbund = abundStats(abunds)
		} else {
			fWeighted = result.FUniqueToQuery
		}
		sumFUniqWeighted += fWeighted

		result.FUniqueWeighted = fWeighted
		result.AverageAbund = avgAbund
		result.MedianAbund = medAbund
		result.StdAbund = stdAbund
		result.SumFUniqWeighted = sumFUniqWeighted
		results = append(results, result)

		var rmErr error
		remaining, rmErr = removeHashes(remaining, claimed)
		if rmErr != nil {
			return nil, rmErr
		}
		cg.Consume(claimed)
	}
	return results, nil
}

func intersectingHashes(a, b *sketch.Sketch) []uint64 {
	bSet := make(map[uint64]bool, b.Len())
	for _, h := range b.Hashes() {
		bSet[h] = true
	}
	var out []uint64
	for _, h := range a.Hashes() {
		if bSet[h] {
			out = append(out, h)
		}
	}
	return out
}

func removeHashes(s *sketch.Sketch, hashes []uint64) (*sketch.Sketch, error) {
	m := s.Mutable()
	if err := m.RemoveMany(hashes); err != nil {
		return nil, err
	}
	return m.Freeze(), nil
}

func abundStats(values []float64) (avg, median, std float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg = sum / float64(len(values))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	var sq float64
	for _, v := range values {
		d := v - avg
		sq += d * d
	}
	std = math.Sqrt(sq / float64(len(values)))
	return avg, median, std
}

// estimateGatherANI derives a point ANI estimate for one gather result
// directly from its intersection size and the remaining query size at
// the time of selection (spec.md §4.7 "every result's query_ani is
// derivable from its intersection size and scaled"), without requiring a
// full ANIEstimate (the confidence interval machinery in ani.go is for
// direct sketch-to-sketch comparisons, not per-iteration gather stats).
func estimateGatherANI(intersection uint64, remainingSize int, ksize int) (ani, low, high float64, pNothing float64, inaccurate bool) {
	if remainingSize == 0 || ksize == 0 {
		return 0, 0, 0, 1, true
	}
	containment := float64(intersection) / float64(remainingSize)
	if containment <= 0 {
		return 0, 0, 0, 1, true
	}
	return math.Pow(containment, 1/float64(ksize)), 0, 0, 0, intersection < 5
}
