package search

import (
	"context"
	"sort"

	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/index"
	"github.com/TimothyStiles/gsearch/sketch"
	"golang.org/x/sync/errgroup"
)

// PrefetchResult is one candidate Prefetch accepted: its containment
// score against the query, the intersection size, and the signature
// itself.
type PrefetchResult struct {
	Score        float64
	Intersection uint64
	Result       index.IndexSearchResult
}

// PrefetchOutcome is everything a Prefetch call reports: the accepted
// results plus, if requested, the union of matched and unmatched query
// hashes (spec.md §4.7).
type PrefetchOutcome struct {
	Results         []PrefetchResult
	MatchedHashes   []uint64 // nil unless collectMatched
	UnmatchedHashes []uint64 // nil unless collectUnmatched
}

// Prefetch streams every candidate in idx whose estimated shared bp
// (shared hash count * scaled) meets thresholdBP, without ever mutating
// the query (spec.md §4.7 "it never removes hashes from the query
// state"). Results are returned in the order idx.Find produces them,
// already filtered by the bp threshold converted into a minimum shared
// hash count.
func Prefetch(idx index.Index, query *sketch.Sketch, thresholdBP uint64, collectMatched, collectUnmatched bool) (PrefetchOutcome, error) {
	if query.Mode() != sketch.ModeScaled {
		return PrefetchOutcome{}, &gserrors.ModeIncompatible{Operation: "Prefetch", Detail: "requires a scaled-mode query"}
	}
	scaled := query.Scaled()
	minShared := float64(1)
	if scaled > 0 {
		minShared = float64(thresholdBP) / float64(scaled)
	}

	raw, err := idx.Find(PrefetchSearchFunc, query, minShared/float64(max1(query.Len())))
	if err != nil {
		return PrefetchOutcome{}, err
	}

	var out PrefetchOutcome
	matched := make(map[uint64]bool)
	queryHashes := query.Hashes()
	for _, r := range raw {
		for _, sk := range r.Signature.Sketches() {
			if sk.MolType() != query.MolType() || sk.Ksize() != query.Ksize() {
				continue
			}
			common, err := query.CountCommon(sk, true)
			if err != nil {
				continue
			}
			if float64(common) < minShared {
				continue
			}
			out.Results = append(out.Results, PrefetchResult{
				Score:        r.Score,
				Intersection: common,
				Result:       r,
			})
			if collectMatched || collectUnmatched {
				for _, h := range sk.Hashes() {
					matched[h] = true
				}
			}
		}
	}

	if collectMatched {
		out.MatchedHashes = sortedFilter(queryHashes, matched, true)
	}
	if collectUnmatched {
		out.UnmatchedHashes = sortedFilter(queryHashes, matched, false)
	}
	return out, nil
}

// PrefetchMulti runs Prefetch against several collection backends
// concurrently, merging accepted results (spec.md §5 concurrent dispatch).
// Matched/unmatched hash collection is left to the caller per-backend,
// since a single query's coverage only makes sense against one backend's
// hash universe at a time.
func PrefetchMulti(ctx context.Context, indexes []index.Index, query *sketch.Sketch, thresholdBP uint64) ([]PrefetchResult, error) {
	group, _ := errgroup.WithContext(ctx)
	perIndex := make([][]PrefetchResult, len(indexes))
	for i, idx := range indexes {
		i, idx := i, idx
		group.Go(func() error {
			outcome, err := Prefetch(idx, query, thresholdBP, false, false)
			if err != nil {
				return err
			}
			perIndex[i] = outcome.Results
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var out []PrefetchResult
	for _, results := range perIndex {
		out = append(out, results...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func sortedFilter(hashes []uint64, set map[uint64]bool, wantIn bool) []uint64 {
	var out []uint64
	for _, h := range hashes {
		if set[h] == wantIn {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
