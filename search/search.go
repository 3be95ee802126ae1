/*
Package search implements C7: the three pluggable search functions and
the Search/Prefetch/Gather query engines built on top of an index.Index,
per spec.md §4.7.

Grounded on the teacher's mash/search package's linear "scan candidates,
score, keep passers" loop, generalized from a single fixed distance
metric to spec.md's three swappable score/pass functions and the
iterative-cover Gather algorithm the teacher has no equivalent of.
*/
package search

import (
	"context"
	"sort"

	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/index"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
	"golang.org/x/sync/errgroup"
)

// JaccardSearchFunc scores candidates by Jaccard index and passes those
// at or above threshold (spec.md §4.7): `shared / total`, symmetric.
var JaccardSearchFunc = index.SearchFunc{
	Name: "jaccard",
	Score: func(querySize, shared, subjSize, totalSize int) float64 {
		if totalSize == 0 {
			return 0
		}
		return float64(shared) / float64(totalSize)
	},
	Pass: func(score, threshold float64) bool { return score >= threshold },
}

// ContainmentSearchFunc scores candidates by the query's containment in
// each subject: `shared / query_size` (spec.md §4.7), used by `search
// --containment`.
var ContainmentSearchFunc = index.SearchFunc{
	Name: "containment",
	Score: func(querySize, shared, subjSize, totalSize int) float64 {
		if querySize == 0 {
			return 0
		}
		return float64(shared) / float64(querySize)
	},
	Pass: func(score, threshold float64) bool { return score >= threshold },
}

// PrefetchSearchFunc is ContainmentSearchFunc, but Pass interprets
// threshold as already having been converted from threshold_bp into a
// minimum containment fraction (minimum shared-hash count divided by the
// query's size) by the caller (spec.md §4.7).
var PrefetchSearchFunc = index.SearchFunc{
	Name:  "prefetch",
	Score: ContainmentSearchFunc.Score,
	Pass:  func(score, threshold float64) bool { return score >= threshold },
}

// Result is one match from Search: the containment/Jaccard score, the
// matching signature, and its storage location.
type Result struct {
	Score     float64
	Signature *signature.Signature
	Location  string
}

// Search runs sf against every signature idx holds, returning matches
// sorted by descending score. bestOnly truncates to at most one result,
// the highest-scoring (spec.md §4.7 "--best-only truncates to the
// first").
func Search(idx index.Index, query *sketch.Sketch, sf index.SearchFunc, threshold float64, bestOnly bool) ([]Result, error) {
	raw, err := idx.Find(sf, query, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(raw))
	for i, r := range raw {
		out[i] = Result{Score: r.Score, Signature: r.Signature, Location: r.Location}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if bestOnly && len(out) > 1 {
		out = out[:1]
	}
	return out, nil
}

// SearchMulti runs Search against several collection backends concurrently
// and merges the results, per spec.md §5's "independent queries may be
// dispatched concurrently": one backend's slow Find (a large directory
// scan, a cross-network SQLite file) never blocks another's. A failure in
// one backend does not stop the others: every backend runs to completion
// and the first error is then returned to the caller.
func SearchMulti(ctx context.Context, indexes []index.Index, query *sketch.Sketch, sf index.SearchFunc, threshold float64, bestOnly bool) ([]Result, error) {
	group, _ := errgroup.WithContext(ctx)
	perIndex := make([][]Result, len(indexes))
	for i, idx := range indexes {
		i, idx := i, idx
		group.Go(func() error {
			results, err := Search(idx, query, sf, threshold, false)
			if err != nil {
				return err
			}
			perIndex[i] = results
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var out []Result
	for _, results := range perIndex {
		out = append(out, results...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if bestOnly && len(out) > 1 {
		out = out[:1]
	}
	return out, nil
}

// requireCompatible returns gserrors.ParameterMismatch if query and
// candidate differ in ksize or moltype. Mode and resolution are not
// checked here.
func requireCompatible(query, candidate *sketch.Sketch) error {
	if query.Ksize() != candidate.Ksize() || query.MolType() != candidate.MolType() {
		return &gserrors.ParameterMismatch{Parameter: "ksize/moltype", A: "query", B: "candidate"}
	}
	return nil
}
