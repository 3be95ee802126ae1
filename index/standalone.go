package index

import (
	"path/filepath"

	"github.com/TimothyStiles/gsearch/manifest"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
)

// StandaloneIndex treats a CSV manifest plus an external storage root as
// an Index, without requiring the signatures themselves to share any
// single container (spec.md §4.5 "standalone manifest index"). Rows are
// resolved to locations relative to root; signatures are loaded on
// demand, one internal_location at a time, each time Signatures or Find
// needs them (loaded signatures are not cached).
type StandaloneIndex struct {
	root string
	mf   *manifest.Manifest
}

// NewStandaloneIndex builds a StandaloneIndex from manifest rows already
// loaded into memory (e.g. via manifest.LoadFile) and the root directory
// internal_location values are relative to.
func NewStandaloneIndex(root string, rows []manifest.Row) *StandaloneIndex {
	return &StandaloneIndex{root: root, mf: manifest.New(rows)}
}

func (si *StandaloneIndex) locations() []string {
	return si.mf.Locations()
}

func (si *StandaloneIndex) Signatures() ([]*signature.Signature, error) {
	located, err := si.SignaturesWithLocation()
	if err != nil {
		return nil, err
	}
	out := make([]*signature.Signature, len(located))
	for i, ls := range located {
		out[i] = ls.Signature
	}
	return out, nil
}

func (si *StandaloneIndex) SignaturesWithLocation() ([]LocatedSignature, error) {
	var out []LocatedSignature
	for _, loc := range si.locations() {
		path := loc
		if !filepath.IsAbs(path) {
			path = filepath.Join(si.root, loc)
		}
		sigs, err := signature.Load(path, false)
		if err != nil {
			return nil, err
		}
		for _, s := range sigs {
			out = append(out, LocatedSignature{Signature: s, Location: loc})
		}
	}
	return out, nil
}

func (si *StandaloneIndex) Select(c manifest.Criteria) Index {
	return &StandaloneIndex{root: si.root, mf: si.mf.Select(c)}
}

func (si *StandaloneIndex) Find(sf SearchFunc, query *sketch.Sketch, threshold float64) ([]IndexSearchResult, error) {
	located, err := si.SignaturesWithLocation()
	if err != nil {
		return nil, err
	}
	mem := NewMemoryIndex(located)
	return mem.Find(sf, query, threshold)
}

func (si *StandaloneIndex) Manifest() *manifest.Manifest { return si.mf }

func (si *StandaloneIndex) Close() error { return nil }
