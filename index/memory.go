package index

import (
	"github.com/TimothyStiles/gsearch/manifest"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
)

// MemoryIndex is the simplest Index backend: an in-memory slice of
// located signatures, no file handles to close. It implements Inserter
// but not Saver (spec.md §4.5 "in-memory list").
type MemoryIndex struct {
	located  []LocatedSignature
	selected []LocatedSignature // nil means "same as located"
}

// NewMemoryIndex wraps sigs, each attributed to location, as an Index.
func NewMemoryIndex(sigs []LocatedSignature) *MemoryIndex {
	return &MemoryIndex{located: sigs}
}

func (m *MemoryIndex) current() []LocatedSignature {
	if m.selected != nil {
		return m.selected
	}
	return m.located
}

func (m *MemoryIndex) Signatures() ([]*signature.Signature, error) {
	cur := m.current()
	out := make([]*signature.Signature, len(cur))
	for i, ls := range cur {
		out[i] = ls.Signature
	}
	return out, nil
}

func (m *MemoryIndex) SignaturesWithLocation() ([]LocatedSignature, error) {
	return append([]LocatedSignature(nil), m.current()...), nil
}

func (m *MemoryIndex) Select(c manifest.Criteria) Index {
	mf := manifest.New(rowsFor(m.current())).Select(c)
	allowed := make(map[string]bool)
	for _, r := range mf.Rows() {
		allowed[r.MD5] = true
	}
	var selected []LocatedSignature
	for _, ls := range m.current() {
		for i := range ls.Signature.Sketches() {
			md5, _ := ls.Signature.MD5Sum(i)
			if allowed[md5] {
				selected = append(selected, ls)
				break
			}
		}
	}
	return &MemoryIndex{located: m.located, selected: selected}
}

func (m *MemoryIndex) Find(sf SearchFunc, query *sketch.Sketch, threshold float64) ([]IndexSearchResult, error) {
	var results []IndexSearchResult
	for _, ls := range m.current() {
		for _, sk := range ls.Signature.Sketches() {
			if sk.MolType() != query.MolType() || sk.Ksize() != query.Ksize() {
				continue
			}
			q := downsampleForFind(query, []*sketch.Sketch{sk})
			common, err := q.CountCommon(sk, true)
			if err != nil {
				continue
			}
			score := sf.Score(q.Len(), int(common), sk.Len(), q.Len()+sk.Len()-int(common))
			if sf.Pass(score, threshold) {
				results = append(results, IndexSearchResult{Score: score, Signature: ls.Signature, Location: ls.Location})
			}
		}
	}
	return results, nil
}

func (m *MemoryIndex) Manifest() *manifest.Manifest {
	return manifest.New(rowsFor(m.current()))
}

func (m *MemoryIndex) Close() error { return nil }

// Insert appends sig to the index at location (Inserter capability).
func (m *MemoryIndex) Insert(sig *signature.Signature, location string) error {
	m.located = append(m.located, LocatedSignature{Signature: sig, Location: location})
	m.selected = nil
	return nil
}

func rowsFor(sigs []LocatedSignature) []manifest.Row {
	rows := make([]manifest.Row, 0, len(sigs))
	for _, ls := range sigs {
		for i, sk := range ls.Signature.Sketches() {
			md5, _ := ls.Signature.MD5Sum(i)
			md5short := md5
			if len(md5short) > 8 {
				md5short = md5short[:8]
			}
			rows = append(rows, manifest.Row{
				InternalLocation: ls.Location,
				MD5:              md5,
				MD5Short:         md5short,
				Ksize:            sk.Ksize(),
				Moltype:          string(sk.MolType()),
				Num:              sk.Num(),
				Scaled:           sk.Scaled(),
				NHashes:          sk.Len(),
				Seed:             sk.Seed(),
				WithAbundance:    sk.TrackAbundance(),
				Name:             ls.Signature.Name(),
				Filename:         ls.Signature.Filename(),
			})
		}
	}
	return rows
}
