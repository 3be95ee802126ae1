/*
Package index implements C5 (the indexed collection abstraction) and C6
(the SQLite inverted index), per spec.md §4.5/§4.6. An Index is a
uniform polymorphic surface over a capability set; this package expresses
that as Go interfaces rather than a single interface with optional
methods, per spec.md §9 ("Polymorphism over storage backends... a
capability set... optional operations are an extension trait/interface
distinct from the read surface").

Grounded on the teacher's synthesis.go sqlx usage for the SQLite backend
(sqlite.go) and on io/fasta2.Parser's cursor idiom for every backend's
lazy Signatures() sequence.
*/
package index

import (
	"github.com/TimothyStiles/gsearch/manifest"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
)

// IndexSearchResult is one hit from Find: the score a search function
// computed, the matching signature, and the storage location it was
// loaded from (spec.md §4.5).
type IndexSearchResult struct {
	Score     float64
	Signature *signature.Signature
	Location  string
}

// SearchFunc scores one candidate and decides whether it passes a
// threshold, per spec.md §4.7's JaccardSearch/ContainmentSearch/
// PrefetchSearch shape.
type SearchFunc struct {
	Name  string
	Score func(querySize, shared, subjSize, totalSize int) float64
	Pass  func(score float64, threshold float64) bool
}

// Index is the read-only capability every backend implements: list
// signatures, narrow by manifest criteria, and run the internal find
// primitive search/prefetch/gather build on.
type Index interface {
	// Signatures returns every signature the index holds.
	Signatures() ([]*signature.Signature, error)
	// SignaturesWithLocation pairs each signature with its storage
	// location, for backends where that differs from the index path
	// itself (directory, zip, standalone-manifest).
	SignaturesWithLocation() ([]LocatedSignature, error)
	// Select narrows the index to sketches matching criteria, returning
	// a new Index sharing the same backing store.
	Select(manifest.Criteria) Index
	// Find yields IndexSearchResult for every signature sf accepts
	// against query, downsampling query to this index's resolution first
	// if needed.
	Find(sf SearchFunc, query *sketch.Sketch, threshold float64) ([]IndexSearchResult, error)
	// Manifest returns the manifest describing this index's current
	// selection.
	Manifest() *manifest.Manifest
	// Close releases any resources (file handles, DB connections) the
	// index holds.
	Close() error
}

// LocatedSignature pairs a Signature with the location it was loaded
// from.
type LocatedSignature struct {
	Signature *signature.Signature
	Location  string
}

// Inserter is the write extension: backends implementing it (directory,
// zip opened for append, SQLite) are a write-capable superset of Index
// (spec.md §4.5).
type Inserter interface {
	Insert(sig *signature.Signature, location string) error
}

// Saver is the persistence extension: backends that buffer writes in
// memory until an explicit flush (in-memory index serialized to zip,
// CSV manifest) implement it.
type Saver interface {
	Save(path string) error
}

// downsampleForFind returns query downsampled to the resolution the
// index's sketches use, matching spec.md §4.5's "after downsampling the
// query to the backend's resolution as needed". If the index is mixed
// resolution or empty, query is returned unchanged: callers discover any
// resulting incompatibility through the ordinary SameParameters/SameMode
// checks against each candidate.
func downsampleForFind(query *sketch.Sketch, sketches []*sketch.Sketch) *sketch.Sketch {
	if len(sketches) == 0 {
		return query
	}
	ref := sketches[0]
	if query.Mode() != ref.Mode() {
		return query
	}
	if query.Mode() == sketch.ModeScaled && query.MaxHash() > ref.MaxHash() {
		down, err := query.Downsample(sketch.ModeScaled, ref.MaxHash())
		if err == nil {
			return down
		}
	}
	return query
}
