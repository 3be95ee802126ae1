package index

import (
	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/signature"
)

// ZipIndex wraps a zip archive of signature entries plus an embedded
// SOURMASH-MANIFEST.csv (spec.md §4.5/§6) as an Index. It is read-only
// over the opened file; opening for append is not supported in this
// package, matching the Non-goal on zip-append mutation spec.md's
// companion component list leaves to the directory and SQLite backends.
type ZipIndex struct {
	*MemoryIndex
	path string
}

// OpenZip loads every signature entry from the zip archive at path into
// a MemoryIndex-backed ZipIndex, skipping the embedded manifest entry.
func OpenZip(path string) (*ZipIndex, error) {
	sigs, err := signature.Load(path, false)
	if err != nil {
		return nil, err
	}
	located := make([]LocatedSignature, len(sigs))
	for i, s := range sigs {
		located[i] = LocatedSignature{Signature: s, Location: path}
	}
	return &ZipIndex{MemoryIndex: NewMemoryIndex(located), path: path}, nil
}

// Save writes the index's current selection back out as a zip archive at
// the given path (Saver capability).
func (z *ZipIndex) Save(path string) error {
	located, err := z.SignaturesWithLocation()
	if err != nil {
		return err
	}
	sigs := make([]*signature.Signature, len(located))
	for i, ls := range located {
		sigs[i] = ls.Signature
	}
	rows := rowsFor(located)
	if err := signature.SaveZip(path, sigs, rows); err != nil {
		return &gserrors.IOError{Path: path, Err: err}
	}
	return nil
}
