package index

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/manifest"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
)

// DirectoryIndex is an Index backend over a directory of .sig/.sig.gz
// files, each signature's location being its filename relative to the
// directory root (spec.md §4.5). It implements Inserter: inserting
// writes a new .sig file immediately rather than buffering.
type DirectoryIndex struct {
	root string
	mem  *MemoryIndex
}

// OpenDirectory loads every .sig/.sig.gz file directly under root
// (non-recursive, matching the reference implementation's directory
// index convention) into a MemoryIndex-backed DirectoryIndex.
func OpenDirectory(root string) (*DirectoryIndex, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &gserrors.IOError{Path: root, Err: err}
	}
	var located []LocatedSignature
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sig") && !strings.HasSuffix(name, ".sig.gz") {
			continue
		}
		path := filepath.Join(root, name)
		sigs, err := signature.Load(path, false)
		if err != nil {
			return nil, err
		}
		for _, s := range sigs {
			located = append(located, LocatedSignature{Signature: s, Location: name})
		}
	}
	return &DirectoryIndex{root: root, mem: NewMemoryIndex(located)}, nil
}

func (d *DirectoryIndex) Signatures() ([]*signature.Signature, error) { return d.mem.Signatures() }

func (d *DirectoryIndex) SignaturesWithLocation() ([]LocatedSignature, error) {
	return d.mem.SignaturesWithLocation()
}

func (d *DirectoryIndex) Select(c manifest.Criteria) Index {
	return &DirectoryIndex{root: d.root, mem: d.mem.Select(c).(*MemoryIndex)}
}

func (d *DirectoryIndex) Find(sf SearchFunc, query *sketch.Sketch, threshold float64) ([]IndexSearchResult, error) {
	return d.mem.Find(sf, query, threshold)
}

func (d *DirectoryIndex) Manifest() *manifest.Manifest { return d.mem.Manifest() }

func (d *DirectoryIndex) Close() error { return nil }

// Insert writes sig to root/location immediately (spec.md §4.5: directory
// indexes are write-capable).
func (d *DirectoryIndex) Insert(sig *signature.Signature, location string) error {
	path := filepath.Join(d.root, location)
	if err := signature.Save(path, []*signature.Signature{sig}); err != nil {
		return err
	}
	return d.mem.Insert(sig, location)
}
