/*
Package seqio feeds sequence records to a sketch without materializing
an entire file in memory, per spec.md §9's "lazy generators across I/O
boundaries" design note: Signatures()/rows/find are cursor-backed
iterators, and a sequence reader is the same shape one level down.

Grounded directly on io/fasta2.Parser's HasNext()/Next() cursor: this
package is a thin Reader interface over it (and, by implementing the same
interface, over any other record source), so the rest of gsearch depends
on seqio.Reader rather than the fasta2 package directly.
*/
package seqio

import (
	"io"
	"os"
	"strings"

	"github.com/TimothyStiles/gsearch/gserrors"
	fasta "github.com/TimothyStiles/gsearch/io/fasta2"
)

// Record is one named sequence pulled from a Reader.
type Record struct {
	Name     string
	Sequence string
}

// Reader is a cursor over sequence records: call HasNext before each
// Next, and stop once HasNext returns false. Implementations close their
// underlying resource once exhausted.
type Reader interface {
	HasNext() bool
	Next() (Record, error)
}

// FastaReader adapts fasta2.Parser to Reader, splitting a record's header
// on the first space to separate the identifier from any description,
// matching the manifest's identifier convention (manifest.Picklist's
// PicklistIdent).
type FastaReader struct {
	parser *fasta.Parser
	closer io.Closer
}

// NewFastaReader wraps r as a FastaReader. If r also implements
// io.Closer, closing it is left to the caller — FastaReader does not
// assume ownership of r.
func NewFastaReader(r io.Reader) *FastaReader {
	return &FastaReader{parser: fasta.NewParser(r)}
}

// OpenFasta opens path and returns a FastaReader over it. Only plain
// (.fa/.fasta) input is handled; gzip-compressed input is not
// decompressed.
func OpenFasta(path string) (*FastaReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &gserrors.IOError{Path: path, Err: err}
	}
	fr := NewFastaReader(f)
	fr.closer = f
	return fr, nil
}

func (fr *FastaReader) HasNext() bool { return fr.parser.HasNext() }

func (fr *FastaReader) Next() (Record, error) {
	rec, err := fr.parser.Next()
	if err != nil {
		return Record{}, err
	}
	name := rec.Header
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	if !fr.HasNext() && fr.closer != nil {
		fr.closer.Close()
	}
	return Record{Name: name, Sequence: rec.Sequence}, nil
}

// ReadAll drains r into a slice, for callers (tests, small inputs) that
// don't need streaming.
func ReadAll(r Reader) ([]Record, error) {
	var out []Record
	for r.HasNext() {
		rec, err := r.Next()
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// WriteFasta writes records back out as FASTA, via fasta2.WriteFile: the
// write half of the same cursor-idiom package seqio reads with. Used by
// diagnostics that re-emit a filtered subset of their input (cmd/gsearch
// stats --keep-valid) rather than anything in the core sketch/search path,
// since a Sketch never retains the sequence it was built from.
func WriteFasta(records []Record, path string) error {
	recs := make([]fasta.Record, len(records))
	for i, r := range records {
		recs[i] = fasta.Record{Header: r.Name, Sequence: r.Sequence}
	}
	if err := fasta.WriteFile(recs, path); err != nil {
		return &gserrors.IOError{Path: path, Err: err}
	}
	return nil
}
