/*
Package manifest implements C4: the tabular catalog of sketches and their
storage locations, per spec.md §4.4/§6. Two concrete backends share one
in-memory Row slice representation — CSV (optionally gzipped) and SQLite
(index/sqlite.go) — so this package owns the row type, CSV codec, and the
lazy select/filter/picklist operations common to both.

Grounded on the teacher's synthesis.go row-oriented CSV handling,
generalized from a single fixed schema to spec.md §3's manifest columns
and the lazy select()/filter_rows() narrowing spec.md §4.4 requires.
*/
package manifest

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/TimothyStiles/gsearch/gserrors"
)

// Row is one manifest entry: a sketch's identifying parameters plus where
// to find it (spec.md §3).
type Row struct {
	InternalLocation string
	MD5              string
	MD5Short         string
	Ksize            int
	Moltype          string
	Num              uint64
	Scaled           uint64
	NHashes          int
	Seed             uint32
	WithAbundance    bool
	Name             string
	Filename         string
}

// columns is the canonical CSV column order spec.md §3/§6 fixes.
var columns = []string{
	"internal_location", "md5", "md5short", "ksize", "moltype", "num",
	"scaled", "n_hashes", "seed", "with_abundance", "name", "filename",
}

// Manifest is an in-memory, CSV-backed catalog with lazy selection
// criteria layered on top of a fixed row set: Select narrows without
// copying the underlying rows until Rows is called.
type Manifest struct {
	all      []Row
	criteria []func(Row) bool
}

// New wraps rows in a Manifest with no selection criteria applied.
func New(rows []Row) *Manifest {
	return &Manifest{all: rows}
}

// Criteria narrows a Select call (spec.md §4.4): zero-valued fields are
// treated as "don't care" except Abund/Containment, which are tri-state
// via pointers.
type Criteria struct {
	Ksize       int
	Moltype     string
	Num         uint64
	Scaled      uint64
	Abund       *bool
	Containment *bool
	Picklist    *Picklist
}

// Select returns a new Manifest with criteria layered onto the existing
// selection (narrowing is cumulative and lazy: Rows() applies every
// criterion when finally called).
func (m *Manifest) Select(c Criteria) *Manifest {
	next := &Manifest{all: m.all, criteria: append(append([]func(Row) bool{}, m.criteria...), criteriaPredicate(c))}
	return next
}

func criteriaPredicate(c Criteria) func(Row) bool {
	return func(r Row) bool {
		if c.Ksize != 0 && r.Ksize != c.Ksize {
			return false
		}
		if c.Moltype != "" && r.Moltype != c.Moltype {
			return false
		}
		if c.Num != 0 && r.Num != c.Num {
			return false
		}
		if c.Scaled != 0 && r.Scaled != c.Scaled {
			return false
		}
		if c.Abund != nil && r.WithAbundance != *c.Abund {
			return false
		}
		if c.Picklist != nil && !c.Picklist.Matches(r) {
			return false
		}
		return true
	}
}

// Rows returns every row passing the manifest's accumulated selection
// criteria, in their original order.
func (m *Manifest) Rows() []Row {
	out := make([]Row, 0, len(m.all))
	for _, r := range m.all {
		if m.passes(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *Manifest) passes(r Row) bool {
	for _, c := range m.criteria {
		if !c(r) {
			return false
		}
	}
	return true
}

// FilterRows narrows the manifest further by an arbitrary predicate,
// applied in-memory regardless of backend (spec.md §4.4): SQL-backed
// manifests fall back to row-by-row evaluation when a predicate cannot
// be pushed down to SQL, which for this package is always, since it has
// no SQL backend of its own.
func (m *Manifest) FilterRows(fn func(Row) bool) *Manifest {
	return &Manifest{all: m.all, criteria: append(append([]func(Row) bool{}, m.criteria...), fn)}
}

// FilterOnColumns is FilterRows restricted to evaluating fn against a
// named subset of columns, useful when fn is generated generically (e.g.
// from a picklist) and should ignore columns it wasn't built for.
func (m *Manifest) FilterOnColumns(fn func(map[string]string) bool, cols []string) *Manifest {
	return m.FilterRows(func(r Row) bool {
		values := rowValues(r)
		subset := make(map[string]string, len(cols))
		for _, c := range cols {
			subset[c] = values[c]
		}
		return fn(subset)
	})
}

// Locations returns the (possibly over-approximating) set of distinct
// storage locations referenced by the current selection (spec.md §4.4).
func (m *Manifest) Locations() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range m.Rows() {
		if !seen[r.InternalLocation] {
			seen[r.InternalLocation] = true
			out = append(out, r.InternalLocation)
		}
	}
	return out
}

// ToPicklist distills the current selection into an md5 picklist (spec.md
// §4.4), enabling manifest-driven queries against backends that do not
// share this manifest's storage.
func (m *Manifest) ToPicklist() *Picklist {
	md5s := make(map[string]bool)
	for _, r := range m.Rows() {
		md5s[r.MD5] = true
	}
	return &Picklist{Kind: PicklistMD5, Values: md5s}
}

// Contains reports whether md5 (plus, if set, the manifest's picklist) is
// present in the current selection (spec.md §4.4 "__contains__").
func (m *Manifest) Contains(md5 string) bool {
	for _, r := range m.Rows() {
		if r.MD5 == md5 {
			return true
		}
	}
	return false
}

// Add unions m with other, collapsing duplicates by (internal_location,
// md5) (spec.md §4.4 "__iadd__/__add__").
func (m *Manifest) Add(other *Manifest) *Manifest {
	seen := make(map[[2]string]bool, len(m.all))
	out := make([]Row, 0, len(m.all)+len(other.all))
	for _, r := range m.Rows() {
		key := [2]string{r.InternalLocation, r.MD5}
		if !seen[key] {
			seen[key] = true
			out = append(out, r)
		}
	}
	for _, r := range other.Rows() {
		key := [2]string{r.InternalLocation, r.MD5}
		if !seen[key] {
			seen[key] = true
			out = append(out, r)
		}
	}
	return New(out)
}

func rowValues(r Row) map[string]string {
	return map[string]string{
		"internal_location": r.InternalLocation,
		"md5":               r.MD5,
		"md5short":          r.MD5Short,
		"ksize":             strconv.Itoa(r.Ksize),
		"moltype":           r.Moltype,
		"num":               strconv.FormatUint(r.Num, 10),
		"scaled":            strconv.FormatUint(r.Scaled, 10),
		"n_hashes":          strconv.Itoa(r.NHashes),
		"seed":              strconv.FormatUint(uint64(r.Seed), 10),
		"with_abundance":    strconv.FormatBool(r.WithAbundance),
		"name":              r.Name,
		"filename":          r.Filename,
	}
}

// ReadCSV parses a manifest CSV (optionally gzipped, per the caller's
// choice of reader) per spec.md §6: one optional comment line beginning
// '#', then a canonical header row.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(bufferedSkipComment(r))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &gserrors.FormatError{Detail: err.Error(), Offset: -1}
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, Row{
			InternalLocation: field(rec, idx, "internal_location"),
			MD5:              field(rec, idx, "md5"),
			MD5Short:         field(rec, idx, "md5short"),
			Ksize:            atoi(field(rec, idx, "ksize")),
			Moltype:          field(rec, idx, "moltype"),
			Num:              atou(field(rec, idx, "num")),
			Scaled:           atou(field(rec, idx, "scaled")),
			NHashes:          atoi(field(rec, idx, "n_hashes")),
			Seed:             uint32(atou(field(rec, idx, "seed"))),
			WithAbundance:    field(rec, idx, "with_abundance") == "true",
			Name:             field(rec, idx, "name"),
			Filename:         field(rec, idx, "filename"),
		})
	}
	return rows, nil
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atou(s string) uint64 {
	n, _ := strconv.ParseUint(s, 10, 64)
	return n
}

// bufferedSkipComment strips a single leading '#' comment line, if
// present, before handing the rest of r to the CSV reader (spec.md §6:
// "One comment line beginning '#' is allowed before the header").
func bufferedSkipComment(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	b, err := br.Peek(1)
	if err != nil || len(b) == 0 || b[0] != '#' {
		return br
	}
	br.ReadString('\n')
	return br
}

// WriteCSV writes rows to w as a manifest CSV with the canonical header
// row spec.md §6 fixes, no leading comment.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return &gserrors.IOError{Err: err}
	}
	for _, r := range rows {
		v := rowValues(r)
		rec := make([]string, len(columns))
		for i, c := range columns {
			rec[i] = v[c]
		}
		if err := cw.Write(rec); err != nil {
			return &gserrors.IOError{Err: err}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSVGzip is ReadCSV for a gzip-compressed manifest (the ".csv.gz"
// form spec.md §6 names).
func ReadCSVGzip(r io.Reader) ([]Row, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, &gserrors.FormatError{Detail: err.Error(), Offset: -1}
	}
	defer zr.Close()
	return ReadCSV(zr)
}

// LoadFile reads a manifest CSV from path, transparently gzip-decoding
// when path ends in ".gz".
func LoadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &gserrors.IOError{Path: path, Err: err}
	}
	defer f.Close()
	if strings.HasSuffix(path, ".gz") {
		return ReadCSVGzip(f)
	}
	return ReadCSV(f)
}
