/*
sqlite.go implements C6: the SQLite-backed inverted hash index, per
spec.md §4.6. Grounded on the teacher's synthesis.go use of sqlx for
row-oriented SQL access, generalized from synthesis's single flat table
to the sourmash_sketches/sourmash_hashes/sourmash_internal schema and the
hash_query temp-table overlap join spec.md §4.6 specifies. The driver is
modernc.org/sqlite (CGO-free) rather than the teacher's choice of driver,
since synthesis.go never actually opened a database of its own — this is
new wiring of the same sqlx idiom onto a concrete schema.
*/
package index

import (
	"fmt"
	"strings"

	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/kmer"
	"github.com/TimothyStiles/gsearch/manifest"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// schemaTag is the sourmash_internal value identifying this schema
// version (spec.md §4.6).
const schemaTag = "1.0"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sourmash_sketches (
	id INTEGER PRIMARY KEY,
	name TEXT,
	num INTEGER NOT NULL,
	scaled INTEGER NOT NULL,
	ksize INTEGER NOT NULL,
	filename TEXT,
	moltype TEXT NOT NULL,
	with_abundance INTEGER NOT NULL,
	md5sum TEXT NOT NULL,
	seed INTEGER NOT NULL,
	n_hashes INTEGER NOT NULL,
	internal_location TEXT NOT NULL,
	UNIQUE(internal_location, md5sum)
);
CREATE TABLE IF NOT EXISTS sourmash_hashes (
	hashval INTEGER NOT NULL,
	sketch_id INTEGER NOT NULL REFERENCES sourmash_sketches(id)
);
CREATE INDEX IF NOT EXISTS sourmash_hashes_hashval_sketch_id ON sourmash_hashes(hashval, sketch_id);
CREATE INDEX IF NOT EXISTS sourmash_hashes_hashval ON sourmash_hashes(hashval);
CREATE INDEX IF NOT EXISTS sourmash_hashes_sketch_id ON sourmash_hashes(sketch_id);
CREATE TABLE IF NOT EXISTS sourmash_internal (
	key TEXT NOT NULL,
	value TEXT NOT NULL
);
`

// SQLiteIndex is the C6 inverted-hash index: every sketch is scaled mode,
// sharing the same scaled factor, abundance-free (spec.md §4.6
// "Constraints"). It implements Inserter; Save is implicit in sqlx
// autocommit per-statement writes.
type SQLiteIndex struct {
	db     *sqlx.DB
	path   string
	scaled uint64
}

// OpenSQLite opens (creating if necessary) a SQLite inverted index at
// path. If the database already has a sourmash_internal table, its
// schema tag is validated against schemaTag; a mismatch raises
// IndexNotSupported (spec.md §4.6/§7).
func OpenSQLite(path string) (*SQLiteIndex, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, &gserrors.IOError{Path: path, Err: err}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, &gserrors.IOError{Path: path, Err: err}
	}
	idx := &SQLiteIndex{db: db, path: path}
	if err := idx.checkOrSetSchemaTag(); err != nil {
		return nil, err
	}
	idx.scaled, _ = idx.currentScaled()
	return idx, nil
}

func (s *SQLiteIndex) checkOrSetSchemaTag() error {
	var found string
	err := s.db.Get(&found, `SELECT value FROM sourmash_internal WHERE key = 'SqliteIndex'`)
	if err != nil {
		_, err = s.db.Exec(`INSERT INTO sourmash_internal (key, value) VALUES ('SqliteIndex', ?)`, schemaTag)
		return err
	}
	if found != schemaTag {
		return &gserrors.IndexNotSupported{Found: found, Supported: schemaTag}
	}
	return nil
}

func (s *SQLiteIndex) currentScaled() (uint64, error) {
	var scaled uint64
	err := s.db.Get(&scaled, `SELECT scaled FROM sourmash_sketches LIMIT 1`)
	return scaled, err
}

// Insert adds sig's sketches to the index. Every sketch must be
// scaled-mode, non-abundance-tracking, and share the index's current
// scaled factor once one is established (spec.md §4.6 "Constraints").
func (s *SQLiteIndex) Insert(sig *signature.Signature, location string) error {
	for i, sk := range sig.Sketches() {
		if sk.Mode() != sketch.ModeScaled {
			return &gserrors.ModeIncompatible{Operation: "SQLiteIndex.Insert", Detail: "num sketches are not permitted in a SqliteIndex"}
		}
		if sk.TrackAbundance() {
			return &gserrors.CapacityViolation{Detail: "abundance-tracking sketches are not permitted in a SqliteIndex"}
		}
		if s.scaled != 0 && sk.Scaled() != s.scaled {
			return &gserrors.ParameterMismatch{Parameter: "scaled", A: fmt.Sprint(s.scaled), B: fmt.Sprint(sk.Scaled())}
		}
		md5, err := sig.MD5Sum(i)
		if err != nil {
			return err
		}
		tx, err := s.db.Beginx()
		if err != nil {
			return &gserrors.IOError{Path: s.path, Err: err}
		}
		res, err := tx.Exec(
			`INSERT INTO sourmash_sketches (name, num, scaled, ksize, filename, moltype, with_abundance, md5sum, seed, n_hashes, internal_location)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sig.Name(), sk.Num(), sk.Scaled(), sk.Ksize(), sig.Filename(), string(sk.MolType()), 0, md5, sk.Seed(), sk.Len(), location,
		)
		if err != nil {
			tx.Rollback()
			return &gserrors.IOError{Path: s.path, Err: err}
		}
		sketchID, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return &gserrors.IOError{Path: s.path, Err: err}
		}
		stmt, err := tx.Prepare(`INSERT INTO sourmash_hashes (hashval, sketch_id) VALUES (?, ?)`)
		if err != nil {
			tx.Rollback()
			return &gserrors.IOError{Path: s.path, Err: err}
		}
		for _, h := range sk.Hashes() {
			if _, err := stmt.Exec(int64(h), sketchID); err != nil {
				stmt.Close()
				tx.Rollback()
				return &gserrors.IOError{Path: s.path, Err: err}
			}
		}
		stmt.Close()
		if err := tx.Commit(); err != nil {
			return &gserrors.IOError{Path: s.path, Err: err}
		}
		s.scaled = sk.Scaled()
	}
	return nil
}

type sketchRow struct {
	ID               int64  `db:"id"`
	Name             string `db:"name"`
	Num              uint64 `db:"num"`
	Scaled           uint64 `db:"scaled"`
	Ksize            int    `db:"ksize"`
	Filename         string `db:"filename"`
	Moltype          string `db:"moltype"`
	WithAbundance    int    `db:"with_abundance"`
	MD5Sum           string `db:"md5sum"`
	Seed             uint32 `db:"seed"`
	NHashes          int    `db:"n_hashes"`
	InternalLocation string `db:"internal_location"`
}

func (s *SQLiteIndex) allSketchRows() ([]sketchRow, error) {
	var rows []sketchRow
	err := s.db.Select(&rows, `SELECT id, name, num, scaled, ksize, filename, moltype, with_abundance, md5sum, seed, n_hashes, internal_location FROM sourmash_sketches`)
	if err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	return rows, nil
}

func (s *SQLiteIndex) sketchForRow(row sketchRow) (*sketch.Sketch, error) {
	var hashes []int64
	err := s.db.Select(&hashes, `SELECT hashval FROM sourmash_hashes WHERE sketch_id = ? ORDER BY hashval`, row.ID)
	if err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	maxHash := sketch.MaxHashForScaled(row.Scaled)
	sk := sketch.NewScaled(row.Ksize, kmer.MolType(row.Moltype), row.Seed, maxHash, false)
	for _, h := range hashes {
		if err := sk.AddHash(uint64(h)); err != nil {
			return nil, err
		}
	}
	return sk.Freeze(), nil
}

func (s *SQLiteIndex) Signatures() ([]*signature.Signature, error) {
	located, err := s.SignaturesWithLocation()
	if err != nil {
		return nil, err
	}
	out := make([]*signature.Signature, len(located))
	for i, ls := range located {
		out[i] = ls.Signature
	}
	return out, nil
}

func (s *SQLiteIndex) SignaturesWithLocation() ([]LocatedSignature, error) {
	rows, err := s.allSketchRows()
	if err != nil {
		return nil, err
	}
	out := make([]LocatedSignature, 0, len(rows))
	for _, row := range rows {
		sk, err := s.sketchForRow(row)
		if err != nil {
			return nil, err
		}
		sig := signature.New(row.Name, "", row.Filename, "", sk)
		out = append(out, LocatedSignature{Signature: sig, Location: row.InternalLocation})
	}
	return out, nil
}

func (s *SQLiteIndex) Select(c manifest.Criteria) Index {
	return &sqliteSelection{base: s, criteria: c}
}

func (s *SQLiteIndex) Manifest() *manifest.Manifest {
	rows, err := s.allSketchRows()
	if err != nil {
		return manifest.New(nil)
	}
	mrows := make([]manifest.Row, len(rows))
	for i, r := range rows {
		md5short := r.MD5Sum
		if len(md5short) > 8 {
			md5short = md5short[:8]
		}
		mrows[i] = manifest.Row{
			InternalLocation: r.InternalLocation,
			MD5:              r.MD5Sum,
			MD5Short:         md5short,
			Ksize:            r.Ksize,
			Moltype:          r.Moltype,
			Num:              r.Num,
			Scaled:           r.Scaled,
			NHashes:          r.NHashes,
			Seed:             r.Seed,
			WithAbundance:    r.WithAbundance != 0,
			Name:             r.Name,
			Filename:         r.Filename,
		}
	}
	return manifest.New(mrows)
}

// Find implements the overlap query of spec.md §4.6: populate a
// hash_query temp table with the query's hashes, join against
// sourmash_hashes grouped by sketch_id, then score each candidate with
// sf.
func (s *SQLiteIndex) Find(sf SearchFunc, query *sketch.Sketch, threshold float64) ([]IndexSearchResult, error) {
	if query.Mode() != sketch.ModeScaled {
		return nil, &gserrors.ModeIncompatible{Operation: "SQLiteIndex.Find", Detail: "query must be scaled mode"}
	}
	q := query
	if s.scaled > query.Scaled() {
		down, err := query.Downsample(sketch.ModeScaled, sketch.MaxHashForScaled(s.scaled))
		if err == nil {
			q = down
		}
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS hash_query (hashval INTEGER PRIMARY KEY)`); err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	if _, err := tx.Exec(`DELETE FROM hash_query`); err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO hash_query (hashval) VALUES (?)`)
	if err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	for _, h := range q.Hashes() {
		if _, err := stmt.Exec(int64(h)); err != nil {
			stmt.Close()
			return nil, &gserrors.IOError{Path: s.path, Err: err}
		}
	}
	stmt.Close()

	maxHash := int64(q.MaxHash())
	var sql strings.Builder
	sql.WriteString(`SELECT sketch_id, COUNT(hashval) AS n FROM sourmash_hashes, hash_query WHERE hash_query.hashval = sourmash_hashes.hashval`)
	var args []interface{}
	if maxHash >= 0 {
		sql.WriteString(` AND sourmash_hashes.hashval >= 0 AND sourmash_hashes.hashval <= ?`)
		args = append(args, maxHash)
	}
	sql.WriteString(` GROUP BY sketch_id ORDER BY n DESC`)

	type overlapRow struct {
		SketchID int64 `db:"sketch_id"`
		N        int   `db:"n"`
	}
	var overlaps []overlapRow
	if err := tx.Select(&overlaps, sql.String(), args...); err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}

	var out []IndexSearchResult
	for _, o := range overlaps {
		var row sketchRow
		if err := tx.Get(&row, `SELECT id, name, num, scaled, ksize, filename, moltype, with_abundance, md5sum, seed, n_hashes, internal_location FROM sourmash_sketches WHERE id = ?`, o.SketchID); err != nil {
			continue
		}
		score := sf.Score(q.Len(), o.N, row.NHashes, q.Len()+row.NHashes-o.N)
		if !sf.Pass(score, threshold) {
			continue
		}
		sk, err := s.sketchForRowTx(tx, row)
		if err != nil {
			return nil, err
		}
		sig := signature.New(row.Name, "", row.Filename, "", sk)
		out = append(out, IndexSearchResult{Score: score, Signature: sig, Location: row.InternalLocation})
	}
	return out, nil
}

func (s *SQLiteIndex) sketchForRowTx(tx *sqlx.Tx, row sketchRow) (*sketch.Sketch, error) {
	var hashes []int64
	if err := tx.Select(&hashes, `SELECT hashval FROM sourmash_hashes WHERE sketch_id = ? ORDER BY hashval`, row.ID); err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	maxHash := sketch.MaxHashForScaled(row.Scaled)
	sk := sketch.NewScaled(row.Ksize, kmer.MolType(row.Moltype), row.Seed, maxHash, false)
	for _, h := range hashes {
		if err := sk.AddHash(uint64(h)); err != nil {
			return nil, err
		}
	}
	return sk.Freeze(), nil
}

func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// sqliteSelection is the lazily-narrowed view Select returns: it carries
// the criteria forward and applies them when Signatures/Find are finally
// called, rather than materializing every row up front.
type sqliteSelection struct {
	base     *SQLiteIndex
	criteria manifest.Criteria
}

func (sel *sqliteSelection) Signatures() ([]*signature.Signature, error) {
	located, err := sel.SignaturesWithLocation()
	if err != nil {
		return nil, err
	}
	out := make([]*signature.Signature, len(located))
	for i, ls := range located {
		out[i] = ls.Signature
	}
	return out, nil
}

func (sel *sqliteSelection) SignaturesWithLocation() ([]LocatedSignature, error) {
	located, err := sel.base.SignaturesWithLocation()
	if err != nil {
		return nil, err
	}
	mf := manifest.New(rowsFor(located)).Select(sel.criteria)
	allowed := make(map[string]bool)
	for _, r := range mf.Rows() {
		allowed[r.MD5] = true
	}
	var out []LocatedSignature
	for _, ls := range located {
		for i := range ls.Signature.Sketches() {
			md5, _ := ls.Signature.MD5Sum(i)
			if allowed[md5] {
				out = append(out, ls)
				break
			}
		}
	}
	return out, nil
}

func (sel *sqliteSelection) Select(c manifest.Criteria) Index {
	return &sqliteSelection{base: sel.base, criteria: mergeCriteria(sel.criteria, c)}
}

func (sel *sqliteSelection) Find(sf SearchFunc, query *sketch.Sketch, threshold float64) ([]IndexSearchResult, error) {
	all, err := sel.base.Find(sf, query, threshold)
	if err != nil {
		return nil, err
	}
	var out []IndexSearchResult
	for _, r := range all {
		for i := range r.Signature.Sketches() {
			md5, _ := r.Signature.MD5Sum(i)
			if criteriaMatchesMD5(sel.criteria, sel.base, md5) {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (sel *sqliteSelection) Manifest() *manifest.Manifest {
	return sel.base.Manifest().Select(sel.criteria)
}

func (sel *sqliteSelection) Close() error { return nil }

func mergeCriteria(a, b manifest.Criteria) manifest.Criteria {
	merged := a
	if b.Ksize != 0 {
		merged.Ksize = b.Ksize
	}
	if b.Moltype != "" {
		merged.Moltype = b.Moltype
	}
	if b.Num != 0 {
		merged.Num = b.Num
	}
	if b.Scaled != 0 {
		merged.Scaled = b.Scaled
	}
	if b.Abund != nil {
		merged.Abund = b.Abund
	}
	if b.Picklist != nil {
		merged.Picklist = b.Picklist
	}
	return merged
}

func criteriaMatchesMD5(c manifest.Criteria, base *SQLiteIndex, md5 string) bool {
	mf := base.Manifest().Select(c)
	for _, r := range mf.Rows() {
		if r.MD5 == md5 {
			return true
		}
	}
	return false
}
