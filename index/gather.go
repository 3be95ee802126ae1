package index

import (
	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
)

// GatherPeeker is the Peek/Consume collaborator spec.md §4.7 attributes to
// the SQLite backend: "which remaining sketch has the biggest overlap"
// answered via the reverse hash index and a running per-sketch counter,
// instead of the linear candidate rescan search.Gather otherwise falls
// back to.
type GatherPeeker interface {
	// PeekGather returns the current best candidate's signature, location,
	// and its shared-hash count against remaining, or ok=false if no
	// candidate's count clears minShared. claimed is the subset of
	// remaining's hashes the candidate actually owns, for the caller to
	// both remove from its own query and pass to ConsumeGather.
	PeekGather(remaining *sketch.Sketch, minShared float64) (sig *signature.Signature, location string, overlap uint64, claimed []uint64, ok bool)
	// ConsumeGather decrements the running counters for every sketch that
	// owns one of claimed, so the next PeekGather reflects the shrunk
	// query without rescanning every candidate's hash set.
	ConsumeGather(claimed []uint64)
}

// GatherSessionSource is implemented by backends that can build a
// GatherPeeker scoped to one Gather call, seeded from the query's full
// hash set up front.
type GatherSessionSource interface {
	NewGatherSession(query *sketch.Sketch) (GatherPeeker, error)
}

// sqliteGatherSession is the running-counter GatherPeeker: built once per
// Gather call from a single reverse-index join, then updated in place as
// hashes are consumed, rather than re-querying SQLite on every iteration.
type sqliteGatherSession struct {
	idx    *SQLiteIndex
	rows   map[int64]sketchRow // sketch_id -> metadata, for candidates seen at least once
	counts map[int64]int       // sketch_id -> current remaining overlap
	owners map[uint64][]int64  // hashval -> sketch_ids that contain it
}

// NewGatherSession implements GatherSessionSource: one join of query's
// hashes against sourmash_hashes/sourmash_sketches (filtered to query's
// ksize/moltype) seeds every candidate's initial overlap count.
func (s *SQLiteIndex) NewGatherSession(query *sketch.Sketch) (GatherPeeker, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS gather_query (hashval INTEGER PRIMARY KEY)`); err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	if _, err := tx.Exec(`DELETE FROM gather_query`); err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO gather_query (hashval) VALUES (?)`)
	if err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}
	for _, h := range query.Hashes() {
		if _, err := stmt.Exec(int64(h)); err != nil {
			stmt.Close()
			return nil, &gserrors.IOError{Path: s.path, Err: err}
		}
	}
	stmt.Close()

	type hashHit struct {
		SketchID int64 `db:"sketch_id"`
		Hashval  int64 `db:"hashval"`
	}
	var hits []hashHit
	err = tx.Select(&hits, `
		SELECT sourmash_hashes.sketch_id AS sketch_id, sourmash_hashes.hashval AS hashval
		FROM sourmash_hashes
		JOIN gather_query ON gather_query.hashval = sourmash_hashes.hashval
		JOIN sourmash_sketches ON sourmash_sketches.id = sourmash_hashes.sketch_id
		WHERE sourmash_sketches.ksize = ? AND sourmash_sketches.moltype = ?`,
		query.Ksize(), string(query.MolType()),
	)
	if err != nil {
		return nil, &gserrors.IOError{Path: s.path, Err: err}
	}

	session := &sqliteGatherSession{
		idx:    s,
		rows:   make(map[int64]sketchRow),
		counts: make(map[int64]int),
		owners: make(map[uint64][]int64),
	}
	seen := make(map[int64]bool)
	for _, h := range hits {
		session.counts[h.SketchID]++
		session.owners[uint64(h.Hashval)] = append(session.owners[uint64(h.Hashval)], h.SketchID)
		seen[h.SketchID] = true
	}
	for id := range seen {
		var row sketchRow
		if err := tx.Get(&row, `SELECT id, name, num, scaled, ksize, filename, moltype, with_abundance, md5sum, seed, n_hashes, internal_location FROM sourmash_sketches WHERE id = ?`, id); err != nil {
			return nil, &gserrors.IOError{Path: s.path, Err: err}
		}
		session.rows[id] = row
	}
	return session, nil
}

func (g *sqliteGatherSession) PeekGather(remaining *sketch.Sketch, minShared float64) (*signature.Signature, string, uint64, []uint64, bool) {
	bestID := int64(-1)
	var bestCount int
	var bestMD5 string
	for id, count := range g.counts {
		if count <= 0 {
			continue
		}
		row := g.rows[id]
		if bestID == -1 || count > bestCount || (count == bestCount && row.MD5Sum < bestMD5) {
			bestID, bestCount, bestMD5 = id, count, row.MD5Sum
		}
	}
	if bestID == -1 || float64(bestCount) < minShared {
		return nil, "", 0, nil, false
	}

	row := g.rows[bestID]
	sk, err := g.idx.sketchForRow(row)
	if err != nil {
		return nil, "", 0, nil, false
	}
	claimed := intersectHashes(remaining, sk)
	sig := signature.New(row.Name, "", row.Filename, "", sk)
	return sig, row.InternalLocation, uint64(bestCount), claimed, true
}

func (g *sqliteGatherSession) ConsumeGather(claimed []uint64) {
	for _, h := range claimed {
		for _, id := range g.owners[h] {
			if g.counts[id] > 0 {
				g.counts[id]--
			}
		}
		delete(g.owners, h)
	}
}

func intersectHashes(a, b *sketch.Sketch) []uint64 {
	bSet := make(map[uint64]bool, b.Len())
	for _, h := range b.Hashes() {
		bSet[h] = true
	}
	var out []uint64
	for _, h := range a.Hashes() {
		if bSet[h] {
			out = append(out, h)
		}
	}
	return out
}
