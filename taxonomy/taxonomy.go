/*
Package taxonomy implements the rank-by-rank gather summarization
SPEC_FULL.md §5 adds back from original_source/: aggregating gather
results against a lineage database up each rank of a taxonomy, the third
query family spec.md §1 names but whose component design spec.md itself
leaves out of the distilled core.

Grounded on the teacher's alphabet.Error-style plain error structs
(gserrors) for the fail-fast path, and on spec.md §9's explicit guidance
that a taxonomy "miss" is a filtering outcome, not an exception: modeled
here as the MissingTaxonomy MatchOutcome rather than a thrown/caught error.
*/
package taxonomy

import (
	"strings"

	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/manifest"
	"github.com/TimothyStiles/gsearch/search"
)

// Ranks is the fixed rank order this package aggregates over, the
// standard seven-rank taxonomy the reference implementation's lineage
// CSVs use.
var Ranks = []string{"superkingdom", "phylum", "class", "order", "family", "genus", "species"}

// Lineage is one identifier's classification, one name per rank; an
// empty string at a rank means "not classified this deep".
type Lineage struct {
	Ident string
	Names map[string]string // rank -> name
}

// DB maps an identifier (as found in a gather result's signature name,
// taken up to its first space) to its Lineage.
type DB struct {
	byIdent map[string]Lineage
}

// NewDB wraps a slice of Lineages as a DB keyed by Ident.
func NewDB(lineages []Lineage) *DB {
	db := &DB{byIdent: make(map[string]Lineage, len(lineages))}
	for _, l := range lineages {
		db.byIdent[l.Ident] = l
	}
	return db
}

// LoadCSV parses a lineage table: a header row naming "ident" plus each
// rank in Ranks (any subset, any order), one row per identifier.
func LoadCSV(rows [][]string) (*DB, error) {
	if len(rows) == 0 {
		return NewDB(nil), nil
	}
	header := rows[0]
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	identCol, ok := idx["ident"]
	if !ok {
		return nil, &gserrors.FormatError{Detail: "lineage CSV missing ident column", Offset: -1}
	}
	var lineages []Lineage
	for _, row := range rows[1:] {
		l := Lineage{Ident: row[identCol], Names: make(map[string]string)}
		for _, rank := range Ranks {
			if col, ok := idx[rank]; ok && col < len(row) {
				l.Names[rank] = row[col]
			}
		}
		lineages = append(lineages, l)
	}
	return NewDB(lineages), nil
}

// MissPolicy selects how a gather result with no lineage entry is
// handled (spec.md §7 "Missing identifier during taxonomy lookup").
type MissPolicy int

const (
	// SkipWithWarning omits the result from every rank's summary but
	// continues processing the rest (spec.md's skip_idents).
	SkipWithWarning MissPolicy = iota
	// FailFast aborts summarization on the first miss.
	FailFast
	// SilentOmit is SkipWithWarning without surfacing a warning record.
	SilentOmit
)

// MatchOutcome is the fate of one gather result during summarization —
// a filtering outcome, not an error (spec.md §9).
type MatchOutcome int

const (
	Included MatchOutcome = iota
	Excluded
	MissingTaxonomy
)

// RankSummary is the aggregated weighted fraction each taxon name at one
// rank accounts for across a gather run.
type RankSummary struct {
	Rank     string
	Fraction map[string]float64 // taxon name -> summed f_unique_weighted
}

// Warning records one result skipped for lacking lineage information.
type Warning struct {
	Ident string
}

// Summarize aggregates gather results up every rank in Ranks, weighting
// each result's contribution by FUniqueWeighted. Results whose signature
// name has no entry in db are handled per policy.
func Summarize(results []search.GatherResult, db *DB, policy MissPolicy) ([]RankSummary, []Warning, error) {
	summaries := make(map[string]map[string]float64, len(Ranks))
	for _, r := range Ranks {
		summaries[r] = make(map[string]float64)
	}
	var warnings []Warning

	for _, res := range results {
		ident := firstToken(res.Signature.Name())
		lineage, found := db.byIdent[ident]
		outcome := Included
		if !found {
			outcome = MissingTaxonomy
		}
		switch outcome {
		case MissingTaxonomy:
			switch policy {
			case FailFast:
				return nil, nil, &gserrors.NotFound{Detail: "no lineage for identifier " + ident}
			case SkipWithWarning:
				warnings = append(warnings, Warning{Ident: ident})
				continue
			case SilentOmit:
				continue
			}
		}
		for _, rank := range Ranks {
			name := lineage.Names[rank]
			if name == "" {
				continue
			}
			summaries[rank][name] += res.FUniqueWeighted
		}
	}

	out := make([]RankSummary, len(Ranks))
	for i, r := range Ranks {
		out[i] = RankSummary{Rank: r, Fraction: summaries[r]}
	}
	return out, warnings, nil
}

func firstToken(name string) string {
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return name
}

// ToManifestPicklist distills every identifier in db into a manifest
// picklist, letting a selection built from taxonomy drive an ordinary
// Index.Select (spec.md §4.4's manifest/picklist bridge, applied to a
// taxonomy source instead of a prior manifest selection).
func (db *DB) ToManifestPicklist() *manifest.Picklist {
	idents := make([]string, 0, len(db.byIdent))
	for ident := range db.byIdent {
		idents = append(idents, ident)
	}
	return manifest.NewPicklist(manifest.PicklistIdent, idents)
}
