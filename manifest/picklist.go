package manifest

import "strings"

// PicklistKind selects which Row column a Picklist matches against,
// per the GLOSSARY's "declarative set-membership filter over a manifest
// column".
type PicklistKind int

const (
	PicklistMD5 PicklistKind = iota
	PicklistMD5Prefix8
	PicklistName
	PicklistIdent
	PicklistIdentPrefix
)

// Picklist is a set-membership filter usable both as a Manifest.Select
// criterion and, independently, against signatures loaded from a backend
// that shares no manifest storage with the one the picklist was derived
// from (spec.md §4.4 "to_picklist").
type Picklist struct {
	Kind   PicklistKind
	Values map[string]bool
}

// NewPicklist builds a Picklist of the given kind from a literal set of
// values.
func NewPicklist(kind PicklistKind, values []string) *Picklist {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return &Picklist{Kind: kind, Values: set}
}

// Matches reports whether r passes the picklist, per its Kind. Identifier
// picklists extract an identifier from Name by taking everything before
// the first space, mirroring the convention FASTA/manifest names follow
// ("accession description...").
func (p *Picklist) Matches(r Row) bool {
	switch p.Kind {
	case PicklistMD5:
		return p.Values[r.MD5]
	case PicklistMD5Prefix8:
		if len(r.MD5) < 8 {
			return p.Values[r.MD5]
		}
		return p.Values[r.MD5[:8]]
	case PicklistName:
		return p.Values[r.Name]
	case PicklistIdent:
		return p.Values[ident(r.Name)]
	case PicklistIdentPrefix:
		id := ident(r.Name)
		for prefix := range p.Values {
			if strings.HasPrefix(id, prefix) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func ident(name string) string {
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return name
}
