/*
Package signature implements C3: a named bundle of one or more Sketches
with a stable, content-addressable wire format, per spec.md §4.3/§6.

Grounded on the teacher's synthesis.go JSON-record pattern (a fixed field
order, encoding/json struct tags, loaded with a thin wrapper over the
stdlib decoder) generalized from a single flat record to the nested
class/signatures[] container spec.md §6 requires, with a content hash
(md5sum) computed independently of json tag order.
*/
package signature

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/kmer"
	"github.com/TimothyStiles/gsearch/sketch"
)

// schemaClass is the constant "class" tag every signature record carries,
// unchanged across versions (spec.md §4.3).
const schemaClass = "sourmash_signature"

// hashFunction identifies the hasher a signature's sketches were built
// with. gsearch has exactly one, so this is a constant rather than a
// registry.
const hashFunction = "0.murmur64"

// Signature bundles metadata with one or more Sketches. It is frozen by
// construction: Sketches() returns frozen views, and the only way to
// mutate the underlying sketches is through Update, which hands out a
// mutable scope and re-freezes on return (spec.md §5 "Scoped
// acquisition").
type Signature struct {
	email    string
	filename string
	name     string
	license  string
	sketches []*sketch.Sketch
}

// New constructs a Signature over one or more sketches, which are frozen
// if they are not already.
func New(name, email, filename, license string, sketches ...*sketch.Sketch) *Signature {
	frozen := make([]*sketch.Sketch, len(sketches))
	for i, sk := range sketches {
		if sk.Frozen() {
			frozen[i] = sk
		} else {
			frozen[i] = sk.Freeze()
		}
	}
	return &Signature{email: email, filename: filename, name: name, license: license, sketches: frozen}
}

func (s *Signature) Name() string     { return s.name }
func (s *Signature) Email() string    { return s.email }
func (s *Signature) Filename() string { return s.filename }
func (s *Signature) License() string  { return s.license }

// Sketches returns the frozen sketches this signature bundles. Callers
// must not assume there is exactly one; a signature with multiple ksizes
// or moltypes carries one sketch per combination.
func (s *Signature) Sketches() []*sketch.Sketch {
	out := make([]*sketch.Sketch, len(s.sketches))
	copy(out, s.sketches)
	return out
}

// Update calls fn with a mutable clone of the sketch at index i, then
// replaces that sketch with the frozen result of fn's edits. This is the
// "update scope" spec.md §5 describes: the mutable view never escapes
// past the call.
func (s *Signature) Update(i int, fn func(*sketch.Sketch) error) error {
	if i < 0 || i >= len(s.sketches) {
		return &gserrors.NotFound{Detail: "no sketch at index " + strconv.Itoa(i)}
	}
	m := s.sketches[i].Mutable()
	if err := fn(m); err != nil {
		return err
	}
	s.sketches[i] = m.Freeze()
	return nil
}

// MD5Sum returns the content fingerprint of the sketch at index i: the
// hex digest of its ascending hash values (as ASCII decimal), followed by
// abundance counts in the same order when present (spec.md §4.3). It
// depends on nothing but the sketch's own content, so it is stable across
// re-serialization and independent of name/filename.
func (s *Signature) MD5Sum(i int) (string, error) {
	if i < 0 || i >= len(s.sketches) {
		return "", &gserrors.NotFound{Detail: "no sketch at index " + strconv.Itoa(i)}
	}
	return md5Sum(s.sketches[i]), nil
}

func md5Sum(sk *sketch.Sketch) string {
	h := md5.New()
	for _, hash := range sk.Hashes() {
		h.Write([]byte(strconv.FormatUint(hash, 10)))
	}
	if sk.TrackAbundance() {
		abunds := sk.Abundances()
		for _, hash := range sk.Hashes() {
			h.Write([]byte(strconv.FormatUint(abunds[hash], 10)))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// sketchRecord is the on-wire shape of one inner sketch entry, field
// order fixed by spec.md §6.
type sketchRecord struct {
	Num            uint64   `json:"num"`
	Ksize          int      `json:"ksize"`
	Seed           uint32   `json:"seed"`
	MaxHash        uint64   `json:"max_hash"`
	MD5Sum         string   `json:"md5sum"`
	Molecule       string   `json:"molecule"`
	Mins           []uint64 `json:"mins"`
	Abundances     []uint64 `json:"abundances,omitempty"`
	TrackAbundance bool     `json:"-"`
}

// record is the on-wire shape of one signature entry, field order fixed
// by spec.md §6.
type record struct {
	Class        string         `json:"class"`
	Email        string         `json:"email"`
	Version      float64        `json:"version"`
	HashFunction string         `json:"hash_function"`
	Filename     string         `json:"filename"`
	Name         string         `json:"name"`
	License      string         `json:"license"`
	Signatures   []sketchRecord `json:"signatures"`
}

// formatVersion is the schema version this package emits, and the newest
// version it accepts on load.
const formatVersion = 0.4

func (s *Signature) toRecord() record {
	r := record{
		Class:        schemaClass,
		Email:        s.email,
		Version:      formatVersion,
		HashFunction: hashFunction,
		Filename:     s.filename,
		Name:         s.name,
		License:      s.license,
	}
	for _, sk := range s.sketches {
		sr := sketchRecord{
			Num:      sk.Num(),
			Ksize:    sk.Ksize(),
			Seed:     sk.Seed(),
			MaxHash:  sk.MaxHash(),
			MD5Sum:   md5Sum(sk),
			Molecule: string(sk.MolType()),
			Mins:     sk.Hashes(),
		}
		if sk.TrackAbundance() {
			abunds := sk.Abundances()
			sr.Abundances = make([]uint64, len(sr.Mins))
			for i, h := range sr.Mins {
				sr.Abundances[i] = abunds[h]
			}
		}
		r.Signatures = append(r.Signatures, sr)
	}
	return r
}

// Marshal encodes a list of Signatures as the top-level JSON array
// spec.md §6 specifies: "Top-level: list of Signature objects."
func Marshal(sigs []*Signature) ([]byte, error) {
	records := make([]record, len(sigs))
	for i, s := range sigs {
		records[i] = s.toRecord()
	}
	return json.Marshal(records)
}

// Unmarshal is the inverse of Marshal: it validates class and version on
// every entry, reconstructs each Sketch with its declared parameters, and
// verifies the stored md5sum against the recomputed one unless
// ignoreMD5Sum is set (spec.md §4.3 "Load contract").
func Unmarshal(data []byte, ignoreMD5Sum bool) ([]*Signature, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &gserrors.FormatError{Detail: err.Error(), Offset: -1}
	}
	out := make([]*Signature, 0, len(records))
	for _, r := range records {
		if r.Class != schemaClass {
			return nil, &gserrors.FormatError{Detail: fmt.Sprintf("unexpected class %q", r.Class), Offset: -1}
		}
		if r.Version > formatVersion {
			return nil, &gserrors.IndexNotSupported{Found: strconv.FormatFloat(r.Version, 'f', -1, 64), Supported: strconv.FormatFloat(formatVersion, 'f', -1, 64)}
		}
		sigSketches := make([]*sketch.Sketch, 0, len(r.Signatures))
		for _, sr := range r.Signatures {
			molType := kmer.MolType(sr.Molecule)
			var sk *sketch.Sketch
			if sr.MaxHash > 0 && sr.Num > 0 {
				return nil, &gserrors.FormatError{Detail: "sketch record sets both num and max_hash", Offset: -1}
			}
			if sr.MaxHash > 0 {
				sk = sketch.NewScaled(sr.Ksize, molType, sr.Seed, sr.MaxHash, len(sr.Abundances) > 0)
			} else {
				sk = sketch.New(sr.Ksize, molType, sr.Seed, sr.Num, len(sr.Abundances) > 0)
			}
			for i, h := range sr.Mins {
				count := uint64(1)
				if len(sr.Abundances) > 0 {
					count = sr.Abundances[i]
				}
				if err := sk.AddHashWithAbundance(h, count); err != nil {
					return nil, err
				}
			}
			if !ignoreMD5Sum {
				if got := md5Sum(sk); got != sr.MD5Sum {
					return nil, &gserrors.FormatError{Detail: fmt.Sprintf("md5sum mismatch: stored %s, computed %s", sr.MD5Sum, got), Offset: -1}
				}
			}
			sigSketches = append(sigSketches, sk.Freeze())
		}
		out = append(out, &Signature{
			email:    r.Email,
			filename: r.Filename,
			name:     r.Name,
			license:  r.License,
			sketches: sigSketches,
		})
	}
	return out, nil
}
