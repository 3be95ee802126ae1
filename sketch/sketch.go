/*
Package sketch implements C2: the MinHash bottom-sketch and its scaled
variant, and the algebra spec.md §4.2 specifies over them (merge,
intersection, containment, Jaccard, abundance-weighted similarity, ANI).

Grounded on mash.Mash/mash.Sketch/mash.Distance in the corpus's teacher
repo: same "keep the smallest hashes seen" core idea, generalized from
the teacher's fixed-size linear-scan replacement (an O(N) scan per insert
with a single uint32 hash and no abundance, mode, or set algebra) to the
num/scaled dual-mode, optionally abundance-weighted sketch spec.md
requires, using golang.org/x/exp/slices to keep the ascending hash slice
sorted in roughly O(log N) per insert instead of a linear "find biggest"
scan.

Frozen/mutable distinction (spec.md §9 "Dynamic interop... becomes a
type-level distinction (two types, or one type with a boolean invariant
enforced by API)"): this package picks the single-type-plus-invariant
form. A Sketch constructed with New is mutable; Freeze returns an
immutable copy sharing no backing storage with the mutable one, and every
operation that derives a new sketch (Merge, Intersection, Downsample,
Flatten, Inflate) always returns a frozen one, per spec.md §4.2.
*/
package sketch

import (
	"math/big"

	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/hasher"
	"github.com/TimothyStiles/gsearch/kmer"
	"golang.org/x/exp/slices"
)

// Mode selects which of the two sketch families a Sketch implements.
// Exactly one is ever in force for a given Sketch (spec.md §3).
type Mode int

const (
	ModeNum Mode = iota
	ModeScaled
)

func (m Mode) String() string {
	if m == ModeScaled {
		return "scaled"
	}
	return "num"
}

// Sketch is a MinHash bottom-sketch (Mode == ModeNum) or scaled sketch
// (Mode == ModeScaled) over k-mers of a single molecule type.
type Sketch struct {
	ksize          int
	molType        kmer.MolType
	seed           uint32
	mode           Mode
	num            uint64 // capacity, ModeNum only
	maxHash        uint64 // inclusive bound, ModeScaled only
	trackAbundance bool
	frozen         bool

	mins   []uint64 // ascending, deduplicated
	abunds map[uint64]uint64
}

// maxUint64Plus1 represents 2**64 exactly; uint64 itself cannot hold it.
var maxUint64Plus1 = new(big.Int).Lsh(big.NewInt(1), 64)

// MaxHashForScaled computes floor(2**64 / scaled), the inclusive upper
// bound a scaled sketch with the given compression factor keeps, per
// spec.md §3 ("scaled = round(2**64 / max_hash)" inverted).
func MaxHashForScaled(scaled uint64) uint64 {
	if scaled == 0 {
		return 0
	}
	q := new(big.Int).Div(maxUint64Plus1, new(big.Int).SetUint64(scaled))
	return q.Uint64()
}

// ScaledForMaxHash computes round(2**64 / maxHash), the informational
// "scaled" value spec.md §3 derives from a sketch's max_hash.
func ScaledForMaxHash(maxHash uint64) uint64 {
	if maxHash == 0 {
		return 0
	}
	num := new(big.Int).Mul(maxUint64Plus1, big.NewInt(2))
	den := new(big.Int).SetUint64(maxHash)
	q := new(big.Int).Div(num, den)
	// round half up: (2*2^64 + maxHash) / (2*maxHash)
	q.Add(q, big.NewInt(1))
	q.Div(q, big.NewInt(2))
	return q.Uint64()
}

// New constructs an empty, mutable num-mode sketch.
func New(ksize int, molType kmer.MolType, seed uint32, num uint64, trackAbundance bool) *Sketch {
	return &Sketch{
		ksize:          ksize,
		molType:        molType,
		seed:           seed,
		mode:           ModeNum,
		num:            num,
		trackAbundance: trackAbundance,
	}
}

// NewScaled constructs an empty, mutable scaled-mode sketch with the
// given inclusive max_hash bound.
func NewScaled(ksize int, molType kmer.MolType, seed uint32, maxHash uint64, trackAbundance bool) *Sketch {
	return &Sketch{
		ksize:          ksize,
		molType:        molType,
		seed:           seed,
		mode:           ModeScaled,
		maxHash:        maxHash,
		trackAbundance: trackAbundance,
	}
}

// NewScaledFromFactor is NewScaled, given a scaled compression factor
// (e.g. 1000) instead of the derived max_hash bound.
func NewScaledFromFactor(ksize int, molType kmer.MolType, seed uint32, scaled uint64, trackAbundance bool) *Sketch {
	return NewScaled(ksize, molType, seed, MaxHashForScaled(scaled), trackAbundance)
}

func (s *Sketch) Ksize() int              { return s.ksize }
func (s *Sketch) MolType() kmer.MolType   { return s.molType }
func (s *Sketch) Seed() uint32            { return s.seed }
func (s *Sketch) Mode() Mode              { return s.mode }
func (s *Sketch) Num() uint64             { return s.num }
func (s *Sketch) MaxHash() uint64         { return s.maxHash }
func (s *Sketch) Scaled() uint64          { return ScaledForMaxHash(s.maxHash) }
func (s *Sketch) TrackAbundance() bool    { return s.trackAbundance }
func (s *Sketch) Frozen() bool            { return s.frozen }
func (s *Sketch) Len() int                { return len(s.mins) }

// Hashes returns a copy of the sketch's ascending hash slice. Callers may
// not mutate the sketch through it.
func (s *Sketch) Hashes() []uint64 {
	out := make([]uint64, len(s.mins))
	copy(out, s.mins)
	return out
}

// Abundances returns a copy of the per-hash abundance map, or nil if the
// sketch does not track abundance.
func (s *Sketch) Abundances() map[uint64]uint64 {
	if !s.trackAbundance {
		return nil
	}
	out := make(map[uint64]uint64, len(s.abunds))
	for h, c := range s.abunds {
		out[h] = c
	}
	return out
}

// Freeze returns an immutable copy of s. The original is unaffected and
// remains mutable.
func (s *Sketch) Freeze() *Sketch {
	c := s.clone()
	c.frozen = true
	return c
}

// Mutable returns a mutable copy of s, regardless of whether s itself is
// frozen. This is the "update scope" acquisition spec.md §5 describes:
// callers are expected to Freeze() the result before sharing it again.
func (s *Sketch) Mutable() *Sketch {
	c := s.clone()
	c.frozen = false
	return c
}

func (s *Sketch) clone() *Sketch {
	c := &Sketch{
		ksize:          s.ksize,
		molType:        s.molType,
		seed:           s.seed,
		mode:           s.mode,
		num:            s.num,
		maxHash:        s.maxHash,
		trackAbundance: s.trackAbundance,
		mins:           append([]uint64(nil), s.mins...),
	}
	if s.abunds != nil {
		c.abunds = make(map[uint64]uint64, len(s.abunds))
		for h, n := range s.abunds {
			c.abunds[h] = n
		}
	}
	return c
}

// SameParameters reports whether s and other share ksize, moltype, and
// seed — the baseline compatibility every cross-sketch operation in
// spec.md §4.2 requires before even considering mode.
func (s *Sketch) SameParameters(other *Sketch) error {
	if s.ksize != other.ksize {
		return &gserrors.ParameterMismatch{Parameter: "ksize", A: itoa(s.ksize), B: itoa(other.ksize)}
	}
	if s.molType != other.molType {
		return &gserrors.ParameterMismatch{Parameter: "moltype", A: string(s.molType), B: string(other.molType)}
	}
	if s.seed != other.seed {
		return &gserrors.ParameterMismatch{Parameter: "seed", A: itoa(int(s.seed)), B: itoa(int(other.seed))}
	}
	return nil
}

// SameMode reports whether s and other share the same mode and the
// mode-specific parameter (num or max_hash).
func (s *Sketch) SameMode(other *Sketch) error {
	if s.mode != other.mode {
		return &gserrors.ModeIncompatible{Operation: "SameMode", Detail: s.mode.String() + " != " + other.mode.String()}
	}
	if s.mode == ModeNum && s.num != other.num {
		return &gserrors.ParameterMismatch{Parameter: "num", A: itoa(int(s.num)), B: itoa(int(other.num))}
	}
	if s.mode == ModeScaled && s.maxHash != other.maxHash {
		return &gserrors.ParameterMismatch{Parameter: "max_hash", A: itoa(int(s.maxHash)), B: itoa(int(other.maxHash))}
	}
	return nil
}

// AddHash unconditionally inserts a single hash, subject to the sketch's
// bounded-size (num) or bounded-hash (scaled) policy (spec.md §4.2).
func (s *Sketch) AddHash(h uint64) error {
	return s.AddHashWithAbundance(h, 1)
}

// AddHashWithAbundance inserts h, adding count to its abundance if the
// sketch tracks abundance and h is retained.
func (s *Sketch) AddHashWithAbundance(h uint64, count uint64) error {
	if s.frozen {
		return &gserrors.CapacityViolation{Detail: "cannot mutate a frozen sketch"}
	}
	if s.mode == ModeScaled && h > s.maxHash {
		return nil
	}
	idx, found := slices.BinarySearch(s.mins, h)
	if found {
		if s.trackAbundance {
			s.ensureAbunds()
			s.abunds[h] += count
		}
		return nil
	}
	if s.mode == ModeNum && uint64(len(s.mins)) >= s.num {
		if s.num == 0 || h >= s.mins[len(s.mins)-1] {
			return nil
		}
		evicted := s.mins[len(s.mins)-1]
		s.mins = s.mins[:len(s.mins)-1]
		if s.trackAbundance {
			delete(s.abunds, evicted)
		}
		idx, _ = slices.BinarySearch(s.mins, h)
	}
	s.mins = slices.Insert(s.mins, idx, h)
	if s.trackAbundance {
		s.ensureAbunds()
		s.abunds[h] = count
	}
	return nil
}

func (s *Sketch) ensureAbunds() {
	if s.abunds == nil {
		s.abunds = make(map[uint64]uint64)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// hashFor hashes a canonical k-mer (or already-recoded protein/Dayhoff/HP
// window) under the sketch's seed.
func (s *Sketch) hashFor(kmerOrWindow string) uint64 {
	return hasher.Hash64String(kmerOrWindow, s.seed)
}
