/*
Package hasher implements C1: a deterministic, seeded 64-bit hash of a
k-mer, per spec.md §4.1. It is the only place MurmurHash3 is called from;
every other package works in terms of the uint64 hash values this produces.

Grounded directly on mash.Mash.Sketch in the corpus's teacher repo, which
hashes each k-mer with murmur3.Sum32. spec.md requires the 128-bit variant
with the low 64 bits taken (more collision headroom than the 32-bit
variant the teacher used for its toy sketch), so this package calls
murmur3.Sum128WithSeed instead and keeps the low word.
*/
package hasher

import "github.com/spaolacci/murmur3"

// DefaultSeed is the hash seed used when a Sketch doesn't specify one,
// matching the reference implementation's default (spec.md §3).
const DefaultSeed = 42

// Hash64 returns the low 64 bits of the 128-bit MurmurHash3 x64 digest of
// data, seeded with seed. Callers are responsible for canonicalizing DNA
// k-mers and recoding protein alphabets before calling Hash64; this
// function does no sequence-aware processing at all, by design — it is
// endian-agnostic and collision-resistant for arbitrary short byte
// strings, nothing more.
func Hash64(data []byte, seed uint32) uint64 {
	lo, _ := murmur3.Sum128WithSeed(data, seed)
	return lo
}

// Hash64String is Hash64 for a string k-mer, avoiding a caller-side []byte
// conversion in the hot path of sketch construction.
func Hash64String(kmer string, seed uint32) uint64 {
	return Hash64([]byte(kmer), seed)
}
