/*
Package kmer canonicalizes and translates the k-mers that feed the sketch
hasher (C1/C2). It owns exactly the string-level decisions spec.md §3
describes: which of a DNA k-mer and its reverse complement is "canonical",
which bytes are legal per molecule type, and how a DNA sequence is
translated into the six reading frames needed for protein/Dayhoff/HP
sketches.

The sliding-window/canonicalization loop itself has no good third-party
fit (it's the same tight ASCII scan as mash.Mash.Sketch, just adding
canonicalization mash.Sketch doesn't do), but byte-alphabet membership
checking is delegated to alphabet.Alphabet.Encode/Check (the teacher's
alphabet.DNA), rather than re-declaring the base set here.
*/
package kmer

import (
	"fmt"

	"github.com/TimothyStiles/gsearch/alphabet"
	"github.com/TimothyStiles/gsearch/transform"
)

// MolType is one of the four molecule types spec.md §3 defines.
type MolType string

const (
	DNA     MolType = "DNA"
	Protein MolType = "protein"
	Dayhoff MolType = "dayhoff"
	HP      MolType = "hp"
)

// InvalidInputError reports an out-of-alphabet byte encountered while
// scanning a sequence. It is recoverable: the caller may retry with
// force=true to skip the offending k-mer instead of aborting.
type InvalidInputError struct {
	Sequence string
	Position int
	Byte     byte
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: byte %q at position %d is not in the alphabet", e.Byte, e.Position)
}

// validDNA reports whether b is one of the four unambiguous DNA bases.
// Only these four are legal in a DNA k-mer that will be hashed; anything
// else (including IUPAC ambiguity codes) is InvalidInput per spec.md §3.
// Delegates to alphabet.DNA (the teacher's Alphabet.Encode), rather than
// re-declaring the {A,C,G,T} set a second time.
func validDNA(b byte) bool {
	_, err := alphabet.DNA.Encode(string(b))
	return err == nil
}

// ValidateDNAWindow returns the index of the first invalid byte in window,
// or -1 if window is entirely {A,C,G,T}, via alphabet.DNA.Check.
func ValidateDNAWindow(window string) int {
	return alphabet.DNA.Check(window)
}

// Canonical returns the lexicographically smaller of kmer and its reverse
// complement, per spec.md §3 ("K-mer canonicalization"). kmer must already
// be validated (all of A/C/G/T); Canonical does not re-check it.
func Canonical(kmer string) string {
	rc := transform.ReverseComplement(kmer)
	if rc < kmer {
		return rc
	}
	return kmer
}

// DNAKmers streams every k-mer window of seq, canonicalized, invoking yield
// for each. If a window contains a byte outside {A,C,G,T}: when force is
// false, DNAKmers stops and returns an *InvalidInputError; when force is
// true, the offending window is silently skipped and scanning continues
// from the next position.
func DNAKmers(seq string, k int, force bool, yield func(canonicalKmer string) error) error {
	if k <= 0 || k > len(seq) {
		return nil
	}
	for i := 0; i+k <= len(seq); i++ {
		window := seq[i : i+k]
		if bad := ValidateDNAWindow(window); bad >= 0 {
			if !force {
				return &InvalidInputError{Sequence: seq, Position: i + bad, Byte: window[bad]}
			}
			continue
		}
		if err := yield(Canonical(window)); err != nil {
			return err
		}
	}
	return nil
}
