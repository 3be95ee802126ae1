package sketch

import (
	"github.com/TimothyStiles/gsearch/kmer"
)

// HashIter is a cursor over the hashes a sequence would contribute to a
// sketch with the given parameters, without building the sketch itself.
// It follows the HasNext()/Next() cursor idiom fasta2.Parser uses, so
// callers can pull one hash at a time (spec.md §4.1's "k-mers as a stream,
// not a materialized list").
type HashIter struct {
	s         *Sketch
	force     bool
	badAsZero bool

	frames []string
	hashes []uint64
	pos    int
	err    error
}

// SeqToHashes returns a HashIter over every hash seq would contribute to a
// sketch with s's parameters. For DNA sketches this is one hash per
// canonical k-mer window; for protein/Dayhoff/HP sketches, seq is
// translated in all six frames first and the iterator walks each frame's
// residue windows in turn (forward frames 0-2, then reverse-complement
// frames 0-2), matching AddSequence's own traversal order.
//
// badAsZero substitutes the hash of the empty string for an invalid k-mer
// instead of skipping or erroring, matching the reference implementation's
// bad_kmers_as_zeroes behavior for positional hash streams where a dropped
// position would shift every downstream index.
func (s *Sketch) SeqToHashes(seq string, force, badAsZero bool) *HashIter {
	it := &HashIter{s: s, force: force, badAsZero: badAsZero}
	it.prepare(seq)
	return it
}

func (it *HashIter) prepare(seq string) {
	s := it.s
	if s.molType == kmer.DNA {
		if it.badAsZero {
			for i := 0; s.ksize > 0 && i+s.ksize <= len(seq); i++ {
				window := seq[i : i+s.ksize]
				if kmer.ValidateDNAWindow(window) >= 0 {
					it.hashes = append(it.hashes, s.hashFor(""))
					continue
				}
				it.hashes = append(it.hashes, s.hashFor(kmer.Canonical(window)))
			}
			return
		}
		err := kmer.DNAKmers(seq, s.ksize, it.force, func(km string) error {
			it.hashes = append(it.hashes, s.hashFor(km))
			return nil
		})
		if err != nil && !it.badAsZero {
			it.err = err
		}
		return
	}
	frames, err := kmer.SixFrames(seq)
	if err != nil {
		if !it.force && !it.badAsZero {
			it.err = err
			return
		}
		frames = s.sixFramesForced(seq)
	}
	it.frames = frames[:]
	for _, frame := range it.frames {
		it.appendProteinHashes(frame)
		if it.err != nil {
			return
		}
	}
}

func (it *HashIter) appendProteinHashes(frame string) {
	s := it.s
	k := s.ksize
	if k <= 0 || k > len(frame) {
		return
	}
	for i := 0; i+k <= len(frame); i++ {
		window := frame[i : i+k]
		bad := extendedProtein.Check(window)
		if bad >= 0 {
			if it.badAsZero {
				it.hashes = append(it.hashes, s.hashFor(""))
				continue
			}
			if it.force {
				continue
			}
			it.err = &kmer.InvalidInputError{Sequence: frame, Position: i + bad, Byte: window[bad]}
			return
		}
		recoded := recodeWindow(window, s.molType)
		it.hashes = append(it.hashes, s.hashFor(recoded))
	}
}

// HasNext reports whether Next has another hash to return.
func (it *HashIter) HasNext() bool {
	return it.pos < len(it.hashes)
}

// Next returns the next hash in the stream, or the error (if any)
// encountered while preparing the stream once exhausted.
func (it *HashIter) Next() (uint64, error) {
	if it.pos >= len(it.hashes) {
		return 0, it.err
	}
	h := it.hashes[it.pos]
	it.pos++
	return h, nil
}

// Err returns the error, if any, encountered while scanning seq. It is
// always safe to call, including before exhausting the iterator.
func (it *HashIter) Err() error {
	return it.err
}

// KmerHashPair is one window of a sequence paired with the hash it
// produced, for callers that need to trace a hash back to its source
// k-mer (e.g. diagnostics, or building a custom index directly from reads
// without round-tripping through a Sketch).
type KmerHashPair struct {
	Kmer string
	Hash uint64
}

// KmersAndHashesIter pairs each yielded hash with the k-mer or translated
// window it was computed from.
type KmersAndHashesIter struct {
	s      *Sketch
	force  bool
	pairs  []KmerHashPair
	pos    int
	err    error
}

// KmersAndHashes is SeqToHashes, additionally retaining the k-mer or
// protein window each hash was computed from.
func (s *Sketch) KmersAndHashes(seq string, force bool) *KmersAndHashesIter {
	it := &KmersAndHashesIter{s: s, force: force}
	it.prepare(seq)
	return it
}

func (it *KmersAndHashesIter) prepare(seq string) {
	s := it.s
	if s.molType == kmer.DNA {
		err := kmer.DNAKmers(seq, s.ksize, it.force, func(km string) error {
			it.pairs = append(it.pairs, KmerHashPair{Kmer: km, Hash: s.hashFor(km)})
			return nil
		})
		if err != nil {
			it.err = err
		}
		return
	}
	frames, err := kmer.SixFrames(seq)
	if err != nil {
		if !it.force {
			it.err = err
			return
		}
		frames = s.sixFramesForced(seq)
	}
	for _, frame := range frames {
		k := s.ksize
		if k <= 0 || k > len(frame) {
			continue
		}
		for i := 0; i+k <= len(frame); i++ {
			window := frame[i : i+k]
			bad := extendedProtein.Check(window)
			if bad >= 0 {
				if it.force {
					continue
				}
				it.err = &kmer.InvalidInputError{Sequence: frame, Position: i + bad, Byte: window[bad]}
				return
			}
			recoded := recodeWindow(window, s.molType)
			it.pairs = append(it.pairs, KmerHashPair{Kmer: recoded, Hash: s.hashFor(recoded)})
		}
	}
}

// HasNext reports whether Next has another pair to return.
func (it *KmersAndHashesIter) HasNext() bool {
	return it.pos < len(it.pairs)
}

// Next returns the next k-mer/hash pair in the stream.
func (it *KmersAndHashesIter) Next() (KmerHashPair, error) {
	if it.pos >= len(it.pairs) {
		return KmerHashPair{}, it.err
	}
	p := it.pairs[it.pos]
	it.pos++
	return p, nil
}

// Err returns the error, if any, encountered while scanning seq.
func (it *KmersAndHashesIter) Err() error {
	return it.err
}
