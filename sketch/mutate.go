package sketch

import (
	"sort"

	"github.com/TimothyStiles/gsearch/alphabet"
	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/kmer"
	"github.com/TimothyStiles/gsearch/transform"
	"golang.org/x/exp/slices"
)

// extendedProtein is alphabet.Protein's 20 standard amino acids extended
// with Sec/Pyl/Asx/Glx/Xaa, the stop codon, and the translation sentinel X
// (spec.md §3 uses the same extended set seqhash.go in the teacher repo
// validates protein sequences against), built with the teacher's
// Alphabet.Extend rather than a second hand-rolled membership table.
var extendedProtein = alphabet.Protein.Extend([]string{"U", "O", "*", "B", "X", "Z"})

func recodeWindow(window string, molType kmer.MolType) string {
	switch molType {
	case kmer.Dayhoff:
		return alphabet.RecodeDayhoff(window)
	case kmer.HP:
		return alphabet.RecodeHP(window)
	default:
		return window
	}
}

// AddSequence streams k-mers from seq into the sketch. For a DNA sketch,
// seq is read as DNA directly and k-mers are canonicalized. For a
// protein/Dayhoff/HP sketch, seq is read as DNA and all six reading
// frames are translated before residue k-mers are extracted (spec.md §3,
// §4.2): this is the common "hash a genome's encoded proteins" workflow.
// Invalid k-mers fail unless force, in which case they are silently
// skipped.
func (s *Sketch) AddSequence(seq string, force bool) error {
	if s.frozen {
		return &gserrors.CapacityViolation{Detail: "cannot mutate a frozen sketch"}
	}
	if s.molType == kmer.DNA {
		return kmer.DNAKmers(seq, s.ksize, force, func(km string) error {
			return s.AddHash(s.hashFor(km))
		})
	}

	frames, err := kmer.SixFrames(seq)
	if err != nil {
		if !force {
			return err
		}
		// Fall back to frame-by-frame translation so a single bad codon
		// doesn't sink all six frames when force is set.
		frames = s.sixFramesForced(seq)
	}
	for _, frame := range frames {
		if err := s.addProteinWindows(frame, force); err != nil {
			return err
		}
	}
	return nil
}

// sixFramesForced translates each of the six frames independently,
// substituting an empty frame for one that fails to translate, so that
// force=true on AddSequence degrades per-frame rather than all-or-nothing.
func (s *Sketch) sixFramesForced(seq string) [6]string {
	var frames [6]string
	reverse := transform.ReverseComplement(seq)
	for off := 0; off < 3; off++ {
		if f, err := kmer.TranslateFrame(seq, off); err == nil {
			frames[off] = f
		}
		if f, err := kmer.TranslateFrame(reverse, off); err == nil {
			frames[off+3] = f
		}
	}
	return frames
}

// AddProteinSequence streams residue k-mers directly from an already
// translated protein sequence, with no six-frame translation step. Use
// this when the caller already has protein (rather than raw DNA) input.
func (s *Sketch) AddProteinSequence(seq string, force bool) error {
	if s.frozen {
		return &gserrors.CapacityViolation{Detail: "cannot mutate a frozen sketch"}
	}
	if s.molType == kmer.DNA {
		return &gserrors.ModeIncompatible{Operation: "AddProteinSequence", Detail: "sketch moltype is DNA"}
	}
	return s.addProteinWindows(seq, force)
}

func (s *Sketch) addProteinWindows(protein string, force bool) error {
	k := s.ksize
	if k <= 0 || k > len(protein) {
		return nil
	}
	for i := 0; i+k <= len(protein); i++ {
		window := protein[i : i+k]
		if badPos := extendedProtein.Check(window); badPos >= 0 {
			if force {
				continue
			}
			return &kmer.InvalidInputError{Sequence: protein, Position: i + badPos, Byte: window[badPos]}
		}
		recoded := recodeWindow(window, s.molType)
		if err := s.AddHash(s.hashFor(recoded)); err != nil {
			return err
		}
	}
	return nil
}

// AddMany bulk-inserts hashes from a slice.
func (s *Sketch) AddMany(hashes []uint64) error {
	for _, h := range hashes {
		if err := s.AddHash(h); err != nil {
			return err
		}
	}
	return nil
}

// AddSketch bulk-inserts every hash (and abundance) from other, which
// must share parameters with s.
func (s *Sketch) AddSketch(other *Sketch) error {
	if err := s.SameParameters(other); err != nil {
		return err
	}
	for _, h := range other.mins {
		count := uint64(1)
		if other.trackAbundance {
			count = other.abunds[h]
		}
		if err := s.AddHashWithAbundance(h, count); err != nil {
			return err
		}
	}
	return nil
}

// SetAbundances merges (or, with clear=true, replaces) the abundance of
// every hash named in counts. Only valid when the sketch tracks
// abundance. A final count <= 0 removes the hash; a negative count
// supplied directly is a hard error (spec.md §4.2).
func (s *Sketch) SetAbundances(counts map[uint64]int64, clear bool) error {
	if s.frozen {
		return &gserrors.CapacityViolation{Detail: "cannot mutate a frozen sketch"}
	}
	if !s.trackAbundance {
		return &gserrors.CapacityViolation{Detail: "SetAbundances requires track_abundance"}
	}
	s.ensureAbunds()
	for h, delta := range counts {
		if delta < 0 && clear {
			return &gserrors.CapacityViolation{Detail: "negative abundance is not allowed"}
		}
		var final int64
		if clear {
			final = delta
		} else {
			final = int64(s.abunds[h]) + delta
		}
		if final < 0 {
			return &gserrors.CapacityViolation{Detail: "negative abundance is not allowed"}
		}
		if final <= 0 {
			s.removeHash(h)
			continue
		}
		if _, found := slices.BinarySearch(s.mins, h); !found {
			if err := s.AddHash(h); err != nil {
				return err
			}
		}
		s.abunds[h] = uint64(final)
	}
	return nil
}

// RemoveMany drops every listed hash (and its abundance, if tracked).
func (s *Sketch) RemoveMany(hashes []uint64) error {
	if s.frozen {
		return &gserrors.CapacityViolation{Detail: "cannot mutate a frozen sketch"}
	}
	for _, h := range hashes {
		s.removeHash(h)
	}
	return nil
}

func (s *Sketch) removeHash(h uint64) {
	idx := sort.Search(len(s.mins), func(i int) bool { return s.mins[i] >= h })
	if idx < len(s.mins) && s.mins[idx] == h {
		s.mins = append(s.mins[:idx], s.mins[idx+1:]...)
	}
	if s.abunds != nil {
		delete(s.abunds, h)
	}
}
