package kmer

import "github.com/TimothyStiles/gsearch/transform"

// standardCodonTable is the NCBI standard genetic code, codon -> single
// letter amino acid, '*' for the three stop codons. It is intentionally
// the bare minimum spec.md needs (translation for six-frame hashing), not
// the full weighted codon-usage Table the teacher's transform/codon
// package carries for synthesis optimization — that concern has no home
// in this spec (see DESIGN.md).
var standardCodonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// TranslateCodon translates a single 3-nucleotide codon. A codon containing
// N translates to the sentinel residue 'X' (spec.md §3: "individual codons
// containing N translate to X"), regardless of force. Any other non-ACGT
// byte, or a codon not of length 3, is InvalidInput.
func TranslateCodon(codon string) (byte, error) {
	if len(codon) != 3 {
		return 0, &InvalidInputError{Sequence: codon, Position: 0, Byte: 0}
	}
	for i := 0; i < 3; i++ {
		if codon[i] == 'N' {
			return 'X', nil
		}
		if !validDNA(codon[i]) {
			return 0, &InvalidInputError{Sequence: codon, Position: i, Byte: codon[i]}
		}
	}
	aa, ok := standardCodonTable[codon]
	if !ok {
		return 0, &InvalidInputError{Sequence: codon, Position: 0, Byte: codon[0]}
	}
	return aa, nil
}

// TranslateFrame translates seq starting at the given 0-based offset,
// stopping at the last complete codon. Incomplete trailing bases are
// dropped, matching how a sliding amino-acid k-mer window would ignore
// them anyway.
func TranslateFrame(seq string, offset int) (string, error) {
	out := make([]byte, 0, (len(seq)-offset)/3)
	for i := offset; i+3 <= len(seq); i += 3 {
		aa, err := TranslateCodon(seq[i : i+3])
		if err != nil {
			return "", err
		}
		out = append(out, aa)
	}
	return string(out), nil
}

// SixFrames returns the six reading-frame translations of a DNA sequence:
// the three forward frames (offsets 0,1,2) followed by the three reverse
// frames (offsets 0,1,2 of the reverse complement). This is the amino-acid
// feed for protein/Dayhoff/HP sketches built over a DNA input, per spec.md
// §3 ("Six-frame translation").
func SixFrames(dnaSeq string) ([6]string, error) {
	var frames [6]string
	rc := transform.ReverseComplement(dnaSeq)
	for offset := 0; offset < 3; offset++ {
		f, err := TranslateFrame(dnaSeq, offset)
		if err != nil {
			return frames, err
		}
		frames[offset] = f
	}
	for offset := 0; offset < 3; offset++ {
		f, err := TranslateFrame(rc, offset)
		if err != nil {
			return frames, err
		}
		frames[offset+3] = f
	}
	return frames, nil
}
