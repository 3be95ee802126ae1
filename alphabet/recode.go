package alphabet

// Dayhoff and HP are reduced-alphabet views of the 20 standard amino acids.
// Dayhoff groups residues by observed substitution frequency (Dayhoff et al.
// 1978); HP collapses further to a hydrophobic/polar binary, the coarsest
// useful reduction for k-mer hashing of distantly related proteins.
var (
	Dayhoff = NewAlphabet([]string{"a", "c", "d", "e", "f", "g"})
	HP      = NewAlphabet([]string{"h", "p"})
)

// dayhoffTable maps each standard amino acid (and the stop codon) to its
// Dayhoff group letter.
var dayhoffTable = map[byte]byte{
	'A': 'a', 'G': 'a', 'P': 'a', 'S': 'a', 'T': 'a',
	'D': 'c', 'E': 'c', 'N': 'c', 'Q': 'c',
	'H': 'd', 'K': 'd', 'R': 'd',
	'I': 'e', 'L': 'e', 'M': 'e', 'V': 'e',
	'F': 'f', 'W': 'f', 'Y': 'f',
	'C': 'g',
	'*': '*', 'X': 'X',
}

// hpTable maps each standard amino acid to hydrophobic ('h') or polar ('p').
var hpTable = map[byte]byte{
	'A': 'h', 'C': 'h', 'F': 'h', 'I': 'h', 'L': 'h', 'M': 'h', 'V': 'h', 'W': 'h', 'Y': 'h',
	'D': 'p', 'E': 'p', 'G': 'p', 'H': 'p', 'K': 'p', 'N': 'p', 'P': 'p', 'Q': 'p', 'R': 'p', 'S': 'p', 'T': 'p',
	'*': '*', 'X': 'X',
}

// RecodeDayhoff recodes a protein sequence (including the stop codon '*' and
// the translation sentinel 'X') through the 20->6 Dayhoff substitution table.
// Unknown residues pass through unchanged.
func RecodeDayhoff(protein string) string {
	return recode(protein, dayhoffTable)
}

// RecodeHP recodes a protein sequence through the 20->2 hydrophobic/polar
// table. Unknown residues pass through unchanged.
func RecodeHP(protein string) string {
	return recode(protein, hpTable)
}

func recode(protein string, table map[byte]byte) string {
	out := make([]byte, len(protein))
	for i := 0; i < len(protein); i++ {
		c := protein[i]
		if r, ok := table[c]; ok {
			out[i] = r
			continue
		}
		out[i] = c
	}
	return string(out)
}
