package sketch

import (
	"math"

	"github.com/TimothyStiles/gsearch/gserrors"
)

// ANIEstimate is the result of one of the four *_ani estimators. ANILow and
// ANIHigh form a confidence interval around ANI; both are 0 when the
// estimate itself is (Jaccard/containment of zero leaves no slots to build
// a confidence interval from). SizeIsInaccurate flags an estimate built
// from too few shared hashes to trust (spec.md §4.2, §9): the reference
// implementation's own threshold is an expected count of unique k-mers
// under 5, which this package applies directly to the scaled sketch's
// expected shared-slot count.
type ANIEstimate struct {
	ANI              float64
	ANILow           float64
	ANIHigh          float64
	PNothingInCommon float64
	SizeIsInaccurate bool

	// JaccardError and JeExceedsThreshold are only populated by JaccardANI
	// (spec.md §4.2: "Jaccard ANI additionally reports jaccard_error and
	// flags je_exceeds_threshold"); the other three estimators leave both
	// zero. JaccardError is the standard error of the Jaccard point
	// estimate itself, ahead of the k-th-root transform into ANI — a
	// Jaccard-based estimate carries a wider, less reliable error profile
	// than a containment-based one built from the same shared-slot count,
	// which is exactly what this field exists to surface.
	JaccardError       float64
	JeExceedsThreshold bool
}

// defaultJaccardErrorThreshold is the default bound JeExceedsThreshold is
// compared against (DESIGN.md Open Question: the reference implementation
// ships a small default error threshold and accepts a caller override;
// gsearch's ANI estimators take no such parameter yet, so only the
// default is implemented).
const defaultJaccardErrorThreshold = 1e-4

// minExpectedSharedSlots is the expected-shared-hashes threshold below
// which an ANI estimate is flagged inaccurate (DESIGN.md Open Question:
// mirrors the original implementation's n_unique_kmers guard).
const minExpectedSharedSlots = 5.0

// confidence is the two-sided confidence level used for ANILow/ANIHigh,
// matching the reference implementation's default.
const confidence = 0.95

// zScore is the standard normal quantile for a two-sided 95% interval.
var zScore = math.Sqrt2 * erfinv(confidence)

// JaccardANI estimates average nucleotide identity from the Jaccard index
// of two scaled sketches sharing a k-mer size (spec.md §4.2). Exact
// Jaccard-based ANI carries a wider, asymmetric error profile than
// containment-based ANI, since a low-identity pair can still show a
// deceptively large Jaccard error; callers preferring a tighter interval
// should use ContainmentANI when one sketch can be treated as the query.
func (s *Sketch) JaccardANI(other *Sketch) (ANIEstimate, error) {
	if s.mode != ModeScaled || other.mode != ModeScaled {
		return ANIEstimate{}, &gserrors.ModeIncompatible{Operation: "JaccardANI", Detail: "requires scaled mode"}
	}
	if err := s.SameParameters(other); err != nil {
		return ANIEstimate{}, err
	}
	j, err := s.Jaccard(other, true)
	if err != nil {
		return ANIEstimate{}, err
	}
	scaled := s.Scaled()
	if other.Scaled() > scaled {
		scaled = other.Scaled()
	}
	nA := len(s.mins)
	nB := len(other.mins)
	avgN := (nA + nB) / 2
	return aniFromFraction(j, avgN, scaled, s.ksize, true), nil
}

// ContainmentANI estimates average nucleotide identity from s's
// containment in other: what fraction of s's genome is represented in
// other (spec.md §4.2).
func (s *Sketch) ContainmentANI(other *Sketch) (ANIEstimate, error) {
	if s.mode != ModeScaled || other.mode != ModeScaled {
		return ANIEstimate{}, &gserrors.ModeIncompatible{Operation: "ContainmentANI", Detail: "requires scaled mode"}
	}
	if err := s.SameParameters(other); err != nil {
		return ANIEstimate{}, err
	}
	c, err := s.ContainedBy(other, true)
	if err != nil {
		return ANIEstimate{}, err
	}
	return aniFromFraction(c, len(s.mins), s.Scaled(), s.ksize, false), nil
}

// MaxContainmentANI estimates ANI from whichever of s.ContainedBy(other)
// or other.ContainedBy(s) is larger (spec.md §4.2).
func (s *Sketch) MaxContainmentANI(other *Sketch) (ANIEstimate, error) {
	if s.mode != ModeScaled || other.mode != ModeScaled {
		return ANIEstimate{}, &gserrors.ModeIncompatible{Operation: "MaxContainmentANI", Detail: "requires scaled mode"}
	}
	cAB, err := s.ContainedBy(other, true)
	if err != nil {
		return ANIEstimate{}, err
	}
	cBA, err := other.ContainedBy(s, true)
	if err != nil {
		return ANIEstimate{}, err
	}
	n := len(s.mins)
	if cBA > cAB {
		cAB = cBA
		n = len(other.mins)
	}
	return aniFromFraction(cAB, n, s.Scaled(), s.ksize, false), nil
}

// AvgContainmentANI estimates ANI from the mean of s.ContainedBy(other)
// and other.ContainedBy(s) (spec.md §4.2).
func (s *Sketch) AvgContainmentANI(other *Sketch) (ANIEstimate, error) {
	if s.mode != ModeScaled || other.mode != ModeScaled {
		return ANIEstimate{}, &gserrors.ModeIncompatible{Operation: "AvgContainmentANI", Detail: "requires scaled mode"}
	}
	c, err := s.AvgContainment(other, true)
	if err != nil {
		return ANIEstimate{}, err
	}
	avgN := (len(s.mins) + len(other.mins)) / 2
	return aniFromFraction(c, avgN, s.Scaled(), s.ksize, false), nil
}

// aniFromFraction converts a containment/Jaccard point estimate into an
// ANI estimate: ANI = fraction^(1/k) (spec.md §4.2), with a normal
// approximation confidence interval built over the n shared scaled-hash
// slots observed, and p_nothing_in_common the probability a truly
// unrelated pair would show this many shared slots purely by chance
// (modeled as the complement of a Poisson survival at zero).
func aniFromFraction(fraction float64, nShared int, scaled uint64, ksize int, withJaccardError bool) ANIEstimate {
	est := ANIEstimate{}
	if fraction <= 0 {
		est.PNothingInCommon = 1
		est.SizeIsInaccurate = true
		return est
	}
	est.ANI = math.Pow(fraction, 1/float64(ksize))
	est.PNothingInCommon = math.Exp(-fraction * float64(nShared))

	expectedShared := fraction * float64(nShared)
	if expectedShared < minExpectedSharedSlots {
		est.SizeIsInaccurate = true
	}

	// Standard error of the containment/Jaccard fraction under a binomial
	// model over nShared trials, propagated through d(x^(1/k))/dx.
	if nShared <= 0 {
		est.ANILow, est.ANIHigh = est.ANI, est.ANI
		return est
	}
	se := math.Sqrt(fraction * (1 - fraction) / float64(nShared))
	dAniDf := (1 / float64(ksize)) * math.Pow(fraction, 1/float64(ksize)-1)
	aniSE := math.Abs(dAniDf) * se

	low := est.ANI - zScore*aniSE
	high := est.ANI + zScore*aniSE
	if low < 0 {
		low = 0
	}
	if high > 1 {
		high = 1
	}
	est.ANILow = low
	est.ANIHigh = high

	if withJaccardError {
		est.JaccardError = se
		est.JeExceedsThreshold = se > defaultJaccardErrorThreshold
	}
	return est
}

// erfinv is the inverse error function, needed to turn a two-sided
// confidence level into a z-score without pulling in a stats dependency
// for a single constant. Uses the Winitzki approximation, accurate to
// about 1e-4 absolute error, which is ample for a confidence band already
// built on a normal approximation of a binomial.
func erfinv(x float64) float64 {
	const a = 0.147
	ln1mx2 := math.Log(1 - x*x)
	term1 := 2/(math.Pi*a) + ln1mx2/2
	inner := term1*term1 - ln1mx2/a
	result := math.Sqrt(math.Sqrt(inner) - term1)
	if x < 0 {
		return -result
	}
	return result
}
