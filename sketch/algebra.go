package sketch

import (
	"math"

	"github.com/TimothyStiles/gsearch/gserrors"
	"golang.org/x/exp/slices"
)

// Downsample returns a frozen copy of s restricted to a coarser resolution.
// Num sketches may only downsample to a smaller num; scaled sketches may
// only downsample to a smaller max_hash (larger scaled factor); a num
// sketch may be downsampled to scaled, since every num sketch already
// contains a well-defined set of hashes below its current largest member,
// but a scaled sketch can never recover a fixed-size num view (spec.md
// §4.2 "Downsample ... monotone").
func (s *Sketch) Downsample(mode Mode, param uint64) (*Sketch, error) {
	switch {
	case s.mode == ModeScaled && mode == ModeNum:
		return nil, &gserrors.ModeIncompatible{Operation: "Downsample", Detail: "scaled cannot downsample to num"}
	case s.mode == ModeNum && mode == ModeNum:
		if param > s.num {
			return nil, &gserrors.InvalidInput{Detail: "downsampled num must be <= current num"}
		}
		out := s.clone()
		out.num = param
		if uint64(len(out.mins)) > param {
			dropped := out.mins[param:]
			out.mins = out.mins[:param]
			if out.abunds != nil {
				for _, h := range dropped {
					delete(out.abunds, h)
				}
			}
		}
		out.frozen = true
		return out, nil
	case mode == ModeScaled:
		var maxHash uint64
		if s.mode == ModeScaled {
			if param > s.maxHash {
				return nil, &gserrors.InvalidInput{Detail: "downsampled max_hash must be <= current max_hash"}
			}
			maxHash = param
		} else {
			maxHash = param
		}
		out := s.clone()
		out.mode = ModeScaled
		out.maxHash = maxHash
		out.num = 0
		idx, _ := slices.BinarySearch(out.mins, maxHash+1)
		dropped := out.mins[idx:]
		out.mins = out.mins[:idx]
		if out.abunds != nil {
			for _, h := range dropped {
				delete(out.abunds, h)
			}
		}
		out.frozen = true
		return out, nil
	default:
		return nil, &gserrors.ModeIncompatible{Operation: "Downsample", Detail: "unsupported mode transition"}
	}
}

// Flatten returns a frozen copy of s with abundance tracking discarded.
func (s *Sketch) Flatten() *Sketch {
	out := s.clone()
	out.trackAbundance = false
	out.abunds = nil
	out.frozen = true
	return out
}

// Inflate returns a frozen copy of s with abundance tracking enabled,
// every present hash given abundance 1 if s did not already track it.
func (s *Sketch) Inflate() *Sketch {
	out := s.clone()
	if !out.trackAbundance {
		out.abunds = make(map[uint64]uint64, len(out.mins))
		for _, h := range out.mins {
			out.abunds[h] = 1
		}
		out.trackAbundance = true
	}
	out.frozen = true
	return out
}

// Merge returns a new frozen sketch containing the union of s and
// other's hashes, capped to s's num if in num mode (spec.md §4.2).
// Abundances add where both sketches carry a hash.
func (s *Sketch) Merge(other *Sketch) (*Sketch, error) {
	if err := s.SameParameters(other); err != nil {
		return nil, err
	}
	if err := s.SameMode(other); err != nil {
		return nil, err
	}
	out := s.clone()
	out.frozen = false
	if err := out.AddSketch(other); err != nil {
		return nil, err
	}
	out.frozen = true
	return out, nil
}

// Intersection returns a new frozen sketch containing only the hashes
// present in both s and other. When abundance is tracked in both, the
// minimum abundance of the pair is kept (spec.md §4.2).
func (s *Sketch) Intersection(other *Sketch) (*Sketch, error) {
	if err := s.SameParameters(other); err != nil {
		return nil, err
	}
	if err := s.SameMode(other); err != nil {
		return nil, err
	}
	out := s.clone()
	out.mins = out.mins[:0]
	if out.abunds != nil {
		out.abunds = make(map[uint64]uint64)
	}
	for _, h := range s.mins {
		_, found := slices.BinarySearch(other.mins, h)
		if !found {
			continue
		}
		out.mins = append(out.mins, h)
		if out.trackAbundance {
			a := s.abunds[h]
			b := other.abunds[h]
			out.ensureAbunds()
			if a < b {
				out.abunds[h] = a
			} else {
				out.abunds[h] = b
			}
		}
	}
	out.frozen = true
	return out, nil
}

// CountCommon returns the number of hashes s and other share. When
// downsample is true and the sketches differ in mode-specific resolution,
// both are first downsampled to their common (coarser) resolution rather
// than erroring (spec.md §4.2's optional auto-downsample convenience).
func (s *Sketch) CountCommon(other *Sketch, downsample bool) (uint64, error) {
	a, b, err := commonResolution(s, other, downsample)
	if err != nil {
		return 0, err
	}
	var n uint64
	for _, h := range a.mins {
		if _, found := slices.BinarySearch(b.mins, h); found {
			n++
		}
	}
	return n, nil
}

// commonResolution returns s and other unchanged if they already share a
// mode-specific parameter, or downsampled to the coarser of the two when
// downsample is requested.
func commonResolution(s, other *Sketch, downsample bool) (*Sketch, *Sketch, error) {
	if err := s.SameParameters(other); err != nil {
		return nil, nil, err
	}
	if err := s.SameMode(other); err == nil {
		return s, other, nil
	}
	if !downsample {
		return nil, nil, &gserrors.ParameterMismatch{Parameter: "mode", A: s.mode.String(), B: other.mode.String()}
	}
	if s.mode != other.mode {
		return nil, nil, &gserrors.ModeIncompatible{Operation: "commonResolution", Detail: "cannot auto-downsample across num/scaled"}
	}
	a, b := s, other
	if s.mode == ModeNum {
		n := s.num
		if other.num < n {
			n = other.num
		}
		var err error
		a, err = s.Downsample(ModeNum, n)
		if err != nil {
			return nil, nil, err
		}
		b, err = other.Downsample(ModeNum, n)
		if err != nil {
			return nil, nil, err
		}
		return a, b, nil
	}
	maxHash := s.maxHash
	if other.maxHash < maxHash {
		maxHash = other.maxHash
	}
	var err error
	a, err = s.Downsample(ModeScaled, maxHash)
	if err != nil {
		return nil, nil, err
	}
	b, err = other.Downsample(ModeScaled, maxHash)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Jaccard returns |A∩B| / |A∪B| over s and other's hash sets, ignoring
// abundance (spec.md §4.2). Returns 0 with no error when both sketches
// are empty, matching the reference implementation's convention of
// treating an empty/empty comparison as "no similarity" rather than an
// error.
func (s *Sketch) Jaccard(other *Sketch, downsample bool) (float64, error) {
	a, b, err := commonResolution(s, other, downsample)
	if err != nil {
		return 0, err
	}
	if len(a.mins) == 0 && len(b.mins) == 0 {
		return 0, nil
	}
	common, err := a.CountCommon(b, false)
	if err != nil {
		return 0, err
	}
	union := uint64(len(a.mins)) + uint64(len(b.mins)) - common
	if union == 0 {
		return 0, nil
	}
	return float64(common) / float64(union), nil
}

// ContainedBy returns |A∩B| / |A|, the fraction of s's hashes also present
// in other. Scaled-mode only: a num sketch has no fixed denominator to
// express containment against (spec.md §4.2).
func (s *Sketch) ContainedBy(other *Sketch, downsample bool) (float64, error) {
	if s.mode != ModeScaled {
		return 0, &gserrors.ModeIncompatible{Operation: "ContainedBy", Detail: "containment requires scaled mode"}
	}
	a, b, err := commonResolution(s, other, downsample)
	if err != nil {
		return 0, err
	}
	if len(a.mins) == 0 {
		return 0, nil
	}
	common, err := a.CountCommon(b, false)
	if err != nil {
		return 0, err
	}
	return float64(common) / float64(len(a.mins)), nil
}

// MaxContainment returns the greater of s.ContainedBy(other) and
// other.ContainedBy(s) (spec.md §4.2).
func (s *Sketch) MaxContainment(other *Sketch, downsample bool) (float64, error) {
	a, b, err := commonResolution(s, other, downsample)
	if err != nil {
		return 0, err
	}
	cAB, err := a.ContainedBy(b, false)
	if err != nil {
		return 0, err
	}
	cBA, err := b.ContainedBy(a, false)
	if err != nil {
		return 0, err
	}
	if cAB > cBA {
		return cAB, nil
	}
	return cBA, nil
}

// AvgContainment returns the mean of s.ContainedBy(other) and
// other.ContainedBy(s) (spec.md §4.2).
func (s *Sketch) AvgContainment(other *Sketch, downsample bool) (float64, error) {
	a, b, err := commonResolution(s, other, downsample)
	if err != nil {
		return 0, err
	}
	cAB, err := a.ContainedBy(b, false)
	if err != nil {
		return 0, err
	}
	cBA, err := b.ContainedBy(a, false)
	if err != nil {
		return 0, err
	}
	return (cAB + cBA) / 2, nil
}

// Similarity is Jaccard similarity when either sketch ignores abundance,
// and the abundance-weighted angular similarity 1 - 2*acos(cosine)/pi
// otherwise, with cosine clamped to [0, 1] (spec.md §4.2). The clamp
// guards against the rare case of accumulated floating point error
// pushing a nominally-identical cosine fractionally above 1, which would
// otherwise send acos into NaN.
func (s *Sketch) Similarity(other *Sketch, ignoreAbundance, downsample bool) (float64, error) {
	a, b, err := commonResolution(s, other, downsample)
	if err != nil {
		return 0, err
	}
	if ignoreAbundance || !a.trackAbundance || !b.trackAbundance {
		return a.Jaccard(b, false)
	}
	var dot, normA, normB float64
	for _, h := range a.mins {
		va := float64(a.abunds[h])
		normA += va * va
		if vb, found := b.abunds[h]; found {
			dot += va * float64(vb)
		}
	}
	for _, h := range b.mins {
		vb := float64(b.abunds[h])
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	cosine := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cosine > 1 {
		cosine = 1
	}
	if cosine < 0 {
		cosine = 0
	}
	return 1 - 2*math.Acos(cosine)/math.Pi, nil
}
