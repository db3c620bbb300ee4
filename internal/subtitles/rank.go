package subtitles

import "sort"

// RankedList is a candidate set ordered for presentation. Positions shown to
// the operator are 1-based.
type RankedList []Candidate

// Rank orders candidates by descending rating. Unrated candidates sort after
// every rated one and equal ratings keep their input order. Nothing is
// dropped; the input slice is left untouched.
func Rank(candidates []Candidate) RankedList {
	ranked := make(RankedList, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ratedAbove(ranked[i], ranked[j])
	})
	return ranked
}

func ratedAbove(a, b Candidate) bool {
	switch {
	case a.Rating == nil:
		return false
	case b.Rating == nil:
		return true
	default:
		return *a.Rating > *b.Rating
	}
}

// Len returns the number of candidates.
func (l RankedList) Len() int {
	return len(l)
}

// Pick returns the candidate at a 1-based selection.
func (l RankedList) Pick(selection int) (Candidate, bool) {
	if selection < 1 || selection > len(l) {
		return Candidate{}, false
	}
	return l[selection-1], true
}
