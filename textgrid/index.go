package textgrid

import "math"

// StartIndex finds intervals by start time within Tolerance without a
// linear scan per lookup. Starts are bucketed by Tolerance-sized cells and
// the neighbouring cells are probed, so a match never straddles a boundary.
type StartIndex struct {
	entries []Interval
	buckets map[int64][]int
}

func NewStartIndex(t *Tier) *StartIndex {
	idx := &StartIndex{entries: t.Entries, buckets: make(map[int64][]int, len(t.Entries))}
	for i, iv := range t.Entries {
		k := bucket(iv.Start)
		idx.buckets[k] = append(idx.buckets[k], i)
	}
	return idx
}

// Find returns the first interval in tier order whose start matches start.
func (x *StartIndex) Find(start float64) (Interval, bool) {
	k := bucket(start)
	best := -1
	for _, b := range [3]int64{k - 1, k, k + 1} {
		for _, i := range x.buckets[b] {
			if SameTime(x.entries[i].Start, start) && (best < 0 || i < best) {
				best = i
			}
		}
	}
	if best < 0 {
		return Interval{}, false
	}
	return x.entries[best], true
}

func bucket(v float64) int64 { return int64(math.Floor(v / Tolerance)) }
