package textgrid

import "strings"

// TierSet holds the annotation tiers of one recording, keyed by name.
// Insertion order is kept so files are written back in a stable layout.
type TierSet struct {
	MinTimestamp float64
	MaxTimestamp float64

	order []string
	tiers map[string]*Tier
}

func NewTierSet(minT, maxT float64) *TierSet {
	return &TierSet{MinTimestamp: minT, MaxTimestamp: maxT, tiers: map[string]*Tier{}}
}

// Tier looks up a tier by name.
func (s *TierSet) Tier(name string) (*Tier, error) {
	if t, ok := s.tiers[name]; ok {
		return t, nil
	}
	return nil, &MissingTierError{Tier: name}
}

func (s *TierSet) Has(name string) bool {
	_, ok := s.tiers[name]
	return ok
}

// Put adds t, or replaces the tier with the same name in place.
func (s *TierSet) Put(t *Tier) {
	if s.tiers == nil {
		s.tiers = map[string]*Tier{}
	}
	if _, ok := s.tiers[t.Name]; !ok {
		s.order = append(s.order, t.Name)
	}
	s.tiers[t.Name] = t
}

// Remove drops the named tier and reports whether it was present.
func (s *TierSet) Remove(name string) bool {
	if _, ok := s.tiers[name]; !ok {
		return false
	}
	delete(s.tiers, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Names returns tier names in insertion order.
func (s *TierSet) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Tiers returns tiers in insertion order.
func (s *TierSet) Tiers() []*Tier {
	out := make([]*Tier, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.tiers[n])
	}
	return out
}

// Clone deep-copies the set so stages can stay free of side effects.
func (s *TierSet) Clone() *TierSet {
	cp := NewTierSet(s.MinTimestamp, s.MaxTimestamp)
	for _, t := range s.Tiers() {
		cp.Put(t.clone())
	}
	return cp
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
