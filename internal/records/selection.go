package records

import "sort"

// Selection tracks multi-row checkbox state by record identifier. It is
// independent of filtering, sorting and pagination: selecting "all filtered"
// covers the whole filtered set, not just the visible page.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

func (s *Selection) Add(id string) {
	if id == "" {
		return
	}
	s.ids[id] = struct{}{}
}

func (s *Selection) Remove(id string) {
	delete(s.ids, id)
}

func (s *Selection) Toggle(id string) {
	if id == "" {
		return
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// AddAll selects every id in the given set, typically the full filtered
// result rather than the current page.
func (s *Selection) AddAll(ids []string) {
	for _, id := range ids {
		s.Add(id)
	}
}

// ContainsAll reports whether every id in the set is selected; an empty set
// is not considered fully selected.
func (s *Selection) ContainsAll(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// IDs returns the selected identifiers in stable sorted order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Keep drops selected ids no longer present in the record set, used after a
// refetch replaces the records wholesale.
func (s *Selection) Keep(valid []string) {
	allowed := make(map[string]struct{}, len(valid))
	for _, id := range valid {
		allowed[id] = struct{}{}
	}
	for id := range s.ids {
		if _, ok := allowed[id]; !ok {
			delete(s.ids, id)
		}
	}
}
