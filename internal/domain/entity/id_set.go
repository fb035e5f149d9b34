package entity

import (
	"encoding/json"
)

// IDSet is an insertion-ordered set of ids.
// Iteration follows insertion order; Add of an existing id is a no-op.
type IDSet struct {
	ids   []string
	index map[string]int
}

func NewIDSet(ids ...string) IDSet {
	s := IDSet{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *IDSet) Contains(id string) bool {
	if s.index == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Add appends id and reports whether it was absent.
func (s *IDSet) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id keeping the order of the remaining ids and reports whether it was present.
func (s *IDSet) Remove(id string) bool {
	pos, ok := s.index[id]
	if !ok {
		return false
	}
	s.ids = append(s.ids[:pos], s.ids[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.ids); i++ {
		s.index[s.ids[i]] = i
	}
	return true
}

func (s IDSet) Len() int { return len(s.ids) }

// Slice returns a copy of the ids in insertion order.
func (s IDSet) Slice() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet { return NewIDSet(s.ids...) }

func (s IDSet) MarshalJSON() ([]byte, error) {
	if s.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.ids)
}

func (s *IDSet) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
