package graph

import (
	"encoding/json"
	"sort"
)

// serialized is the object-of-arrays wire form. The reverse map is written
// out rather than recomputed so a reload needs no re-walk.
type serialized struct {
	Forward map[string][]string `json:"forward"`
	Reverse map[string][]string `json:"reverse"`
}

// legacySectioned is the historical sectioned form with present/future
// top-level keys. Readers accept it transparently; the present section is
// the live graph.
type legacySectioned struct {
	Present *serialized `json:"present"`
	Future  *serialized `json:"future"`
}

// MarshalJSON writes the forward and reverse maps as object-of-arrays
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(serialized{
		Forward: toArrays(s.forward),
		Reverse: toArrays(s.reverse),
	})
}

// UnmarshalJSON reads either the flat form or the legacy sectioned form
func (s *Store) UnmarshalJSON(data []byte) error {
	var flat serialized
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if flat.Forward == nil && flat.Reverse == nil {
		var sectioned legacySectioned
		if err := json.Unmarshal(data, &sectioned); err != nil {
			return err
		}
		if sectioned.Present != nil {
			flat = *sectioned.Present
		}
	}
	s.forward = fromArrays(flat.Forward)
	s.reverse = fromArrays(flat.Reverse)
	return nil
}

func toArrays(m map[string]map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(m))
	for key, set := range m {
		members := make([]string, 0, len(set))
		for member := range set {
			members = append(members, member)
		}
		sort.Strings(members)
		out[key] = members
	}
	return out
}

func fromArrays(m map[string][]string) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(m))
	for key, members := range m {
		if len(members) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(members))
		for _, member := range members {
			set[member] = struct{}{}
		}
		out[key] = set
	}
	return out
}
