package store

import "fmt"

// The functions below are the ordering engine for one document's sections.
// Each returns a fresh slice and leaves its input untouched, so a snapshot
// holding the old slice keeps seeing the old order.

func appendSection(sections []Section, s Section) []Section {
	out := make([]Section, len(sections), len(sections)+1)
	copy(out, sections)
	s.Order = len(sections)
	out = append(out, s)
	assertDenseOrder(out)
	return out
}

// removeSection drops id and renumbers what is left. ok is false when id is
// not in the collection, in which case sections is returned as is.
func removeSection(sections []Section, id string) (out []Section, ok bool) {
	idx := -1
	for i, s := range sections {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return sections, false
	}

	out = make([]Section, 0, len(sections)-1)
	for i, s := range sections {
		if i == idx {
			continue
		}
		s.Order = len(out)
		out = append(out, s)
	}
	assertDenseOrder(out)
	return out, true
}

// reorderSections lays the sections out in the order given by ids, which must
// name every current section exactly once.
func reorderSections(sections []Section, ids []string) ([]Section, error) {
	if len(ids) != len(sections) {
		return nil, fmt.Errorf("%w: got %d ids for %d sections", ErrInvalidReorder, len(ids), len(sections))
	}

	byID := make(map[string]Section, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}

	used := make(map[string]bool, len(ids))
	out := make([]Section, len(ids))
	for pos, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown section %q", ErrInvalidReorder, id)
		}
		if used[id] {
			return nil, fmt.Errorf("%w: section %q listed twice", ErrInvalidReorder, id)
		}
		used[id] = true
		s.Order = pos
		out[pos] = s
	}
	assertDenseOrder(out)
	return out, nil
}

// assertDenseOrder panics if order values are not exactly 0..n-1 in slice
// position. Reaching the panic means the engine itself is broken.
func assertDenseOrder(sections []Section) {
	for i, s := range sections {
		if s.Order != i {
			panic(fmt.Sprintf("store: section %q at position %d has order %d", s.ID, i, s.Order))
		}
	}
}
