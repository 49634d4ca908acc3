package store

import (
	"fmt"
	"time"

	"resumebuilder/pkg/identity"
)

// transition applies one command against one snapshot. now is read once per
// transition so every document touched by a command shares the same stamp.
type transition struct {
	now time.Time
	ids identity.Generator
}

// apply returns the next state and whether it differs from s. On error or
// when nothing changed the input state is returned as is. Commands the store
// does not know are a no-op.
func (t transition) apply(s State, cmd Command) (State, bool, error) {
	switch c := cmd.(type) {
	case Authenticate:
		if s.IsAuthenticated && s.User != nil && *s.User == c.User {
			return s, false, nil
		}
		user := c.User
		s.IsAuthenticated = true
		s.User = &user
		return s, true, nil

	case Deauthenticate:
		if !s.IsAuthenticated && s.User == nil {
			return s, false, nil
		}
		s.IsAuthenticated = false
		s.User = nil
		return s, true, nil

	case SetCurrentDocument:
		if c.ID == s.CurrentID || (c.ID != "" && s.documentIndex(c.ID) < 0) {
			return s, false, nil
		}
		s.CurrentID = c.ID
		return s, true, nil

	case CreateDocument:
		return t.createDocument(s, c), true, nil

	case UpdateDocument:
		i := s.documentIndex(c.ID)
		if i < 0 || s.Documents[i].Title == c.Title {
			return s, false, nil
		}
		doc := s.Documents[i]
		doc.Title = c.Title
		return s.withDocument(i, t.touch(doc)), true, nil

	case DeleteDocument:
		return deleteDocument(s, c.ID)

	case AddSection:
		return t.addSection(s, c.Section)

	case UpdateSection:
		return t.updateSection(s, c.Section)

	case DeleteSection:
		return t.onCurrent(s, func(doc Document) (Document, bool, error) {
			sections, ok := removeSection(doc.Sections, c.ID)
			doc.Sections = sections
			return doc, ok, nil
		})

	case ReorderSections:
		return t.onCurrent(s, func(doc Document) (Document, bool, error) {
			sections, err := reorderSections(doc.Sections, c.IDs)
			if err != nil {
				return doc, false, err
			}
			doc.Sections = sections
			return doc, true, nil
		})

	case TogglePreviewMode:
		s.IsPreviewMode = !s.IsPreviewMode
		return s, true, nil

	default:
		return s, false, nil
	}
}

func (t transition) createDocument(s State, c CreateDocument) State {
	header := newDocumentHeader
	header.ID = t.ids.Next()
	doc := Document{
		ID:        t.ids.Next(),
		Title:     c.Title,
		CreatedAt: t.now,
		UpdatedAt: t.now,
		Sections:  appendSection(nil, header),
	}

	docs := make([]Document, len(s.Documents), len(s.Documents)+1)
	copy(docs, s.Documents)
	s.Documents = append(docs, doc)
	return s
}

func deleteDocument(s State, id string) (State, bool, error) {
	i := s.documentIndex(id)
	if i < 0 {
		return s, false, nil
	}
	docs := make([]Document, 0, len(s.Documents)-1)
	docs = append(docs, s.Documents[:i]...)
	docs = append(docs, s.Documents[i+1:]...)
	s.Documents = docs
	if s.CurrentID == id {
		s.CurrentID = ""
	}
	return s, true, nil
}

// validKind rejects kinds outside the fixed set before they reach a snapshot.
func validKind(kind SectionKind) error {
	if _, err := ParseSectionKind(string(kind)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func (t transition) addSection(s State, section Section) (State, bool, error) {
	if err := validKind(section.Type); err != nil {
		return s, false, err
	}
	return t.onCurrent(s, func(doc Document) (Document, bool, error) {
		if section.ID == "" {
			section.ID = t.ids.Next()
		} else if _, _, exists := doc.SectionByID(section.ID); exists {
			return doc, false, fmt.Errorf("%w: %q", ErrDuplicateSection, section.ID)
		}
		doc.Sections = appendSection(doc.Sections, section)
		return doc, true, nil
	})
}

func (t transition) updateSection(s State, section Section) (State, bool, error) {
	if section.Type != "" {
		if err := validKind(section.Type); err != nil {
			return s, false, err
		}
	}
	return t.onCurrent(s, func(doc Document) (Document, bool, error) {
		existing, i, ok := doc.SectionByID(section.ID)
		if !ok {
			return doc, false, nil
		}
		next := existing
		if section.Type != "" {
			next.Type = section.Type
		}
		next.Title = section.Title
		next.Subtitle = section.Subtitle
		next.Content = section.Content
		next.Date = section.Date
		if next.sameContent(existing) {
			return doc, false, nil
		}

		sections := make([]Section, len(doc.Sections))
		copy(sections, doc.Sections)
		sections[i] = next
		doc.Sections = sections
		return doc, true, nil
	})
}

// onCurrent runs fn against the current document and writes the result back
// into the document set. When fn reports no change the input state is
// returned as is, updatedAt included.
func (t transition) onCurrent(s State, fn func(Document) (Document, bool, error)) (State, bool, error) {
	if s.CurrentID == "" {
		return s, false, ErrNoCurrentDocument
	}
	i := s.documentIndex(s.CurrentID)
	if i < 0 {
		return s, false, fmt.Errorf("%w: %q is not in the document set", ErrNoCurrentDocument, s.CurrentID)
	}

	doc, changed, err := fn(s.Documents[i])
	if err != nil {
		return s, false, err
	}
	if !changed {
		return s, false, nil
	}
	return s.withDocument(i, t.touch(doc)), true, nil
}

func (t transition) touch(doc Document) Document {
	doc.UpdatedAt = t.now
	if doc.UpdatedAt.Before(doc.CreatedAt) {
		doc.UpdatedAt = doc.CreatedAt
	}
	return doc
}
