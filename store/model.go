package store

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type SectionKind string

const (
	KindHeader     SectionKind = "header"
	KindExperience SectionKind = "experience"
	KindEducation  SectionKind = "education"
	KindSkills     SectionKind = "skills"
	KindContact    SectionKind = "contact"
	KindProjects   SectionKind = "projects"
	KindOther      SectionKind = "other"
)

var sectionKinds = []SectionKind{
	KindHeader, KindExperience, KindEducation, KindSkills, KindContact, KindProjects, KindOther,
}

// SectionKinds lists every kind in the order the editor offers them.
func SectionKinds() []SectionKind {
	out := make([]SectionKind, len(sectionKinds))
	copy(out, sectionKinds)
	return out
}

func ParseSectionKind(s string) (SectionKind, error) {
	for _, k := range sectionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown section kind %q", s)
}

type Section struct {
	ID       string      `json:"id" yaml:"id"`
	Type     SectionKind `json:"type" yaml:"type"`
	Title    string      `json:"title" yaml:"title"`
	Subtitle string      `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Content  string      `json:"content,omitempty" yaml:"content,omitempty"`
	Date     string      `json:"date,omitempty" yaml:"date,omitempty"`
	Order    int         `json:"order" yaml:"order"`
}

// sameContent reports whether the user-editable fields match.
func (s Section) sameContent(o Section) bool {
	return s.Type == o.Type &&
		s.Title == o.Title &&
		s.Subtitle == o.Subtitle &&
		s.Content == o.Content &&
		s.Date == o.Date
}

type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Sections  []Section `json:"sections"`
}

// OrderedSections returns a copy of the sections sorted for display.
func (d Document) OrderedSections() []Section {
	out := make([]Section, len(d.Sections))
	copy(out, d.Sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// SectionByID returns the section and its position in the collection.
func (d Document) SectionByID(id string) (Section, int, bool) {
	for i, s := range d.Sections {
		if s.ID == id {
			return s, i, true
		}
	}
	return Section{}, -1, false
}

// UserRef is who the session says is logged in. Nothing verifies it.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// State is one immutable snapshot of the whole store. Transitions build a new
// State and never write through slices reachable from an older one, so a
// State may be shared freely between goroutines once published.
type State struct {
	IsAuthenticated bool       `json:"isAuthenticated"`
	User            *UserRef   `json:"user"`
	Documents       []Document `json:"resumes"`
	CurrentID       string     `json:"currentResumeId,omitempty"`
	IsPreviewMode   bool       `json:"isPreviewMode"`
}

// Document looks a document up by identity.
func (s State) Document(id string) (Document, bool) {
	i := s.documentIndex(id)
	if i < 0 {
		return Document{}, false
	}
	return s.Documents[i], true
}

// Current resolves the current-document pointer against the document set.
func (s State) Current() (Document, bool) {
	if s.CurrentID == "" {
		return Document{}, false
	}
	return s.Document(s.CurrentID)
}

// SearchDocuments filters documents whose title contains term, ignoring case.
func (s State) SearchDocuments(term string) []Document {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Document, 0, len(s.Documents))
	for _, d := range s.Documents {
		if term == "" || strings.Contains(strings.ToLower(d.Title), term) {
			out = append(out, d)
		}
	}
	return out
}

func (s State) documentIndex(id string) int {
	for i, d := range s.Documents {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// withDocument returns a copy of s whose document at index i is replaced.
func (s State) withDocument(i int, doc Document) State {
	docs := make([]Document, len(s.Documents))
	copy(docs, s.Documents)
	docs[i] = doc
	s.Documents = docs
	return s
}
