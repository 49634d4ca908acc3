package seed

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"resumebuilder/pkg/identity"
	"resumebuilder/store"
)

const dateLayout = "2006-01-02"

type File struct {
	Resumes []Resume `yaml:"resumes"`
}

type Resume struct {
	ID        string          `yaml:"id"`
	Title     string          `yaml:"title"`
	CreatedAt string          `yaml:"createdAt"`
	UpdatedAt string          `yaml:"updatedAt"`
	Sections  []store.Section `yaml:"sections"`
}

// Sample is the state a fresh session starts with when no seed file is given.
func Sample() File {
	return File{Resumes: []Resume{{
		Title:     "Software Developer Resume",
		CreatedAt: "2024-01-15",
		UpdatedAt: "2024-01-15",
		Sections: []store.Section{
			{
				Type:     store.KindHeader,
				Title:    "John Doe",
				Subtitle: "Software Developer",
				Content:  "Passionate software developer with 5+ years of experience in web development.",
				Order:    0,
			},
			{
				Type:     store.KindExperience,
				Title:    "Senior Developer",
				Subtitle: "Tech Corp",
				Content:  "Led development of multiple web applications using React and Node.js.",
				Date:     "2022-2024",
				Order:    1,
			},
			{
				Type:     store.KindEducation,
				Title:    "Bachelor of Computer Science",
				Subtitle: "University of Technology",
				Content:  "Graduated with honors, specialized in software engineering.",
				Date:     "2018-2022",
				Order:    2,
			},
			{
				Type:    store.KindSkills,
				Title:   "Technical Skills",
				Content: "React, Node.js, TypeScript, Python, AWS, Docker",
				Order:   3,
			},
		},
	}}}
}

// LoadFile reads a YAML seed file.
func LoadFile(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("seed: parse %s: %w", path, err)
	}
	return f, nil
}

// Build turns seed data into an initial State. Missing ids come from ids,
// missing dates from now. Sections are laid out by their order field (ties
// keep file order) and renumbered densely.
func (f File) Build(ids identity.Generator, now time.Time) (store.State, error) {
	var st store.State
	seen := make(map[string]bool)
	for i, r := range f.Resumes {
		doc, err := r.build(ids, now)
		if err != nil {
			return store.State{}, fmt.Errorf("seed: resume %d: %w", i, err)
		}
		if seen[doc.ID] {
			return store.State{}, fmt.Errorf("seed: duplicate resume id %q", doc.ID)
		}
		seen[doc.ID] = true
		st.Documents = append(st.Documents, doc)
	}
	return st, nil
}

func (r Resume) build(ids identity.Generator, now time.Time) (store.Document, error) {
	created, err := parseDate(r.CreatedAt, now)
	if err != nil {
		return store.Document{}, fmt.Errorf("createdAt: %w", err)
	}
	updated, err := parseDate(r.UpdatedAt, created)
	if err != nil {
		return store.Document{}, fmt.Errorf("updatedAt: %w", err)
	}
	if updated.Before(created) {
		updated = created
	}

	sections := make([]store.Section, len(r.Sections))
	copy(sections, r.Sections)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })

	seen := make(map[string]bool, len(sections))
	for i := range sections {
		if _, err := store.ParseSectionKind(string(sections[i].Type)); err != nil {
			return store.Document{}, err
		}
		if sections[i].ID == "" {
			sections[i].ID = ids.Next()
		}
		if seen[sections[i].ID] {
			return store.Document{}, fmt.Errorf("duplicate section id %q", sections[i].ID)
		}
		seen[sections[i].ID] = true
		sections[i].Order = i
	}

	id := r.ID
	if id == "" {
		id = ids.Next()
	}
	return store.Document{
		ID:        id,
		Title:     r.Title,
		CreatedAt: created,
		UpdatedAt: updated,
		Sections:  sections,
	}, nil
}

func parseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback.UTC(), nil
	}
	return time.Parse(dateLayout, s)
}
