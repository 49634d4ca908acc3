package store

type SectionDefaults struct {
	Title    string
	Subtitle string
	Content  string
	Date     string
}

var sectionDefaults = map[SectionKind]SectionDefaults{
	KindHeader: {
		Title:    "Your Name",
		Subtitle: "Your Professional Title",
		Content:  "A brief description about yourself and your professional goals.",
	},
	KindExperience: {
		Title:    "Job Title",
		Subtitle: "Company Name",
		Content:  "Describe your responsibilities and achievements in this role.",
		Date:     "2024-Present",
	},
	KindEducation: {
		Title:    "Degree Name",
		Subtitle: "University Name",
		Content:  "Relevant coursework, GPA, honors, or specializations.",
		Date:     "2024-Present",
	},
	KindSkills: {
		Title:    "Technical Skills",
		Subtitle: "Programming Languages & Tools",
		Content:  "List your technical skills, programming languages, and tools.",
	},
	KindContact: {
		Title:    "Contact Information",
		Subtitle: "Email, Phone, Location",
		Content:  "Your contact information including email, phone, and location.",
	},
	KindProjects: {
		Title:    "Project Name",
		Subtitle: "Technologies Used",
		Content:  "Describe the project, your role, and the technologies used.",
	},
	KindOther: {
		Title:    "Section Title",
		Subtitle: "Subtitle",
		Content:  "Section content...",
	},
}

// newDocumentHeader is the header every freshly created document starts with.
// It is shorter than the header an editor adds by hand.
var newDocumentHeader = Section{
	Type:     KindHeader,
	Title:    "Your Name",
	Subtitle: "Your Title",
	Content:  "A brief description about yourself.",
}

// Defaults returns the template text for kind. Unknown kinds get the "other" template.
func Defaults(kind SectionKind) SectionDefaults {
	if d, ok := sectionDefaults[kind]; ok {
		return d
	}
	return sectionDefaults[KindOther]
}

// DefaultSection builds an unsaved section of kind filled from its template.
// ID and Order are assigned by the store.
func DefaultSection(kind SectionKind) Section {
	d := Defaults(kind)
	return Section{
		Type:     kind,
		Title:    d.Title,
		Subtitle: d.Subtitle,
		Content:  d.Content,
		Date:     d.Date,
	}
}
